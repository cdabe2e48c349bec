// Package sanitize strips markup from inbound note text.
//
// Every message goes through here before it is persisted or broadcast;
// nothing downstream ever sees raw client input.
package sanitize

import "github.com/microcosm-cc/bluemonday"

type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a strict sanitizer: no tags, no attributes,
// plain text only.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *Sanitizer) Strip(text string) string {
	return s.policy.Sanitize(text)
}
