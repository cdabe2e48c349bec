// Package mention resolves @name tokens in note text against the user
// directory.
package mention

import (
	"regexp"
	"strings"
	"unicode"

	"collab-notes/domain"
)

// A token is '@' followed by the longest run of word characters.
var tokenPattern = regexp.MustCompile(`@([a-zA-Z0-9_]+)`)

// Resolve maps sanitized text plus the known-user directory to the
// users it mentions. Matching is exact after normalization: the user's
// display name with all whitespace stripped, lowercased, against the
// lowercased token. Tokens with no match resolve to nothing, silently.
//
// Duplicates are preserved: a user mentioned twice appears twice, and
// the caller will create two notifications. The result order follows
// token order in the text but callers must not rely on it.
func Resolve(text string, knownUsers []domain.User) []domain.User {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var resolved []domain.User
	for _, m := range matches {
		token := strings.ToLower(m[1])
		for _, u := range knownUsers {
			if handle(u.Name) == token {
				resolved = append(resolved, u)
				break
			}
		}
	}
	return resolved
}

// handle normalizes a display name into its mention form:
// whitespace stripped, lowercased.
func handle(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
