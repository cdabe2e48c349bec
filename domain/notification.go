package domain

import (
	"time"

	"github.com/google/uuid"
)

// PreviewLimit is the maximum preview length; longer sanitized text is
// cut to PreviewCut runes plus an ellipsis.
const (
	PreviewLimit = 80
	PreviewCut   = 77
)

// Notification records that a message mentioned a user.
// Created by the fan-out, mutated only by the bulk mark-all-read
// operation, never deleted in normal operation.
type Notification struct {
	ID          uuid.UUID
	UserID      string // recipient
	CandidateID string
	MessageID   uuid.UUID
	Preview     string
	CreatedAt   time.Time
	Read        bool
}

// Preview truncates sanitized message text for notification display.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) > PreviewLimit {
		return string(runes[:PreviewCut]) + "..."
	}
	return text
}
