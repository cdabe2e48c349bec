package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable note event inside a candidate thread.
// Text is always sanitized plain text: raw client input is discarded
// right after sanitization and never stored or echoed.
//
// UserName is denormalized at creation time for read efficiency and is
// never updated retroactively.
type Message struct {
	ID          uuid.UUID
	CandidateID string
	UserID      string
	UserName    string
	Text        string
	CreatedAt   time.Time
}
