//go:generate go run go.uber.org/mock/mockgen -source=fanout.go -destination=../mocks/mock_notifier.go -package=mocks
// Package notify creates notification records for mentioned users and
// pushes the matching live tag event into the room.
package notify

import (
	"context"
	"log/slog"
	"time"

	"collab-notes/contract"
	"collab-notes/domain"
	"collab-notes/domain/event"
	"collab-notes/repositories"

	"github.com/google/uuid"
)

type INotifier interface {
	Notify(ctx context.Context, recipient domain.User, message domain.Message) error
}

// UnreadCounter is the optional per-recipient unread cache. Cache
// failures never fail a notification; the store is the durable truth.
type UnreadCounter interface {
	Incr(ctx context.Context, userID string) error
	Reset(ctx context.Context, userID string) error
}

type Notifier struct {
	log           *slog.Logger
	notifications repositories.INotificationRepository
	candidates    repositories.ICandidateRepository
	registry      contract.IRegistry
	unread        UnreadCounter // nil disables the cache
}

func NewNotifier(log *slog.Logger, notifications repositories.INotificationRepository,
	candidates repositories.ICandidateRepository, registry contract.IRegistry,
	unread UnreadCounter) *Notifier {
	return &Notifier{
		log:           log,
		notifications: notifications,
		candidates:    candidates,
		registry:      registry,
		unread:        unread,
	}
}

// Notify creates one Notification record and emits the room-scoped tag
// event addressed to the recipient. Not idempotent: calling twice
// creates two records, which is exactly what a duplicate mention does.
//
// If the record cannot be stored nothing is emitted; the failure stays
// isolated to this mention and never rolls back the message or other
// mentions.
func (n *Notifier) Notify(ctx context.Context, recipient domain.User, message domain.Message) error {
	notification := domain.Notification{
		ID:          uuid.New(),
		UserID:      recipient.ID,
		CandidateID: message.CandidateID,
		MessageID:   message.ID,
		Preview:     domain.Preview(message.Text),
		CreatedAt:   time.Now().UTC(),
		Read:        false,
	}
	if err := n.notifications.StoreNotification(notification); err != nil {
		return err
	}

	if n.unread != nil {
		if err := n.unread.Incr(ctx, recipient.ID); err != nil {
			n.log.Warn("Unread counter increment failed", "user_id", recipient.ID, "error", err)
		}
	}

	n.registry.Broadcast(ctx, domain.CandidateRoom(message.CandidateID), event.MentionTag{
		To:            recipient.ID,
		From:          message.UserName,
		CandidateID:   message.CandidateID,
		CandidateName: n.candidateName(message.CandidateID),
		MessageID:     message.ID,
	})
	return nil
}

// candidateName resolves the display name for the tag event, falling
// back to the raw id when the candidate record is missing.
func (n *Notifier) candidateName(candidateID string) string {
	candidate, err := n.candidates.GetCandidate(candidateID)
	if err != nil {
		return candidateID
	}
	return candidate.Name
}
