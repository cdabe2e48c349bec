package services

import (
	"context"
	"log/slog"

	"collab-notes/contract"
	"collab-notes/domain"
	"collab-notes/repositories"
)

// UnreadCache is the optional Redis-backed unread counter, read by the
// API and reset on mark-all-read. A nil cache disables both.
type UnreadCache interface {
	Reset(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (int64, error)
}

// INotesService is what the transports see of the messaging core.
type INotesService interface {
	PostMessage(cmd domain.PostMessageCommand, origin contract.EventSink)
	JoinRoom(connID string, roomID domain.RoomID, user domain.User, sink contract.EventSink)
	Disconnect(connID string)
	History(candidateID string) ([]domain.Message, error)
	Notifications(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type NotesService struct {
	log           *slog.Logger
	engine        contract.IEngine
	registry      contract.IRegistry
	messages      repositories.IMessageRepository
	notifications repositories.INotificationRepository
	unread        UnreadCache
}

func NewNotesService(log *slog.Logger, engine contract.IEngine, registry contract.IRegistry,
	messages repositories.IMessageRepository, notifications repositories.INotificationRepository,
	unread UnreadCache) *NotesService {
	return &NotesService{
		log:           log,
		engine:        engine,
		registry:      registry,
		messages:      messages,
		notifications: notifications,
		unread:        unread,
	}
}

func (s *NotesService) PostMessage(cmd domain.PostMessageCommand, origin contract.EventSink) {
	s.engine.Submit(cmd, origin)
}

func (s *NotesService) JoinRoom(connID string, roomID domain.RoomID, user domain.User, sink contract.EventSink) {
	s.registry.Join(connID, roomID, user, sink)
}

func (s *NotesService) Disconnect(connID string) {
	s.registry.Disconnect(connID)
}

// History backs the backlog fetch a client performs before joining.
// The live channel never replays.
func (s *NotesService) History(candidateID string) ([]domain.Message, error) {
	return s.messages.GetMessages(candidateID)
}

func (s *NotesService) Notifications(_ context.Context, userID string) ([]domain.Notification, error) {
	return s.notifications.GetNotifications(userID)
}

// MarkAllRead flips every notification of the recipient in one step and
// resets the unread cache. The cache reset is best-effort.
func (s *NotesService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notifications.MarkAllRead(userID); err != nil {
		return err
	}
	if s.unread != nil {
		if err := s.unread.Reset(ctx, userID); err != nil {
			s.log.Warn("Unread counter reset failed", "user_id", userID, "error", err)
		}
	}
	return nil
}

func (s *NotesService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if s.unread == nil {
		return 0, nil
	}
	return s.unread.Get(ctx, userID)
}
