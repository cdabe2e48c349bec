package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"collab-notes/domain"
	"collab-notes/domain/event"
	"collab-notes/notify"
	"collab-notes/repositories"
	"collab-notes/runtime"
	"collab-notes/runtime/workers"
	"collab-notes/sanitize"
	"collab-notes/unread"

	"github.com/alicebob/miniredis/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) snapshot() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent(nil), s.events...)
}

type stack struct {
	directory *DirectoryService
	notes     *NotesService
	counter   *unread.Counter
}

func newStack(t *testing.T) stack {
	t.Helper()
	log := slog.Default()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	redisServer := miniredis.RunT(t)
	counter, err := unread.NewCounter("redis://" + redisServer.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = counter.Close() })

	messageRepository := repositories.NewMessageRepository(db, log, nil)
	notificationRepository := repositories.NewNotificationRepository(db, log)
	userRepository := repositories.NewUserRepository(db)
	candidateRepository := repositories.NewCandidateRepository(db)

	registry := runtime.NewRegistry()
	sup := workers.NewSupervisor(log, time.Millisecond)
	sanitizer := sanitize.NewSanitizer()
	notifier := notify.NewNotifier(log, notificationRepository, candidateRepository, registry, counter)
	engine := runtime.NewEngine(log, registry, messageRepository, userRepository,
		notifier, sanitizer, sup, 16)
	engine.Start(context.Background())
	t.Cleanup(engine.Stop)

	return stack{
		directory: NewDirectoryService(userRepository, candidateRepository, sanitizer),
		notes: NewNotesService(log, engine, registry,
			messageRepository, notificationRepository, counter),
		counter: counter,
	}
}

func Test_Full_Message_Pipeline_With_Mention(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newStack(t)

	alice, err := s.directory.Signup("Alice", "alice@corp.test")
	req.NoError(err)
	jane, err := s.directory.Signup("Jane Doe", "jane@corp.test")
	req.NoError(err)
	candidate, err := s.directory.CreateCandidate("Dana Prospect", "dana@applicant.test")
	req.NoError(err)

	roomID := domain.CandidateRoom(candidate.ID)
	aliceSink := &recordingSink{}
	janeSink := &recordingSink{}
	s.notes.JoinRoom("conn-alice", roomID, alice, aliceSink)
	s.notes.JoinRoom("conn-jane", roomID, jane, janeSink)

	s.notes.PostMessage(domain.PostMessageCommand{
		Room:      roomID,
		Text:      "<b>strong</b> candidate, @JaneDoe take a look",
		Sender:    alice,
		CreatedAt: time.Now().UTC(),
	}, aliceSink)

	// both members get the broadcast and the room-scoped tag event
	req.Eventually(func() bool { return len(janeSink.snapshot()) == 2 }, 3*time.Second, 10*time.Millisecond)

	var broadcast event.MessageBroadcast
	var tag event.MentionTag
	for _, e := range janeSink.snapshot() {
		switch evt := e.(type) {
		case event.MessageBroadcast:
			broadcast = evt
		case event.MentionTag:
			tag = evt
		}
	}
	req.Equal("strong candidate, @JaneDoe take a look", broadcast.Text)
	req.Equal(alice.ID, broadcast.UserID)
	req.Equal(jane.ID, tag.To)
	req.Equal("Alice", tag.From)
	req.Equal("Dana Prospect", tag.CandidateName)
	req.Equal(broadcast.ID, tag.MessageID)

	// message persisted, sanitized, readable as history
	history, err := s.notes.History(candidate.ID)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("strong candidate, @JaneDoe take a look", history[0].Text)

	// notification stored for Jane with preview, unread counted
	notifications, err := s.notes.Notifications(ctx, jane.ID)
	req.NoError(err)
	req.Len(notifications, 1)
	req.Equal(broadcast.ID, notifications[0].MessageID)
	req.False(notifications[0].Read)

	count, err := s.notes.UnreadCount(ctx, jane.ID)
	req.NoError(err)
	req.EqualValues(1, count)

	// mark-all-read flips the record and resets the counter
	req.NoError(s.notes.MarkAllRead(ctx, jane.ID))
	notifications, err = s.notes.Notifications(ctx, jane.ID)
	req.NoError(err)
	req.True(notifications[0].Read)

	count, err = s.notes.UnreadCount(ctx, jane.ID)
	req.NoError(err)
	req.Zero(count)
}

func Test_Disconnect_Stops_Broadcasts(t *testing.T) {
	req := require.New(t)
	s := newStack(t)

	alice, err := s.directory.Signup("Alice", "alice@corp.test")
	req.NoError(err)
	candidate, err := s.directory.CreateCandidate("Dana Prospect", "dana@applicant.test")
	req.NoError(err)

	roomID := domain.CandidateRoom(candidate.ID)
	sink := &recordingSink{}
	s.notes.JoinRoom("conn-1", roomID, alice, sink)
	s.notes.Disconnect("conn-1")

	s.notes.PostMessage(domain.PostMessageCommand{
		Room: roomID, Text: "anyone there?", Sender: alice, CreatedAt: time.Now().UTC(),
	}, nil)

	// message still persists even with nobody connected
	req.Eventually(func() bool {
		history, err := s.notes.History(candidate.ID)
		return err == nil && len(history) == 1
	}, 3*time.Second, 10*time.Millisecond)
	req.Empty(sink.snapshot())
}
