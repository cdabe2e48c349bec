// Package runtime hosts the messaging engine: room membership, the
// sanitize -> persist -> broadcast -> mention-scan -> notify pipeline,
// and the per-room workers that serialize it.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"collab-notes/contract"
	"collab-notes/domain"
	"collab-notes/domain/event"
	"collab-notes/mention"
	"collab-notes/notify"
	"collab-notes/repositories"
	"collab-notes/sanitize"

	"github.com/google/uuid"
)

// inbound couples a command with the submitting connection's sink, so a
// persistence failure can be reported to the sender and nobody else.
type inbound struct {
	cmd    domain.PostMessageCommand
	origin contract.EventSink
}

// Engine orchestrates the message pipeline. One worker goroutine per
// room consumes that room's commands sequentially, so persistence order
// equals broadcast order and every room has a total message order.
// Distinct rooms interleave freely.
type Engine struct {
	log        *slog.Logger
	registry   contract.IRegistry
	messages   repositories.IMessageRepository
	users      repositories.IUserRepository
	notifier   notify.INotifier
	sanitizer  *sanitize.Sanitizer
	supervisor contract.ISupervisor
	bufferSize int

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	rooms  map[domain.RoomID]chan inbound
}

func NewEngine(log *slog.Logger, registry contract.IRegistry,
	messages repositories.IMessageRepository, users repositories.IUserRepository,
	notifier notify.INotifier, sanitizer *sanitize.Sanitizer,
	supervisor contract.ISupervisor, bufferSize int) *Engine {
	return &Engine{
		log:        log,
		registry:   registry,
		messages:   messages,
		users:      users,
		notifier:   notifier,
		sanitizer:  sanitizer,
		supervisor: supervisor,
		bufferSize: bufferSize,
		rooms:      make(map[domain.RoomID]chan inbound),
	}
}

// Start arms the engine. Room workers come up lazily on the first
// message to each room and live until Stop.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctx, e.cancel = context.WithCancel(ctx)
}

// Stop cancels every room worker and waits for them to drain.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	e.supervisor.Wait()
}

// Submit hands a message to its room's worker. Never blocks: when a
// room's inbox is full the command is dropped and logged, matching the
// at-most-once contract (the sender simply gets no confirmation).
func (e *Engine) Submit(cmd domain.PostMessageCommand, origin contract.EventSink) {
	ch := e.roomInbox(cmd.Room)
	if ch == nil {
		e.log.Warn("Engine not started, dropping command", "room", cmd.Room)
		return
	}
	select {
	case ch <- inbound{cmd: cmd, origin: origin}:
	default:
		e.log.Warn(fmt.Sprintf("Inbox full for room %s, dropping command", cmd.Room))
	}
}

// roomInbox returns the room's command channel, spawning the supervised
// worker on first use. Rooms are created implicitly, never rejected.
func (e *Engine) roomInbox(roomID domain.RoomID) chan inbound {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx == nil {
		return nil
	}
	ch, ok := e.rooms[roomID]
	if !ok {
		ch = make(chan inbound, e.bufferSize)
		e.rooms[roomID] = ch
		e.supervisor.Start(e.ctx, &roomWorker{roomID: roomID, inbox: ch, engine: e, log: e.log})
	}
	return ch
}

// process runs the whole pipeline for one message:
// received -> sanitized -> persisted -> broadcast -> mention-scan ->
// notify (one independent task per mention).
//
// The hard invariant lives here: broadcast never happens before the
// store write succeeded, and no mention scan runs for a message that
// was not persisted. A store failure aborts the pipeline; only the
// submitting connection hears about it.
func (e *Engine) process(ctx context.Context, in inbound) {
	cmd := in.cmd
	candidateID := cmd.Room.CandidateID()
	text := e.sanitizer.Strip(cmd.Text)

	message := domain.Message{
		ID:          uuid.New(),
		CandidateID: candidateID,
		UserID:      cmd.Sender.ID,
		UserName:    cmd.Sender.Name,
		Text:        text,
		CreatedAt:   cmd.CreatedAt,
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	if err := e.messages.StoreMessage(message); err != nil {
		e.log.Error("Message persistence failed, aborting pipeline",
			"room", cmd.Room, "user_id", cmd.Sender.ID, "error", err)
		if in.origin != nil {
			_ = in.origin.Consume(ctx, event.MessageRejected{Room: cmd.Room, Reason: "message not saved"})
		}
		return
	}

	e.registry.Broadcast(ctx, cmd.Room, event.MessageBroadcast{
		ID:          message.ID,
		CandidateID: message.CandidateID,
		UserID:      message.UserID,
		UserName:    message.UserName,
		Text:        message.Text,
		At:          message.CreatedAt,
	})

	// Directory is fetched fresh per message: a signup takes effect on
	// the very next mention scan. The broadcast above already happened,
	// so a directory failure only costs the notifications.
	directory, err := e.users.ListUsers()
	if err != nil {
		e.log.Error("Directory fetch failed, skipping mention scan",
			"room", cmd.Room, "error", err)
		return
	}

	for _, recipient := range mention.Resolve(text, directory) {
		recipient := recipient
		go func() {
			if err := e.notifier.Notify(ctx, recipient, message); err != nil {
				e.log.Error("Notification failed",
					"recipient", recipient.ID, "message_id", message.ID, "error", err)
			}
		}()
	}
}

// roomWorker serializes one room's pipeline. Restarted by the
// supervisor if process panics.
type roomWorker struct {
	roomID domain.RoomID
	inbox  chan inbound
	engine *Engine
	log    *slog.Logger
}

func (w *roomWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping room worker", "room", w.roomID)
			return ctx.Err()
		case in, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.engine.process(ctx, in)
		}
	}
}
