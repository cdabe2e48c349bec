//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"collab-notes/domain"
	"collab-notes/domain/event"
)

// ISupervisor runs workers under panic recovery with restart. Workers
// are started on demand (one per active room) rather than registered up
// front.
type ISupervisor interface {
	Start(ctx context.Context, worker Worker)
	Wait()
}

// Worker doesn't protect itself: the supervisor recovers panics and
// restarts it.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// for logging and supervision, avoiding manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one live connection's receiving end. Delivery is
// best-effort: a slow consumer may drop events, never block the engine.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry tracks which live connections belong to which candidate
// room. Membership is transient: rebuilt from join events, destroyed on
// disconnect.
type IRegistry interface {
	Join(connID string, roomID domain.RoomID, user domain.User, sink EventSink)
	Disconnect(connID string)
	Broadcast(ctx context.Context, roomID domain.RoomID, e event.DomainEvent)
}

// IEngine is the message pipeline entry point.
type IEngine interface {
	Submit(cmd domain.PostMessageCommand, origin EventSink)
}
