package ws

import (
	"context"
	"log/slog"

	"collab-notes/domain/event"
)

// connSink buffers events headed for one connection. Delivery is
// best-effort: when the buffer is full the event is dropped rather than
// blocking the engine on a slow client.
type connSink struct {
	log    *slog.Logger
	connID string
	events chan event.DomainEvent
}

func newConnSink(log *slog.Logger, connID string, bufferSize int) *connSink {
	return &connSink{log: log, connID: connID, events: make(chan event.DomainEvent, bufferSize)}
}

func (s *connSink) Consume(_ context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
	default:
		s.log.Warn("Connection buffer full, dropping event", "conn_id", s.connID)
	}
	return nil
}
