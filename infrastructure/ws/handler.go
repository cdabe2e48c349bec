// Package ws is the live transport: one WebSocket connection per
// client, carrying join and message frames in, and message/tag events
// out. Malformed frames are dropped here and never reach the core.
package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"collab-notes/domain"
	"collab-notes/services"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// frame is the wire envelope in both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type wireUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type joinPayload struct {
	RoomID string   `json:"roomId"`
	User   wireUser `json:"user"`
}

type messagePayload struct {
	RoomID string   `json:"roomId"`
	Text   string   `json:"text"`
	User   wireUser `json:"user"`
}

type Handler struct {
	log        *slog.Logger
	notes      services.INotesService
	bufferSize int
}

func NewHandler(log *slog.Logger, notes services.INotesService, bufferSize int) *Handler {
	return &Handler{log: log, notes: notes, bufferSize: bufferSize}
}

// HandleConnection owns one client connection for its lifetime: a
// writer goroutine drains the connection's sink while this goroutine
// reads frames. When the read loop ends, for any reason, the connection
// is removed from every room it joined.
func (h *Handler) HandleConnection(conn *websocket.Conn) {
	connID := uuid.NewString()
	sink := newConnSink(h.log, connID, h.bufferSize)

	done := make(chan struct{})
	go h.writeLoop(conn, sink, done)

	defer func() {
		h.notes.Disconnect(connID)
		close(done)
		_ = conn.Close()
		h.log.Debug("Connection closed", "conn_id", connID)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("WebSocket read error", "conn_id", connID, "error", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			h.log.Debug("Dropping malformed frame", "conn_id", connID)
			continue
		}

		switch f.Event {
		case "join":
			h.handleJoin(connID, f.Data, sink)
		case "message":
			h.handleMessage(f.Data, sink)
		default:
			h.log.Debug("Dropping unknown frame", "conn_id", connID, "event", f.Event)
		}
	}
}

func (h *Handler) handleJoin(connID string, data json.RawMessage, sink *connSink) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || p.User.ID == "" {
		h.log.Debug("Dropping malformed join", "conn_id", connID)
		return
	}
	h.notes.JoinRoom(connID, domain.RoomID(p.RoomID), domain.User(p.User), sink)
}

func (h *Handler) handleMessage(data json.RawMessage, sink *connSink) {
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || p.User.ID == "" {
		h.log.Debug("Dropping malformed message frame")
		return
	}
	h.notes.PostMessage(domain.PostMessageCommand{
		Room:      domain.RoomID(p.RoomID),
		Text:      p.Text,
		Sender:    domain.User(p.User),
		CreatedAt: time.Now().UTC(),
	}, sink)
}

func (h *Handler) writeLoop(conn *websocket.Conn, sink *connSink, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case evt := <-sink.events:
			out, ok := toFrame(evt)
			if !ok {
				continue
			}
			if err := conn.WriteJSON(out); err != nil {
				h.log.Warn("WebSocket write failed", "conn_id", sink.connID, "error", err)
				return
			}
		}
	}
}
