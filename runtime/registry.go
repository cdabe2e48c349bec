package runtime

import (
	"context"
	"sync"

	"collab-notes/contract"
	"collab-notes/domain"
	"collab-notes/domain/event"
)

type Set map[string]struct{}

type connection struct {
	sink  contract.EventSink
	user  domain.User
	rooms Set // room ids this connection joined
}

// Registry owns the transient room-membership state: which live
// connections belong to which candidate room, and the user identity
// each connection claimed at join time.
//
// Nothing here is persisted. State is rebuilt from join events and torn
// down on disconnect.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*connection
	roomMembers map[domain.RoomID]Set // room -> connection ids
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]*connection),
		roomMembers: make(map[domain.RoomID]Set),
	}
}

// Join associates a connection with a room and records the claimed user
// identity for the connection's lifetime. Rooms are created implicitly.
// Re-joining the same room is idempotent: membership is a set, never
// duplicated. A connection may be in several rooms at once.
func (r *Registry) Join(connID string, roomID domain.RoomID, user domain.User, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.connections[connID]
	if !ok {
		conn = &connection{sink: sink, user: user, rooms: make(Set)}
		r.connections[connID] = conn
	}
	conn.sink = sink
	conn.user = user
	conn.rooms[string(roomID)] = struct{}{}

	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(Set)
	}
	r.roomMembers[roomID][connID] = struct{}{}
}

// Disconnect removes a connection from every room it joined and drops
// its session. No explicit leave call exists; this is the only exit
// path. Empty rooms are removed entirely so the map cannot leak.
func (r *Registry) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.connections[connID]
	if !ok {
		return
	}
	delete(r.connections, connID)

	for room := range conn.rooms {
		roomID := domain.RoomID(room)
		if members, ok := r.roomMembers[roomID]; ok {
			delete(members, connID)
			if len(members) == 0 {
				delete(r.roomMembers, roomID)
			}
		}
	}
}

// Broadcast delivers an event to every connection currently joined to
// the room. Membership is snapshotted under the read lock and delivery
// happens outside it, so joins and disconnects racing with an in-flight
// broadcast cannot corrupt iteration; late joiners simply miss already
// dispatched events. Empty room is a silent no-op.
func (r *Registry) Broadcast(ctx context.Context, roomID domain.RoomID, e event.DomainEvent) {
	for _, sink := range r.snapshot(roomID) {
		_ = sink.Consume(ctx, e) // best-effort, sink handles its own drops
	}
}

func (r *Registry) snapshot(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(members))
	for connID := range members {
		if conn, exists := r.connections[connID]; exists {
			sinks = append(sinks, conn.sink)
		}
	}
	return sinks
}

// User returns the identity recorded for a connection at join time.
func (r *Registry) User(connID string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.connections[connID]
	if !ok {
		return domain.User{}, false
	}
	return conn.user, true
}
