package domain

import "time"

type Command interface {
	RoomID() RoomID
}

// PostMessageCommand carries a raw inbound message into the engine.
// Text is untouched client input at this point; the engine sanitizes
// before anything else looks at it. Sender identity is taken as claimed
// by the connection (no server-side verification, by scope).
type PostMessageCommand struct {
	Room      RoomID
	Text      string
	Sender    User
	CreatedAt time.Time
}

func (c PostMessageCommand) RoomID() RoomID { return c.Room }
