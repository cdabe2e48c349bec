package event

import (
	"time"

	"collab-notes/domain"

	"github.com/google/uuid"
)

// DomainEvent is anything the registry can deliver to room members.
type DomainEvent interface {
	RoomID() domain.RoomID
}

// MessageBroadcast is a persisted message pushed to every member of the
// candidate's room. Emitted only after the store write succeeded.
type MessageBroadcast struct {
	ID          uuid.UUID
	CandidateID string
	UserID      string
	UserName    string
	Text        string
	At          time.Time
}

func (m MessageBroadcast) RoomID() domain.RoomID {
	return domain.CandidateRoom(m.CandidateID)
}

// MentionTag is the room-scoped live event naming a mentioned user.
// Connected clients belonging to To can react without a dedicated
// notification subscription; everyone else ignores it.
type MentionTag struct {
	To            string // recipient user id
	From          string // sender display name
	CandidateID   string
	CandidateName string
	MessageID     uuid.UUID
}

func (m MentionTag) RoomID() domain.RoomID {
	return domain.CandidateRoom(m.CandidateID)
}

// MessageRejected is delivered to the submitting connection only, when
// persistence failed and the pipeline was aborted. Other room members
// never observe the message.
type MessageRejected struct {
	Room   domain.RoomID
	Reason string
}

func (m MessageRejected) RoomID() domain.RoomID { return m.Room }
