package ws

import (
	"collab-notes/domain/event"
)

type outMessage struct {
	ID          string `json:"id"`
	CandidateID string `json:"candidateId"`
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	Text        string `json:"text"`
}

type outTag struct {
	To            string `json:"to"`
	From          string `json:"from"`
	CandidateName string `json:"candidateName"`
	MessageID     string `json:"messageId"`
}

type outError struct {
	Reason string `json:"reason"`
}

type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// toFrame maps a domain event onto its wire shape. Events with no wire
// representation are skipped.
func toFrame(e event.DomainEvent) (outFrame, bool) {
	switch evt := e.(type) {
	case event.MessageBroadcast:
		return outFrame{Event: "message", Data: outMessage{
			ID:          evt.ID.String(),
			CandidateID: evt.CandidateID,
			UserID:      evt.UserID,
			UserName:    evt.UserName,
			Text:        evt.Text,
		}}, true
	case event.MentionTag:
		return outFrame{Event: "tag", Data: outTag{
			To:            evt.To,
			From:          evt.From,
			CandidateName: evt.CandidateName,
			MessageID:     evt.MessageID.String(),
		}}, true
	case event.MessageRejected:
		return outFrame{Event: "error", Data: outError{Reason: evt.Reason}}, true
	default:
		return outFrame{}, false
	}
}
