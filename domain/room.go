package domain

import "strings"

const roomPrefix = "candidate:"

// RoomID identifies a broadcast scope, one per candidate note thread.
// Wire format is "candidate:<candidateID>".
type RoomID string

func CandidateRoom(candidateID string) RoomID {
	return RoomID(roomPrefix + candidateID)
}

// CandidateID recovers the candidate behind a room.
// Only the first separator is significant: a candidate id may itself
// contain ':'.
func (r RoomID) CandidateID() string {
	parts := strings.SplitN(string(r), ":", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
