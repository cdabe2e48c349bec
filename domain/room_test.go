package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_RoomID_Round_Trip(t *testing.T) {
	req := require.New(t)

	roomID := CandidateRoom("cand-42")
	req.Equal(RoomID("candidate:cand-42"), roomID)
	req.Equal("cand-42", roomID.CandidateID())
}

func Test_RoomID_CandidateID_Keeps_Inner_Separators(t *testing.T) {
	req := require.New(t)
	// only the first ':' delimits; a candidate id may contain ':'
	req.Equal("a:b:c", RoomID("candidate:a:b:c").CandidateID())
	req.Equal("", RoomID("no-separator").CandidateID())
}
