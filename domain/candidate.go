package domain

// Candidate is the subject of a note thread.
// Each candidate defines one room namespace (see RoomID).
type Candidate struct {
	ID    string
	Name  string
	Email string
}
