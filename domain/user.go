// Package domain contains core concepts of the candidate notes system.
// No runtime, network, or UI logic should be added here.
package domain

// User is a recruiting staff identity. Immutable after creation.
// Referenced by ID everywhere else; never embedded.
type User struct {
	ID    string
	Name  string
	Email string
}
