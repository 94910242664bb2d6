// Package domain contains entity types without logic, just meta-data.
package domain

type (
	// ConnID identifies one live transport connection. Assigned by the
	// transport adapter at upgrade time, stable for the connection's lifetime.
	ConnID string

	// RoomID is the caller-chosen room key. The UI constrains it to short
	// alphanumeric tokens, the coordinator does not.
	RoomID string
)

// RoomCapacity is the hard cap on simultaneous members per room.
const RoomCapacity = 2

// Member ties a live connection to the email it joined a room with.
type Member struct {
	Conn  ConnID `json:"conn"`
	Email string `json:"email"`
}
