package app

import "github.com/jsolak/Huddle/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a member whose send buffer overflowed
// during a broadcast.
type Policy interface {
	OnBackpressure(roomID domain.RoomID, id domain.ConnID) BackpressureAction
}

// KickPolicy treats a slow consumer like a transport drop: it is
// disconnected and the room is notified.
type KickPolicy struct{}

func (KickPolicy) OnBackpressure(roomID domain.RoomID, id domain.ConnID) BackpressureAction {
	return KickMember
}
