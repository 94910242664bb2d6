package app

import "errors"

// Join rejections. All are terminal for the attempt and scoped to the
// offending connection; none terminate the connection itself.
var (
	ErrDuplicateEmail     = errors.New("email already in use in the room")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRoomFull           = errors.New("room full")
)

// Client-facing rejection texts, kept stable for the UI.
const (
	msgDuplicateEmail     = "This email is already in use in the room."
	msgInvalidCredentials = "Invalid email or password."
	msgRoomFull           = "This room is full. Maximum 2 participants allowed."
)
