package core

import "encoding/json"

// Inbound event names.
const (
	EventJoinRoom     = "join-room"
	EventLeaveRoom    = "leave-room"
	EventSignal       = "signal"
	EventScreenSignal = "screen-signal"
	EventChat         = "chat"
	EventCallInitiate = "call-initiate"
	EventCallAccept   = "call-accept"
)

// Outbound event names. EventSignal, EventScreenSignal and EventChat are
// reused verbatim for the server-to-client direction.
const (
	EventUserConnected    = "user-connected"
	EventExistingPeers    = "existing-peers"
	EventUserDisconnected = "user-disconnected"
	EventJoinError        = "join-error"
	EventRoomFull         = "room-full"
	EventPeerDisconnected = "peer-disconnected"
	EventCallIncoming     = "call-incoming"
	EventCallAccepted     = "call-accepted"
)

// Envelope frames every wire message. The signal payloads carry their own
// "type" field, so the event name lives one level up instead of being
// flattened into the payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode wraps data into an Envelope and marshals the whole frame.
func Encode(event string, data any) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}

// UserConnected is broadcast to every member of a room, the newly admitted
// one included, after a successful join.
type UserConnected struct {
	UserID      string `json:"userId"`
	ClientCount int    `json:"clientCount"`
}

// UserDisconnected goes to the members remaining after a leave or drop.
type UserDisconnected struct {
	UserID      string `json:"userId"`
	ClientCount int    `json:"clientCount"`
}

// ExistingPeers tells a new arrival who to initiate signaling with, so both
// sides never race to be the offering side.
type ExistingPeers struct {
	Peers       []string `json:"peers"`
	ClientCount int      `json:"clientCount"`
}

// ErrorMessage is the payload of join-error and room-full.
type ErrorMessage struct {
	Message string `json:"message"`
}

// PeerDisconnected notifies a sender that its signaling target is gone.
type PeerDisconnected struct {
	ID string `json:"id"`
}

// SignalForward relays an opaque negotiation payload. Signal is never
// inspected; it is produced and consumed by the client peer libraries.
type SignalForward struct {
	From   string          `json:"from"`
	Signal json.RawMessage `json:"signal"`
	Type   string          `json:"type"`
}

// ChatMessage is broadcast to the whole room, sender included.
type ChatMessage struct {
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

// CallNotice carries call-incoming and call-accepted.
type CallNotice struct {
	From string `json:"from"`
}
