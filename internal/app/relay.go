package app

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jsolak/Huddle/internal/core"
	"github.com/jsolak/Huddle/internal/domain"
)

// Signal relays a webcam offer/answer payload to one connection. The
// payload is opaque: it is never inspected here.
func (c *Coordinator) Signal(from, to domain.ConnID, payload json.RawMessage, kind string) {
	c.routeSignal(core.EventSignal, from, to, payload, kind)
}

// ScreenSignal is the parallel channel for screen-share negotiation. It
// uses a distinct event name so webcam and screen exchanges never interfere.
func (c *Coordinator) ScreenSignal(from, to domain.ConnID, payload json.RawMessage, kind string) {
	c.routeSignal(core.EventScreenSignal, from, to, payload, kind)
}

func (c *Coordinator) routeSignal(event string, from, to domain.ConnID, payload json.RawMessage, kind string) {
	if to == "" {
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.registry.Connected(to) {
		log.Info().Str("module", "app.relay").Str("to", string(to)).Str("type", kind).Msg("signal target gone")
		c.emit(from, core.EventPeerDisconnected, core.PeerDisconnected{ID: string(to)})
		return
	}
	log.Debug().Str("module", "app.relay").Str("from", string(from)).Str("to", string(to)).Str("type", kind).Msg("forwarding signal")
	c.emit(to, event, core.SignalForward{From: string(from), Signal: payload, Type: kind})
}

// Chat broadcasts a trimmed text message to the whole room, sender
// included, so every client renders from the same authoritative event.
// Whitespace-only messages are dropped silently.
func (c *Coordinator) Chat(roomID domain.RoomID, message, sender string) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return
	}

	c.mu.RLock()
	rm, ok := c.rooms.get(roomID)
	if !ok {
		c.mu.RUnlock()
		return
	}
	slow := c.broadcastRoom(rm, core.EventChat, core.ChatMessage{Message: trimmed, Sender: sender})
	c.mu.RUnlock()

	c.reap(slow)
}

// CallInitiate rings the other member of the room.
func (c *Coordinator) CallInitiate(roomID domain.RoomID, from domain.ConnID) {
	c.relayCall(core.EventCallIncoming, roomID, from)
}

// CallAccept notifies the caller that the ring was answered.
func (c *Coordinator) CallAccept(roomID domain.RoomID, from domain.ConnID) {
	c.relayCall(core.EventCallAccepted, roomID, from)
}

// relayCall forwards a call-control notice to every member except the
// originator. With the 2-member cap that is the one other participant, or
// nobody. No call state is kept here.
func (c *Coordinator) relayCall(event string, roomID domain.RoomID, from domain.ConnID) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rm, ok := c.rooms.get(roomID)
	if !ok {
		return
	}
	for _, m := range rm.members {
		if m.Conn == from {
			continue
		}
		c.emit(m.Conn, event, core.CallNotice{From: string(from)})
	}
}
