package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/jsolak/Huddle/internal/core"
	"github.com/jsolak/Huddle/internal/domain"
)

func (ctl *Controller) dispatch(id domain.ConnID, data []byte) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad envelope")
		return
	}

	switch env.Event {
	case core.EventJoinRoom:
		ctl.handleJoin(id, env.Data)
	case core.EventLeaveRoom:
		ctl.handleLeave(id, env.Data)
	case core.EventSignal:
		ctl.handleSignal(id, env.Data, false)
	case core.EventScreenSignal:
		ctl.handleSignal(id, env.Data, true)
	case core.EventChat:
		ctl.handleChat(env.Data)
	case core.EventCallInitiate:
		ctl.handleCall(env.Data, core.EventCallInitiate)
	case core.EventCallAccept:
		ctl.handleCall(env.Data, core.EventCallAccept)
	default:
		log.Warn().Str("module", "signal").Str("event", env.Event).Msg("unknown event")
	}
}

func (ctl *Controller) handleJoin(id domain.ConnID, data []byte) {
	type joinPayload struct {
		RoomID   string `json:"roomId"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}

	if !ctl.limiter.Allow(id) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("join rate limit exceeded, dropping attempt")
		return
	}

	log.Info().Str("module", "signal").Str("conn", string(id)).Str("room", p.RoomID).Str("email", p.Email).Msg("join-room")
	_ = ctl.Coord.Join(id, domain.RoomID(p.RoomID), p.Email, p.Password)
}

func (ctl *Controller) handleLeave(id domain.ConnID, data []byte) {
	type leavePayload struct {
		RoomID string `json:"roomId"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave payload")
		return
	}
	ctl.Coord.Leave(id, domain.RoomID(p.RoomID))
}

// handleSignal covers both the webcam and the screen-share channel. The
// sender identity is taken from the connection, not the payload, so it
// cannot be spoofed; the two values are identical for well-behaved clients.
func (ctl *Controller) handleSignal(id domain.ConnID, data []byte, screen bool) {
	type signalPayload struct {
		To     string          `json:"to"`
		Signal json.RawMessage `json:"signal"`
		Type   string          `json:"type"`
	}
	var p signalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad signal payload")
		return
	}
	if screen {
		ctl.Coord.ScreenSignal(id, domain.ConnID(p.To), p.Signal, p.Type)
		return
	}
	ctl.Coord.Signal(id, domain.ConnID(p.To), p.Signal, p.Type)
}

func (ctl *Controller) handleChat(data []byte) {
	type chatPayload struct {
		RoomID  string `json:"roomId"`
		Message string `json:"message"`
		Sender  string `json:"sender"`
	}
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		return
	}
	ctl.Coord.Chat(domain.RoomID(p.RoomID), p.Message, p.Sender)
}

func (ctl *Controller) handleCall(data []byte, event string) {
	type callPayload struct {
		RoomID string `json:"roomId"`
		From   string `json:"from"`
	}
	var p callPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad call payload")
		return
	}
	if event == core.EventCallInitiate {
		ctl.Coord.CallInitiate(domain.RoomID(p.RoomID), domain.ConnID(p.From))
		return
	}
	ctl.Coord.CallAccept(domain.RoomID(p.RoomID), domain.ConnID(p.From))
}
