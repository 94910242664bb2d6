package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jsolak/Huddle/internal/core"
	"github.com/jsolak/Huddle/internal/domain"
)

// Coordinator is the room/session state machine: it owns the registry and
// the room store, validates admissions and fans out membership events.
// One lock covers the whole join/leave/credential sequence so two racing
// joins can never both observe a free slot.
type Coordinator struct {
	mu       sync.RWMutex
	registry *Registry
	rooms    *roomStore
	policy   Policy
}

func NewCoordinator(policy Policy) *Coordinator {
	if policy == nil {
		policy = KickPolicy{}
	}
	return &Coordinator{
		registry: NewRegistry(),
		rooms:    newRoomStore(),
		policy:   policy,
	}
}

// Connect registers a fresh transport connection.
func (c *Coordinator) Connect(id domain.ConnID, conn core.SignalConnection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Bind(id, conn)
}

// Join admits the connection into the room or rejects it with a reason
// event sent to the caller only. Credentials are recorded upon successful
// admission, never by a rejected attempt.
func (c *Coordinator) Join(id domain.ConnID, roomID domain.RoomID, email, password string) error {
	c.mu.Lock()

	if !c.registry.Connected(id) {
		c.mu.Unlock()
		log.Warn().Str("module", "app.coordinator").Str("conn", string(id)).Msg("join from unknown connection")
		return nil
	}

	rm := c.rooms.ensure(roomID)

	// A member re-sending join for its current room is a no-op; admitting
	// it again would double-count membership.
	if _, already := rm.memberEmail(id); already {
		c.mu.Unlock()
		return nil
	}

	if rm.hasEmail(email, id) {
		c.emit(id, core.EventJoinError, core.ErrorMessage{Message: msgDuplicateEmail})
		c.rooms.deleteIfEmpty(roomID)
		c.mu.Unlock()
		log.Info().Str("module", "app.coordinator").Str("room", string(roomID)).Str("email", email).Msg("join rejected: duplicate email")
		return ErrDuplicateEmail
	}

	if stored, ok := rm.creds[email]; ok && stored != password {
		c.emit(id, core.EventJoinError, core.ErrorMessage{Message: msgInvalidCredentials})
		c.rooms.deleteIfEmpty(roomID)
		c.mu.Unlock()
		log.Info().Str("module", "app.coordinator").Str("room", string(roomID)).Str("email", email).Msg("join rejected: bad credentials")
		return ErrInvalidCredentials
	}

	if rm.size() >= domain.RoomCapacity {
		c.emit(id, core.EventRoomFull, core.ErrorMessage{Message: msgRoomFull})
		c.mu.Unlock()
		log.Info().Str("module", "app.coordinator").Str("room", string(roomID)).Str("conn", string(id)).Msg("join rejected: room full")
		return ErrRoomFull
	}

	if _, ok := rm.creds[email]; !ok {
		rm.creds[email] = password
	}

	peers := make([]string, 0, rm.size())
	for _, m := range rm.members {
		peers = append(peers, string(m.Conn))
	}

	rm.addMember(id, email)
	c.registry.EnterRoom(id, roomID)
	count := rm.size()
	log.Info().Str("module", "app.coordinator").Str("room", string(roomID)).Str("conn", string(id)).Int("count", count).Msg("joined")

	// Membership is committed before either broadcast, so the count is
	// post-join accurate everywhere.
	slow := c.broadcastRoom(rm, core.EventUserConnected, core.UserConnected{
		UserID:      string(id),
		ClientCount: count,
	})
	if len(peers) > 0 {
		c.emit(id, core.EventExistingPeers, core.ExistingPeers{
			Peers:       peers,
			ClientCount: count,
		})
	}
	c.mu.Unlock()

	c.reap(slow)
	return nil
}

// Leave is the explicit counterpart of a transport drop. Leaving a room the
// connection is not in is a no-op: no error, no broadcast.
func (c *Coordinator) Leave(id domain.ConnID, roomID domain.RoomID) {
	c.mu.Lock()
	rm, ok := c.rooms.get(roomID)
	if !ok {
		c.mu.Unlock()
		return
	}
	if _, member := rm.memberEmail(id); !member {
		c.mu.Unlock()
		return
	}

	rm.removeMember(id)
	c.registry.ExitRoom(id, roomID)
	count := rm.size()
	log.Info().Str("module", "app.coordinator").Str("room", string(roomID)).Str("conn", string(id)).Msg("left room")

	slow := c.broadcastRoom(rm, core.EventUserDisconnected, core.UserDisconnected{
		UserID:      string(id),
		ClientCount: count,
	})
	c.rooms.deleteIfEmpty(roomID)
	c.mu.Unlock()

	c.reap(slow)
}

// Disconnect handles a transport-level drop: the equivalent of Leave for
// every room the connection occupied, then registry removal. Safe to call
// more than once for the same id.
func (c *Coordinator) Disconnect(id domain.ConnID) {
	c.mu.Lock()
	roomIDs := c.registry.Unbind(id)

	var slow []slowMember
	for _, roomID := range roomIDs {
		rm, ok := c.rooms.get(roomID)
		if !ok {
			continue
		}
		rm.removeMember(id)
		slow = append(slow, c.broadcastRoom(rm, core.EventUserDisconnected, core.UserDisconnected{
			UserID:      string(id),
			ClientCount: rm.size(),
		})...)
		c.rooms.deleteIfEmpty(roomID)
	}
	c.mu.Unlock()

	c.reap(slow)
}

// EmailInUse reports whether a live member of the room joined with this
// email. Used by the transport handshake pre-check.
func (c *Coordinator) EmailInUse(roomID domain.RoomID, email string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rm, ok := c.rooms.get(roomID)
	if !ok {
		return false
	}
	return rm.hasEmail(email, "")
}

// RoomInfo is a read-only view for the HTTP API.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"client_count"`
}

func (c *Coordinator) RoomList() []RoomInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]RoomInfo, 0, len(c.rooms.rooms))
	for id, rm := range c.rooms.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: rm.size()})
	}
	return out
}

// Shutdown closes every live connection and runs the usual disconnect
// cleanup for each.
func (c *Coordinator) Shutdown() {
	c.mu.RLock()
	ids := c.registry.All()
	c.mu.RUnlock()

	for _, id := range ids {
		c.mu.RLock()
		conn, ok := c.registry.Get(id)
		c.mu.RUnlock()
		if ok {
			conn.Close()
		}
		c.Disconnect(id)
	}
	log.Info().Str("module", "app.coordinator").Int("conns", len(ids)).Msg("coordinator shut down")
}

type slowMember struct {
	room domain.RoomID
	conn domain.ConnID
}

// emit sends one event to one connection. Callers hold the lock.
func (c *Coordinator) emit(id domain.ConnID, event string, data any) {
	conn, ok := c.registry.Get(id)
	if !ok {
		return
	}
	frame, err := core.Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("event", event).Msg("encode event")
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("conn", string(id)).Str("event", event).Msg("send dropped")
	}
}

// broadcastRoom fans an event out to every current member and reports the
// ones whose send buffer overflowed. Callers hold the lock.
func (c *Coordinator) broadcastRoom(rm *room, event string, data any) []slowMember {
	frame, err := core.Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("event", event).Msg("encode event")
		return nil
	}
	var slow []slowMember
	for _, m := range rm.members {
		conn, ok := c.registry.Get(m.Conn)
		if !ok {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			slow = append(slow, slowMember{room: rm.id, conn: m.Conn})
		}
	}
	return slow
}

// reap applies the backpressure policy outside the lock.
func (c *Coordinator) reap(slow []slowMember) {
	for _, s := range slow {
		switch c.policy.OnBackpressure(s.room, s.conn) {
		case KickMember:
			log.Warn().Str("module", "app.coordinator").Str("conn", string(s.conn)).Str("room", string(s.room)).Msg("kicking slow consumer")
			c.mu.RLock()
			conn, ok := c.registry.Get(s.conn)
			c.mu.RUnlock()
			if ok {
				conn.Close()
			}
			c.Disconnect(s.conn)
		case NoAction, DropFrame:
		}
	}
}
