package app

import (
	"github.com/rs/zerolog/log"

	"github.com/jsolak/Huddle/internal/core"
	"github.com/jsolak/Huddle/internal/domain"
)

type connEntry struct {
	conn  core.SignalConnection
	rooms map[domain.RoomID]struct{}
}

// Registry tracks live transport connections and which rooms each occupies.
// It holds no lock of its own: every caller goes through the Coordinator,
// which serializes access.
type Registry struct {
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*connEntry)}
}

func (r *Registry) Bind(id domain.ConnID, conn core.SignalConnection) {
	r.conns[id] = &connEntry{
		conn:  conn,
		rooms: make(map[domain.RoomID]struct{}),
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("bound connection")
}

// Unbind removes the connection and returns the rooms it still occupied,
// so the coordinator can run membership cleanup for each.
func (r *Registry) Unbind(id domain.ConnID) []domain.RoomID {
	e, ok := r.conns[id]
	if !ok {
		return nil
	}
	delete(r.conns, id)
	out := make([]domain.RoomID, 0, len(e.rooms))
	for roomID := range e.rooms {
		out = append(out, roomID)
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbound connection")
	return out
}

func (r *Registry) Get(id domain.ConnID) (core.SignalConnection, bool) {
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

func (r *Registry) Connected(id domain.ConnID) bool {
	_, ok := r.conns[id]
	return ok
}

func (r *Registry) EnterRoom(id domain.ConnID, roomID domain.RoomID) {
	if e, ok := r.conns[id]; ok {
		e.rooms[roomID] = struct{}{}
	}
}

func (r *Registry) ExitRoom(id domain.ConnID, roomID domain.RoomID) {
	if e, ok := r.conns[id]; ok {
		delete(e.rooms, roomID)
	}
}

// All returns every bound connection id. Used for shutdown.
func (r *Registry) All() []domain.ConnID {
	out := make([]domain.ConnID, 0, len(r.conns))
	for id := range r.conns {
		out = append(out, id)
	}
	return out
}
