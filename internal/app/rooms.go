package app

import (
	"github.com/rs/zerolog/log"

	"github.com/jsolak/Huddle/internal/domain"
)

// room is one call session: ordered membership plus the per-room credential
// table. Credentials live exactly as long as the room does.
type room struct {
	id      domain.RoomID
	members []domain.Member   // join order
	creds   map[string]string // email -> password, first writer wins
}

func (r *room) size() int { return len(r.members) }

func (r *room) memberEmail(id domain.ConnID) (string, bool) {
	for _, m := range r.members {
		if m.Conn == id {
			return m.Email, true
		}
	}
	return "", false
}

func (r *room) hasEmail(email string, except domain.ConnID) bool {
	for _, m := range r.members {
		if m.Conn != except && m.Email == email {
			return true
		}
	}
	return false
}

func (r *room) addMember(id domain.ConnID, email string) {
	r.members = append(r.members, domain.Member{Conn: id, Email: email})
}

func (r *room) removeMember(id domain.ConnID) {
	for i, m := range r.members {
		if m.Conn == id {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return
		}
	}
}

// roomStore owns all room records. The coordinator is the only writer and
// serializes access, so the store itself carries no lock.
type roomStore struct {
	rooms map[domain.RoomID]*room
}

func newRoomStore() *roomStore {
	return &roomStore{rooms: make(map[domain.RoomID]*room)}
}

func (s *roomStore) get(id domain.RoomID) (*room, bool) {
	rm, ok := s.rooms[id]
	return rm, ok
}

func (s *roomStore) ensure(id domain.RoomID) *room {
	if rm, ok := s.rooms[id]; ok {
		return rm
	}
	rm := &room{id: id, creds: make(map[string]string)}
	s.rooms[id] = rm
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	return rm
}

func (s *roomStore) size(id domain.RoomID) int {
	if rm, ok := s.rooms[id]; ok {
		return rm.size()
	}
	return 0
}

// deleteIfEmpty drops the room together with its credential table the
// moment membership reaches zero.
func (s *roomStore) deleteIfEmpty(id domain.RoomID) {
	rm, ok := s.rooms[id]
	if !ok || rm.size() > 0 {
		return
	}
	delete(s.rooms, id)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("empty room deleted")
}
