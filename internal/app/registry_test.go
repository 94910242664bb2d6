package app

import (
	"testing"

	"github.com/jsolak/Huddle/internal/domain"
)

func TestRegistryBindAndLookup(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}

	r.Bind("c1", conn)

	if !r.Connected("c1") {
		t.Fatal("bound connection not reported as connected")
	}
	if got, ok := r.Get("c1"); !ok || got != conn {
		t.Fatal("Get returned the wrong connection")
	}
	if r.Connected("c2") {
		t.Fatal("unknown id reported as connected")
	}
}

func TestRegistryUnbindReturnsOccupiedRooms(t *testing.T) {
	r := NewRegistry()
	r.Bind("c1", &fakeConn{})
	r.EnterRoom("c1", "ABCDE")
	r.EnterRoom("c1", "FGHIJ")
	r.ExitRoom("c1", "FGHIJ")

	rooms := r.Unbind("c1")
	if len(rooms) != 1 || rooms[0] != domain.RoomID("ABCDE") {
		t.Fatalf("Unbind rooms = %v, want [ABCDE]", rooms)
	}
	if r.Connected("c1") {
		t.Fatal("connection still registered after Unbind")
	}
	if again := r.Unbind("c1"); again != nil {
		t.Fatalf("second Unbind = %v, want nil", again)
	}
}

func TestRegistryEnterRoomUnknownConn(t *testing.T) {
	r := NewRegistry()
	// Must not panic or create phantom entries.
	r.EnterRoom("ghost", "ABCDE")
	r.ExitRoom("ghost", "ABCDE")
	if r.Connected("ghost") {
		t.Fatal("phantom connection appeared")
	}
}

func TestRegistryAll(t *testing.T) {
	r := NewRegistry()
	r.Bind("c1", &fakeConn{})
	r.Bind("c2", &fakeConn{})

	ids := r.All()
	if len(ids) != 2 {
		t.Fatalf("All = %v, want 2 ids", ids)
	}
}
