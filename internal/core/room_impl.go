package core

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dkeye/Scribe/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrRoomClosed = errors.New("room closed")

// State is the mutable part of a room. It is only reachable inside Room.Update.
type State struct {
	Content string
	Members []domain.Member
}

// Snapshot copies the state so it can leave the lock.
func (s *State) Snapshot(id domain.RoomID) RoomSnapshot {
	return RoomSnapshot{ID: id, Content: s.Content, Members: slices.Clone(s.Members)}
}

// Room is a threadsafe in-memory room.
// A room that loses its last member closes and releases itself from the
// store; a closed room rejects every further update.
type Room struct {
	id      domain.RoomID
	mu      sync.Mutex
	state   State
	closed  bool
	release func(*Room)

	// conns is the deduplicated member list as of the last update. It is
	// read without the lock so fan-out can run inside Update.
	conns atomic.Pointer[[]domain.ConnID]
}

func newRoom(id domain.RoomID, content string, release func(*Room)) *Room {
	return &Room{
		id:      id,
		state:   State{Content: content},
		release: release,
	}
}

func (r *Room) ID() domain.RoomID { return r.id }

// Update runs fn with exclusive access to the room state. If fn leaves the
// room without members the room is destroyed before Update returns.
func (r *Room) Update(fn func(s *State)) error {
	return r.UpdateThen(fn, nil)
}

// UpdateThen is Update with a publish step. publish runs after fn while the
// lock is still held and MemberConns already reflects fn, so frames queued
// by publish keep the order of the updates that produced them.
func (r *Room) UpdateThen(fn func(s *State), publish func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	fn(&r.state)
	r.storeConns()
	if publish != nil {
		publish()
	}
	if len(r.state.Members) == 0 {
		r.closeLocked()
	}
	return nil
}

func (r *Room) Snapshot() (RoomSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return RoomSnapshot{}, false
	}
	return r.state.Snapshot(r.id), true
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.Members)
}

// MemberConns returns every connection in the room once, in join order.
// The slice is shared and must not be modified.
func (r *Room) MemberConns() []domain.ConnID {
	if p := r.conns.Load(); p != nil {
		return *p
	}
	return nil
}

func (r *Room) storeConns() {
	out := make([]domain.ConnID, 0, len(r.state.Members))
	for _, m := range r.state.Members {
		if !slices.Contains(out, m.ID) {
			out = append(out, m.ID)
		}
	}
	r.conns.Store(&out)
}

func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closeLocked()
	}
}

func (r *Room) closeLocked() {
	r.closed = true
	r.state.Members = nil
	r.conns.Store(nil)
	if r.release != nil {
		r.release(r)
	}
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Msg("room closed")
}
