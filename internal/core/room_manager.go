package core

import (
	"cmp"
	"slices"
	"sync"

	"github.com/dkeye/Scribe/internal/domain"
	"github.com/dkeye/Scribe/internal/metrics"
	"github.com/rs/zerolog/log"
)

// RoomManagerImpl holds the rooms of one server instance.
//
// Lock order is room before store: a closing room calls back into the store
// while holding its own lock, so the store never calls into a room while
// holding m.mu.
type RoomManagerImpl struct {
	mu             sync.RWMutex
	rooms          map[domain.RoomID]*Room
	defaultContent string
}

func NewRoomManager(defaultContent string) *RoomManagerImpl {
	if defaultContent == "" {
		defaultContent = domain.DefaultContent
	}
	return &RoomManagerImpl{
		rooms:          make(map[domain.RoomID]*Room),
		defaultContent: defaultContent,
	}
}

func (m *RoomManagerImpl) GetOrCreate(id domain.RoomID) *Room {
	m.mu.RLock()
	room, ok := m.rooms[id]
	m.mu.RUnlock()
	if ok {
		return room
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok = m.rooms[id]; ok {
		return room
	}
	room = newRoom(id, m.defaultContent, m.release)
	m.rooms[id] = room
	metrics.RoomsActive.Inc()
	log.Info().Str("module", "core.room").Str("room", string(id)).Msg("room created")
	return room
}

func (m *RoomManagerImpl) Get(id domain.RoomID) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

// Remove deletes the room and closes it. No-op if absent.
func (m *RoomManagerImpl) Remove(id domain.RoomID) {
	m.mu.Lock()
	room, ok := m.rooms[id]
	if ok {
		delete(m.rooms, id)
		metrics.RoomsActive.Dec()
	}
	m.mu.Unlock()
	if ok {
		room.close()
	}
}

// release is called by a room that closes itself, with the room lock held.
func (m *RoomManagerImpl) release(room *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.rooms[room.id]; ok && cur == room {
		delete(m.rooms, room.id)
		metrics.RoomsActive.Dec()
	}
}

// Rooms returns the rooms tracked right now. The slice is a copy.
func (m *RoomManagerImpl) Rooms() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

func (m *RoomManagerImpl) List() []RoomInfo {
	rooms := m.Rooms()
	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		if n := r.MemberCount(); n > 0 {
			out = append(out, RoomInfo{ID: r.id, MemberCount: n})
		}
	}
	slices.SortFunc(out, func(a, b RoomInfo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (m *RoomManagerImpl) MemberConns(id domain.RoomID) []domain.ConnID {
	room, ok := m.Get(id)
	if !ok {
		return nil
	}
	return room.MemberConns()
}

// Close tears down every room. Used on shutdown.
func (m *RoomManagerImpl) Close() {
	for _, r := range m.Rooms() {
		m.Remove(r.id)
	}
	log.Info().Str("module", "core.room").Msg("room manager closed")
}
