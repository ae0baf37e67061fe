package app

import (
	"context"
	"sync"

	"github.com/dkeye/Scribe/internal/core"
	"github.com/dkeye/Scribe/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	RoomID domain.RoomID
	Conn   core.SignalConnection
	Cancel context.CancelFunc
}

// Registry tracks live connections and the room each one currently occupies.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ConnID]*sessionEntry),
	}
}

func (r *Registry) Bind(id domain.ConnID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &sessionEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("bound connection")
}

func (r *Registry) Unbind(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbind connection")
}

// Connection returns the transport endpoint of a live connection.
func (r *Registry) Connection(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[id]; ok && e.Conn != nil {
		return e.Conn, true
	}
	return nil, false
}

func (r *Registry) RoomOf(id domain.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[id]
	if !ok || entry.RoomID == "" {
		return "", false
	}
	return entry.RoomID, true
}

// UpdateRoom records the room a connection joined. Connections that were
// never bound get an entry without a transport endpoint.
func (r *Registry) UpdateRoom(id domain.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		entry = &sessionEntry{}
		r.sessions[id] = entry
	}
	entry.RoomID = room
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Str("room", string(room)).Msg("updated room")
}

func (r *Registry) RemoveRoom(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sessions[id]; ok {
		entry.RoomID = ""
	}
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Msg("removed room association")
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Cancel stops the pumps of a bound connection, which then run disconnect
// cleanup. It reports false when there is nothing to cancel.
func (r *Registry) Cancel(id domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || e.Cancel == nil {
		return false
	}
	e.Cancel()
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}
