package core

import "github.com/dkeye/Scribe/internal/domain"

// Frame is an encoded outbound event.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// RoomSnapshot is a copy of a room's state taken under its lock.
type RoomSnapshot struct {
	ID      domain.RoomID   `json:"id"`
	Content string          `json:"content"`
	Members []domain.Member `json:"members"`
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

// RoomManager is the process-wide room table.
// It never serializes room mutations itself; each Room does that.
type RoomManager interface {
	GetOrCreate(id domain.RoomID) *Room
	Get(id domain.RoomID) (*Room, bool)
	Remove(id domain.RoomID)
	Rooms() []*Room
	List() []RoomInfo
	MemberConns(id domain.RoomID) []domain.ConnID
}
