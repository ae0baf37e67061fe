package orch

import (
	"errors"
	"slices"

	"github.com/dkeye/Scribe/internal/core"
	"github.com/dkeye/Scribe/internal/domain"
	"github.com/dkeye/Scribe/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Join adds the connection to the room, creating the room on first use.
// A connection associated with a different room leaves it first; joining the
// same room again appends a second member entry.
//
// Every operation here delivers its plan while the room lock is held and
// returns it for inspection. Callers must not dispatch it again.
func (o *Orchestrator) Join(id domain.ConnID, roomID domain.RoomID, name string) (core.RoomSnapshot, Plan) {
	var plan Plan
	if prev, ok := o.Registry.RoomOf(id); ok && prev != roomID {
		plan = append(plan, o.Leave(id, prev)...)
		log.Info().Str("module", "orch").Str("conn", string(id)).Str("from_room", string(prev)).Msg("left previous room")
	}
	o.Registry.UpdateRoom(id, roomID)

	member := domain.NewMember(id, name)
	var (
		snap   core.RoomSnapshot
		joined Plan
	)
	for {
		room := o.Rooms.GetOrCreate(roomID)
		err := room.UpdateThen(func(s *core.State) {
			s.Members = append(s.Members, member)
			snap = s.Snapshot(roomID)
			joined = Plan{
				{Scope: ToConn, Room: roomID, Conn: id, Event: protocol.RoomDataEvent(snap.Content, snap.Members)},
				{Scope: ToRoomExcept, Room: roomID, Conn: id, Event: protocol.UserJoinedEvent(member)},
			}
		}, func() { o.Dispatch(joined) })
		if !errors.Is(err, core.ErrRoomClosed) {
			break
		}
		// The room emptied between lookup and lock; the next lookup creates a fresh one.
	}
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(roomID)).Int("members", len(snap.Members)).Msg("joined")

	return snap, append(plan, joined...)
}

// ChangeContent overwrites the room document. Last write wins; changes for
// rooms that no longer exist are dropped.
func (o *Orchestrator) ChangeContent(id domain.ConnID, roomID domain.RoomID, content string) Plan {
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		log.Debug().Str("module", "orch").Str("conn", string(id)).Str("room", string(roomID)).Msg("content change for missing room")
		return nil
	}
	var plan Plan
	err := room.UpdateThen(func(s *core.State) {
		s.Content = content
		plan = Plan{{Scope: ToRoomExcept, Room: roomID, Conn: id, Event: protocol.ContentChangedEvent(content)}}
	}, func() { o.Dispatch(plan) })
	if err != nil {
		return nil
	}
	return plan
}

// Leave removes the first member entry of the connection from the room.
func (o *Orchestrator) Leave(id domain.ConnID, roomID domain.RoomID) Plan {
	o.Registry.RemoveRoom(id)
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return nil
	}
	var (
		plan  Plan
		empty bool
	)
	err := room.UpdateThen(func(s *core.State) {
		if i := slices.IndexFunc(s.Members, func(m domain.Member) bool { return m.ID == id }); i >= 0 {
			s.Members = slices.Delete(s.Members, i, i+1)
		}
		empty = len(s.Members) == 0
		if !empty {
			plan = Plan{{Scope: ToRoomExcept, Room: roomID, Conn: id, Event: protocol.UserLeftEvent(id)}}
		}
	}, func() { o.Dispatch(plan) })
	if err != nil {
		return nil
	}
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(roomID)).Bool("destroyed", empty).Msg("left")
	return plan
}

// Disconnect sweeps every room for member entries of the connection rather
// than trusting the registry association, then unbinds the connection.
func (o *Orchestrator) Disconnect(id domain.ConnID) Plan {
	var plan Plan
	for _, room := range o.Rooms.Rooms() {
		var (
			removed int
			empty   bool
			left    Plan
		)
		err := room.UpdateThen(func(s *core.State) {
			before := len(s.Members)
			s.Members = slices.DeleteFunc(s.Members, func(m domain.Member) bool { return m.ID == id })
			removed = before - len(s.Members)
			empty = len(s.Members) == 0
			if removed > 0 && !empty {
				left = Plan{{Scope: ToRoom, Room: room.ID(), Event: protocol.UserLeftEvent(id)}}
			}
		}, func() { o.Dispatch(left) })
		if err != nil || removed == 0 {
			continue
		}
		log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(room.ID())).Bool("destroyed", empty).Msg("removed on disconnect")
		plan = append(plan, left...)
	}
	o.Registry.Unbind(id)
	return plan
}
