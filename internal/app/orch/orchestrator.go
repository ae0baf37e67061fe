package orch

import (
	"github.com/dkeye/Scribe/internal/app"
	"github.com/dkeye/Scribe/internal/core"
	"github.com/dkeye/Scribe/internal/domain"
	"github.com/dkeye/Scribe/internal/protocol"
)

//go:generate mockgen -source=orchestrator.go -destination=mocks/transport_mock.go -package=mocks Transport

// Transport delivers events to connections. Sends to connections that are
// gone are dropped inside the transport. Methods run with a room lock held:
// they must not block and must not update rooms.
type Transport interface {
	SendTo(id domain.ConnID, ev protocol.Event)
	SendToRoomExcept(room domain.RoomID, except domain.ConnID, ev protocol.Event)
	SendToRoom(room domain.RoomID, ev protocol.Event)
}

type Scope int

const (
	ToConn Scope = iota
	ToRoomExcept
	ToRoom
)

// Delivery is one fan-out instruction. Conn is the target for ToConn and
// the excluded sender for ToRoomExcept.
type Delivery struct {
	Scope Scope
	Room  domain.RoomID
	Conn  domain.ConnID
	Event protocol.Event
}

// Plan is the ordered list of deliveries produced by one intent.
type Plan []Delivery

type Orchestrator struct {
	Registry  *app.Registry
	Rooms     core.RoomManager
	Transport Transport
}

// Dispatch hands every delivery of plan to the transport, in order. Room
// operations call it from inside the room lock.
func (o *Orchestrator) Dispatch(plan Plan) {
	if o.Transport == nil {
		return
	}
	for _, d := range plan {
		switch d.Scope {
		case ToConn:
			o.Transport.SendTo(d.Conn, d.Event)
		case ToRoomExcept:
			o.Transport.SendToRoomExcept(d.Room, d.Conn, d.Event)
		case ToRoom:
			o.Transport.SendToRoom(d.Room, d.Event)
		}
	}
}
