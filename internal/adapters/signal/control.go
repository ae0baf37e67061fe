package signal

import (
	"github.com/dkeye/Scribe/internal/domain"
	"github.com/dkeye/Scribe/internal/protocol"
)

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	ctl.sendJSON(conn, protocol.Event{Type: protocol.TypePong})
}

func (ctl *SignalWSController) handleWhoAmI(
	id domain.ConnID,
	conn *WsSignalConn,
) {
	resp := protocol.Identity{ID: id}
	if room, ok := ctl.Orch.Registry.RoomOf(id); ok {
		resp.Room = room
	}
	ctl.sendJSON(conn, protocol.Event{Type: protocol.TypeWhoAmI, Data: resp})
}
