package signal

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Scribe/internal/app"
	"github.com/dkeye/Scribe/internal/core"
	"github.com/dkeye/Scribe/internal/domain"
	"github.com/dkeye/Scribe/internal/metrics"
	"github.com/dkeye/Scribe/internal/protocol"
)

// Broadcaster implements orch.Transport over the connections bound in the
// registry. Room recipients are read from the room store at send time.
type Broadcaster struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Policy   app.Policy
}

func (b *Broadcaster) SendTo(id domain.ConnID, ev protocol.Event) {
	if frame, ok := encode(ev); ok {
		b.deliver(id, frame)
	}
}

func (b *Broadcaster) SendToRoomExcept(room domain.RoomID, except domain.ConnID, ev protocol.Event) {
	frame, ok := encode(ev)
	if !ok {
		return
	}
	for _, id := range b.Rooms.MemberConns(room) {
		if id != except {
			b.deliver(id, frame)
		}
	}
}

func (b *Broadcaster) SendToRoom(room domain.RoomID, ev protocol.Event) {
	frame, ok := encode(ev)
	if !ok {
		return
	}
	for _, id := range b.Rooms.MemberConns(room) {
		b.deliver(id, frame)
	}
}

func encode(ev protocol.Event) (core.Frame, bool) {
	frame, err := ev.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("type", ev.Type).Msg("encode event")
		return nil, false
	}
	return frame, true
}

// deliver never reports failure upward: gone connections are skipped and a
// full buffer is settled by the policy.
func (b *Broadcaster) deliver(id domain.ConnID, frame core.Frame) {
	conn, ok := b.Registry.Connection(id)
	if !ok {
		return
	}
	err := conn.TrySend(frame)
	if err == nil || !errors.Is(err, ErrBackpressure) {
		return
	}
	metrics.FramesDropped.Inc()
	if b.Policy == nil {
		return
	}
	switch b.Policy.OnBackPressure(id) {
	case app.KickMember:
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("kicking slow connection")
		// the pumps see the canceled context and run disconnect cleanup
		if !b.Registry.Cancel(id) {
			conn.Close()
		}
	case app.DropFrame, app.NoAction:
		log.Debug().Str("module", "signal").Str("conn", string(id)).Msg("dropped frame")
	}
}
