package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"

	"github.com/dkeye/Scribe/internal/domain"
	"github.com/dkeye/Scribe/internal/metrics"
	"github.com/dkeye/Scribe/internal/protocol"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(ctl.cfg.WriteWait)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

// readPump runs every inbound event of one connection in order and performs
// disconnect cleanup when the socket goes away.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, id domain.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
		ctl.Orch.Disconnect(id)
		ctl.Limiter.Forget(id)
		metrics.ConnectionsActive.Dec()
		cancel()
		c.Close()
	}()

	if ctl.cfg.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
				}
				return
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
			ctl.handleSignal(id, c, data)
		}
	}
}

// handleSignal decodes one frame and routes it. A panic inside a handler is
// reported to this connection only.
func (ctl *SignalWSController) handleSignal(id domain.ConnID, c *WsSignalConn, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad json")
		ctl.sendError(c, protocol.CodeBadPayload, err.Error())
		return
	}

	var pc panics.Catcher
	pc.Try(func() { ctl.route(id, c, env) })
	if r := pc.Recovered(); r != nil {
		log.Error().Err(r.AsError()).Str("module", "signal").Str("conn", string(id)).Str("type", env.Type).Msg("handler panic")
		ctl.sendError(c, protocol.CodeInternal, fmt.Sprintf("Failed to handle %s", env.Type))
	}
}

func (ctl *SignalWSController) route(id domain.ConnID, c *WsSignalConn, env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeJoinRoom:
		ctl.handleJoin(id, c, env)
	case protocol.TypeContentChange:
		ctl.handleContentChange(id, c, env)
	case protocol.TypeLeaveRoom:
		ctl.handleLeave(id, c, env)
	case protocol.TypePing:
		ctl.handlePing(c)
	case protocol.TypeWhoAmI:
		ctl.handleWhoAmI(id, c)
	default:
		metrics.Events.WithLabelValues("unknown").Inc()
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, protocol.CodeUnknownType, "unknown event type "+env.Type)
		return
	}
	metrics.Events.WithLabelValues(env.Type).Inc()
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, ev protocol.Event) {
	b, err := ev.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, code, message string) {
	ctl.sendJSON(c, protocol.ErrorEvent(code, message))
}
