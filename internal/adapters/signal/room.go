package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Scribe/internal/domain"
	"github.com/dkeye/Scribe/internal/protocol"
)

func (ctl *SignalWSController) handleJoin(
	id domain.ConnID,
	conn *WsSignalConn,
	env protocol.Envelope,
) {
	var p protocol.JoinRoom
	if err := protocol.DecodePayload(env, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, protocol.CodeBadPayload, err.Error())
		return
	}
	if !ctl.Limiter.Allow(id) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("join rate limited")
		ctl.sendError(conn, protocol.CodeRateLimited, "too many joins")
		return
	}

	log.Info().Str("module", "signal").Str("conn", string(id)).Str("room", p.RoomID).Str("name", p.Username).Msg("join")
	ctl.Orch.Join(id, domain.RoomID(p.RoomID), p.Username)
}

func (ctl *SignalWSController) handleContentChange(
	id domain.ConnID,
	conn *WsSignalConn,
	env protocol.Envelope,
) {
	var p protocol.ContentChange
	if err := protocol.DecodePayload(env, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad content payload")
		ctl.sendError(conn, protocol.CodeBadPayload, err.Error())
		return
	}
	ctl.Orch.ChangeContent(id, domain.RoomID(p.RoomID), *p.Content)
}

// handleLeave leaves the room; the connection stays open.
func (ctl *SignalWSController) handleLeave(
	id domain.ConnID,
	conn *WsSignalConn,
	env protocol.Envelope,
) {
	var p protocol.LeaveRoom
	if err := protocol.DecodePayload(env, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave payload")
		ctl.sendError(conn, protocol.CodeBadPayload, err.Error())
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("room", p.RoomID).Msg("leave")
	ctl.Orch.Leave(id, domain.RoomID(p.RoomID))
}
