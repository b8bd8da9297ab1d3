package signal

import (
	"encoding/json"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleVoiceJoin(sid core.SessionID, conn *WsSignalConn, data json.RawMessage) {
	var p core.VoiceJoinRequest
	if !ctl.bind(conn, data, &p) {
		return
	}
	if err := ctl.Orch.VoiceJoin(sid, p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("voice join rejected")
		ctl.sendError(conn, core.ErrCodeBadPayload)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("channel", string(p.ChannelID)).Msg("voice join")
}

func (ctl *SignalWSController) handleVoiceLeave(conn *WsSignalConn, data json.RawMessage) {
	var p core.VoiceLeave
	if !ctl.bind(conn, data, &p) {
		return
	}
	ctl.Orch.VoiceLeave(p)
	ctl.Speaking.Forget(p.UserID)
}

func (ctl *SignalWSController) handleVoiceState(conn *WsSignalConn, data json.RawMessage) {
	var p core.VoiceState
	if !ctl.bind(conn, data, &p) {
		return
	}
	ctl.Orch.VoiceState(p)
}

// handleVoiceSpeaking throttles per user. A stop is always let through so
// a throttled burst cannot leave someone shown as speaking.
func (ctl *SignalWSController) handleVoiceSpeaking(conn *WsSignalConn, data json.RawMessage) {
	var p core.VoiceSpeaking
	if !ctl.bind(conn, data, &p) {
		return
	}
	if p.Speaking && !ctl.Speaking.Allow(p.UserID) {
		log.Debug().Str("module", "signal").Str("user", string(p.UserID)).Msg("speaking throttled")
		return
	}
	ctl.Orch.VoiceSpeaking(p)
}

func (ctl *SignalWSController) handleVoiceHeartbeat(conn *WsSignalConn, data json.RawMessage) {
	var p core.VoiceHeartbeat
	if !ctl.bind(conn, data, &p) {
		return
	}
	if !ctl.Orch.VoiceHeartbeat(p) {
		log.Debug().Str("module", "signal").Str("user", string(p.UserID)).Str("channel", string(p.ChannelID)).Msg("heartbeat for absent participant")
	}
}
