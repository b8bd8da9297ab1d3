package signal

import (
	"encoding/json"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handlePresenceJoin(sid core.SessionID, conn *WsSignalConn, data json.RawMessage) {
	var p core.PresenceJoin
	if !ctl.bind(conn, data, &p) {
		return
	}
	if err := ctl.Orch.PresenceJoin(sid, p); err != nil {
		ctl.sendError(conn, core.ErrCodeBadPayload)
		return
	}
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("topic", p.Topic).Msg("presence join")
}

func (ctl *SignalWSController) handlePresenceTrack(sid core.SessionID, conn *WsSignalConn, data json.RawMessage) {
	var p core.PresenceTrack
	if !ctl.bind(conn, data, &p) {
		return
	}
	if err := ctl.Orch.PresenceTrack(sid, p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("topic", p.Topic).Msg("track rejected")
		ctl.sendError(conn, core.ErrCodeBadPayload)
	}
}

func (ctl *SignalWSController) handlePresenceLeave(sid core.SessionID, conn *WsSignalConn, data json.RawMessage) {
	var p core.PresenceLeave
	if !ctl.bind(conn, data, &p) {
		return
	}
	ctl.Orch.PresenceLeave(sid, p)
}
