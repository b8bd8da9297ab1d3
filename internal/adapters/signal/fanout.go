package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/core"
)

func (ctl *SignalWSController) handleChannelJoin(sid core.SessionID, conn *WsSignalConn, data json.RawMessage) {
	var p core.ChannelRoom
	if !ctl.bind(conn, data, &p) {
		return
	}
	if err := ctl.Orch.ChannelJoin(sid, p); err != nil {
		ctl.sendError(conn, core.ErrCodeBadPayload)
	}
}

func (ctl *SignalWSController) handleChannelLeave(sid core.SessionID, conn *WsSignalConn, data json.RawMessage) {
	var p core.ChannelRoom
	if !ctl.bind(conn, data, &p) {
		return
	}
	ctl.Orch.ChannelLeave(sid, p)
}

func (ctl *SignalWSController) handleTyping(sid core.SessionID, conn *WsSignalConn, data json.RawMessage, start bool) {
	var p core.Typing
	if !ctl.bind(conn, data, &p) {
		return
	}
	var err error
	if start {
		err = ctl.Orch.TypingStart(sid, p)
	} else {
		err = ctl.Orch.TypingStop(sid, p)
	}
	if err != nil {
		ctl.sendError(conn, core.ErrCodeBadPayload)
	}
}

func (ctl *SignalWSController) handleInvitation(conn *WsSignalConn, data json.RawMessage) {
	var p core.Invitation
	if !ctl.bind(conn, data, &p) {
		return
	}
	if err := ctl.Orch.Invite(p); err != nil {
		ctl.sendError(conn, core.ErrCodeBadPayload)
	}
}

func (ctl *SignalWSController) handleStatus(conn *WsSignalConn, data json.RawMessage) {
	var p core.StatusChange
	if !ctl.bind(conn, data, &p) {
		return
	}
	switch err := ctl.Orch.StatusChange(p); {
	case errors.Is(err, orch.ErrBadStatus):
		ctl.sendError(conn, core.ErrCodeBadStatus)
	case err != nil:
		ctl.sendError(conn, core.ErrCodeBadPayload)
	}
}
