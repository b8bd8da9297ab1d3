package signal

import "github.com/dkeye/Huddle/internal/core"

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.send(conn, core.EventPong, nil)
}

func (ctl *SignalWSController) handleWhoAmI(sid core.SessionID, conn *WsSignalConn) {
	resp := core.WhoAmI{SID: sid}
	if sess, ok := ctl.Orch.Registry.GetSession(sid); ok {
		resp.User = sess.User()
	}
	ctl.send(conn, core.EventWhoAmI, resp)
}
