package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Orch.Registry.Cancel(sid)
		ctl.Orch.OnDisconnect(sid)
		c.Close()
	}()

	pongWait := ctl.opts.PingPeriod * 10 / 9
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
			ctl.handleSignal(sid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(sid core.SessionID, c *WsSignalConn, data []byte) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, core.ErrCodeBadPayload)
		return
	}

	switch env.Type {
	case core.EventVoiceJoin:
		ctl.handleVoiceJoin(sid, c, env.Data)
	case core.EventVoiceLeave:
		ctl.handleVoiceLeave(c, env.Data)
	case core.EventVoiceState:
		ctl.handleVoiceState(c, env.Data)
	case core.EventVoiceSpeaking:
		ctl.handleVoiceSpeaking(c, env.Data)
	case core.EventVoiceHeartbeat:
		ctl.handleVoiceHeartbeat(c, env.Data)
	case core.EventPresenceJoin:
		ctl.handlePresenceJoin(sid, c, env.Data)
	case core.EventPresenceTrack:
		ctl.handlePresenceTrack(sid, c, env.Data)
	case core.EventPresenceLeave:
		ctl.handlePresenceLeave(sid, c, env.Data)
	case core.EventChannelJoin:
		ctl.handleChannelJoin(sid, c, env.Data)
	case core.EventChannelLeave:
		ctl.handleChannelLeave(sid, c, env.Data)
	case core.EventTypingStart:
		ctl.handleTyping(sid, c, env.Data, true)
	case core.EventTypingStop:
		ctl.handleTyping(sid, c, env.Data, false)
	case core.EventInvitationSend:
		ctl.handleInvitation(c, env.Data)
	case core.EventStatusChange:
		ctl.handleStatus(c, env.Data)
	case core.EventPing:
		ctl.handlePing(c)
	case core.EventWhoAmI:
		ctl.handleWhoAmI(sid, c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, core.ErrCodeUnknownEvent)
	}
}

// bind decodes data into v and answers bad_payload on failure.
func (ctl *SignalWSController) bind(c *WsSignalConn, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad payload")
		ctl.sendError(c, core.ErrCodeBadPayload)
		return false
	}
	return true
}

func (ctl *SignalWSController) send(c *WsSignalConn, eventType string, v any) {
	f, err := core.Encode(eventType, v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("send marshal")
		return
	}
	_ = c.TrySend(f)
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, code string) {
	_ = c.TrySend(core.EncodeError(code))
}
