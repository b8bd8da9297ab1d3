package orch

import (
	"errors"
	"time"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/app/realtime"
	"github.com/dkeye/Huddle/internal/app/roster"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrChannelRequired = errors.New("channel id required")
	ErrNotSubscribed   = errors.New("session is not subscribed to topic")
	ErrBadStatus       = errors.New("unknown user status")
)

// Orchestrator applies signaling events to the voice roster and the
// presence hub, and fans the results out to connected sessions.
type Orchestrator struct {
	Registry *app.Registry
	Roster   *roster.Roster
	Presence *realtime.Hub
	Policy   app.Policy

	now func() time.Time
}

// New wires o as the listener of both ros and hub.
func New(reg *app.Registry, ros *roster.Roster, hub *realtime.Hub, policy app.Policy) *Orchestrator {
	o := &Orchestrator{
		Registry: reg,
		Roster:   ros,
		Presence: hub,
		Policy:   policy,
		now:      time.Now,
	}
	ros.SetListener(rosterFanout{o})
	hub.SetListener(realtime.SyncFunc(o.presenceSynced))
	return o
}

// OnConnect sends the new session the roster of every voice channel.
func (o *Orchestrator) OnConnect(sid core.SessionID) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	snap := app.SessionSnap{SID: sid, Session: sess}
	o.Roster.WithSnapshot(func(channels map[domain.ChannelID][]domain.VoiceParticipant) {
		o.deliver([]app.SessionSnap{snap}, encode(core.EventVoiceSync, core.VoiceSync{Channels: channels}))
	})
}

// OnDisconnect drops everything sid published on presence topics. The
// voice roster is left alone: a dropped socket is not a leave, and a
// crashed participant is reaped by heartbeat expiry.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.Presence.LeaveAll(sid)
	o.Registry.Unbind(sid)
}

// Kick cancels the session and closes its transport.
func (o *Orchestrator) Kick(sid core.SessionID) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	o.Registry.Cancel(sid)
	sess.Signal().Close()
	log.Warn().Str("module", "app.orch").Str("sid", string(sid)).Msg("kicked session")
}

func (o *Orchestrator) broadcast(f core.Frame) {
	o.deliver(o.Registry.All(), f)
}

func (o *Orchestrator) deliver(to []app.SessionSnap, f core.Frame) {
	if f == nil {
		return
	}
	for _, snap := range to {
		err := snap.Session.Signal().TrySend(f)
		if err == nil || !errors.Is(err, core.ErrBackpressure) || o.Policy == nil {
			continue
		}
		switch o.Policy.OnBackPressure(snap.Session) {
		case app.KickMember:
			o.Kick(snap.SID)
		case app.DropFrame, app.NoAction:
			log.Debug().Str("module", "app.orch").Str("sid", string(snap.SID)).Msg("frame dropped")
		}
	}
}

func encode(eventType string, data any) core.Frame {
	f, err := core.Encode(eventType, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Str("type", eventType).Msg("encode frame")
		return nil
	}
	return f
}
