package orch

import (
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/core"
)

// PresenceJoin subscribes sid to topic. The session is told it joined
// before it receives the first sync.
func (o *Orchestrator) PresenceJoin(sid core.SessionID, req core.PresenceJoin) error {
	if req.Topic == "" || req.Key == "" {
		return ErrNotSubscribed
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return core.ErrConnClosed
	}
	o.deliver([]app.SessionSnap{{SID: sid, Session: sess}}, encode(core.EventPresenceJoined, core.PresenceJoined{Topic: req.Topic}))
	o.Presence.Join(req.Topic, sid, req.Key)
	return nil
}

func (o *Orchestrator) PresenceTrack(sid core.SessionID, req core.PresenceTrack) error {
	if !o.Presence.Track(req.Topic, sid, req.Payload) {
		return ErrNotSubscribed
	}
	return nil
}

func (o *Orchestrator) PresenceLeave(sid core.SessionID, req core.PresenceLeave) {
	o.Presence.Leave(req.Topic, sid)
}

func (o *Orchestrator) presenceSynced(topic string, subscribers []core.SessionID, state map[string][]core.PresenceMeta) {
	to := make([]app.SessionSnap, 0, len(subscribers))
	for _, sid := range subscribers {
		if sess, ok := o.Registry.GetSession(sid); ok {
			to = append(to, app.SessionSnap{SID: sid, Session: sess})
		}
	}
	o.deliver(to, encode(core.EventPresenceSync, core.PresenceSync{Topic: topic, State: state}))
}
