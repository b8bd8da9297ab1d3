package app

import (
	"context"
	"sort"
	"sync"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Session core.MemberSession
	Cancel  context.CancelFunc
	Rooms   map[domain.ChannelID]struct{}
}

// Registry holds every connected signaling session and the text-channel
// rooms it subscribed to with channel:join.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

func (r *Registry) BindSignal(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel, Rooms: make(map[domain.ChannelID]struct{})}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

// JoinRoom subscribes sid to a text channel room. It reports false for an
// unknown session.
func (r *Registry) JoinRoom(sid core.SessionID, room domain.ChannelID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.Rooms[room] = struct{}{}
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("joined room")
	return true
}

func (r *Registry) LeaveRoom(sid core.SessionID, room domain.ChannelID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	if _, in := e.Rooms[room]; !in {
		return false
	}
	delete(e.Rooms, room)
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("left room")
	return true
}

type SessionSnap struct {
	SID     core.SessionID
	Session core.MemberSession
}

func (r *Registry) MembersOfRoom(room domain.ChannelID) []SessionSnap {
	return r.collect(func(e *sessionEntry) bool {
		_, ok := e.Rooms[room]
		return ok
	})
}

// All returns every connected session, ordered by sid.
func (r *Registry) All() []SessionSnap {
	return r.collect(func(*sessionEntry) bool { return true })
}

// SessionsOfUser returns the sessions that announced uid as their identity.
func (r *Registry) SessionsOfUser(uid domain.UserID) []SessionSnap {
	return r.collect(func(e *sessionEntry) bool {
		u := e.Session.User()
		return u != nil && u.ID == uid
	})
}

func (r *Registry) collect(match func(*sessionEntry) bool) []SessionSnap {
	r.mu.RLock()
	out := make([]SessionSnap, 0, len(r.sessions))
	for sid, e := range r.sessions {
		if match(e) {
			out = append(out, SessionSnap{SID: sid, Session: e.Session})
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SID < out[j].SID })
	return out
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
