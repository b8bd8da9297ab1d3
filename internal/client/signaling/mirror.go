package signaling

import (
	"encoding/json"
	"sync"

	"github.com/dkeye/Huddle/internal/client/transport"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Mirror follows the roster broadcasts and keeps a local copy of every
// voice channel's participants in server join order.
type Mirror struct {
	mu        sync.Mutex
	channels  map[domain.ChannelID][]domain.VoiceParticipant
	listeners map[uint64]func()
	nextID    uint64
	unsubs    []func()
}

func NewMirror(sock transport.Socket) *Mirror {
	m := &Mirror{
		channels:  make(map[domain.ChannelID][]domain.VoiceParticipant),
		listeners: make(map[uint64]func()),
	}
	m.unsubs = []func(){
		sock.On(core.EventVoiceSync, handle(m, m.syncLocked)),
		sock.On(core.EventVoiceUserList, handle(m, m.userListLocked)),
		sock.On(core.EventVoiceJoin, handle(m, m.joinLocked)),
		sock.On(core.EventVoiceLeave, handle(m, m.leaveLocked)),
		sock.On(core.EventVoiceState, handle(m, m.stateLocked)),
		sock.On(core.EventVoiceSpeaking, handle(m, m.speakingLocked)),
	}
	return m
}

// handle decodes an event, applies it under the lock and notifies
// listeners if anything changed.
func handle[T any](m *Mirror, apply func(T) bool) transport.Handler {
	return func(data json.RawMessage) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			log.Warn().Err(err).Str("module", "client.signaling").Msg("bad roster event")
			return
		}
		m.mu.Lock()
		changed := apply(v)
		m.mu.Unlock()
		if changed {
			m.notify()
		}
	}
}

// OnChange registers fn to run after every roster change.
func (m *Mirror) OnChange(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Snapshot returns a copy of every non-empty channel.
func (m *Mirror) Snapshot() map[domain.ChannelID][]domain.VoiceParticipant {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.ChannelID][]domain.VoiceParticipant, len(m.channels))
	for ch, ps := range m.channels {
		out[ch] = append([]domain.VoiceParticipant(nil), ps...)
	}
	return out
}

// Close stops following the socket.
func (m *Mirror) Close() {
	for _, u := range m.unsubs {
		u()
	}
}

func (m *Mirror) notify() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (m *Mirror) syncLocked(ev core.VoiceSync) bool {
	m.channels = make(map[domain.ChannelID][]domain.VoiceParticipant, len(ev.Channels))
	for ch, ps := range ev.Channels {
		if len(ps) > 0 {
			m.channels[ch] = append([]domain.VoiceParticipant(nil), ps...)
		}
	}
	return true
}

func (m *Mirror) userListLocked(ev core.VoiceUserList) bool {
	for _, p := range ev.Participants {
		m.removeElsewhereLocked(p.UserID, ev.ChannelID)
	}
	if len(ev.Participants) == 0 {
		delete(m.channels, ev.ChannelID)
		return true
	}
	m.channels[ev.ChannelID] = append([]domain.VoiceParticipant(nil), ev.Participants...)
	return true
}

func (m *Mirror) joinLocked(ev core.VoiceJoinBroadcast) bool {
	m.removeElsewhereLocked(ev.User.UserID, ev.ChannelID)
	ps := m.channels[ev.ChannelID]
	for i := range ps {
		if ps[i].UserID == ev.User.UserID {
			ps[i] = ev.User
			return true
		}
	}
	m.channels[ev.ChannelID] = append(ps, ev.User)
	return true
}

func (m *Mirror) leaveLocked(ev core.VoiceLeave) bool {
	return m.removeLocked(ev.ChannelID, ev.UserID)
}

func (m *Mirror) stateLocked(ev core.VoiceState) bool {
	p := m.findLocked(ev.ChannelID, ev.UserID)
	if p == nil {
		return false
	}
	p.Muted = ev.Muted
	p.Deafened = ev.Deafened
	return true
}

func (m *Mirror) speakingLocked(ev core.VoiceSpeaking) bool {
	p := m.findLocked(ev.ChannelID, ev.UserID)
	if p == nil || p.Speaking == ev.Speaking {
		return false
	}
	p.Speaking = ev.Speaking
	return true
}

func (m *Mirror) findLocked(ch domain.ChannelID, uid domain.UserID) *domain.VoiceParticipant {
	ps := m.channels[ch]
	for i := range ps {
		if ps[i].UserID == uid {
			return &ps[i]
		}
	}
	return nil
}

func (m *Mirror) removeLocked(ch domain.ChannelID, uid domain.UserID) bool {
	ps := m.channels[ch]
	for i := range ps {
		if ps[i].UserID != uid {
			continue
		}
		ps = append(ps[:i], ps[i+1:]...)
		if len(ps) == 0 {
			delete(m.channels, ch)
		} else {
			m.channels[ch] = ps
		}
		return true
	}
	return false
}

// removeElsewhereLocked keeps a user in at most one channel even when a
// leave broadcast was missed.
func (m *Mirror) removeElsewhereLocked(uid domain.UserID, keep domain.ChannelID) {
	for ch := range m.channels {
		if ch != keep {
			m.removeLocked(ch, uid)
		}
	}
}
