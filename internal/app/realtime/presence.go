// Package realtime implements the presence pub/sub primitive: clients open
// a topic under an identity key, publish full-state records, and every
// subscriber receives the complete topic state after each change.
package realtime

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SyncListener is told the full state of a topic after every change,
// together with the sessions subscribed to it. It runs under the hub lock
// and must not block.
type SyncListener interface {
	Synced(topic string, subscribers []core.SessionID, state map[string][]core.PresenceMeta)
}

type SyncFunc func(topic string, subscribers []core.SessionID, state map[string][]core.PresenceMeta)

func (f SyncFunc) Synced(topic string, subscribers []core.SessionID, state map[string][]core.PresenceMeta) {
	f(topic, subscribers, state)
}

type presenceMeta struct {
	sid     core.SessionID
	ref     string
	seq     uint64
	payload json.RawMessage
}

// PresenceState tracks presence for one topic.
type PresenceState struct {
	subscribers map[core.SessionID]string // sid -> key
	state       map[string][]presenceMeta // key -> metas, one per sid
}

func newPresenceState() *PresenceState {
	return &PresenceState{
		subscribers: make(map[core.SessionID]string),
		state:       make(map[string][]presenceMeta),
	}
}

// Hub owns every topic. Safe for concurrent use.
type Hub struct {
	mu       sync.Mutex
	topics   map[string]*PresenceState
	seq      uint64
	listener SyncListener
}

func NewHub() *Hub {
	return &Hub{
		topics:   make(map[string]*PresenceState),
		listener: SyncFunc(func(string, []core.SessionID, map[string][]core.PresenceMeta) {}),
	}
}

func (h *Hub) SetListener(l SyncListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listener = l
}

// Join subscribes sid to topic under key and syncs the current state to
// sid alone. Joining again with another key drops whatever the session
// tracked under the old key.
func (h *Hub) Join(topic string, sid core.SessionID, key string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ps, ok := h.topics[topic]
	if !ok {
		ps = newPresenceState()
		h.topics[topic] = ps
	}
	if old, ok := ps.subscribers[sid]; ok && old != key {
		ps.untrack(old, sid)
		h.syncLocked(topic, ps)
	}
	ps.subscribers[sid] = key
	// the joiner gets the current state right away
	h.listener.Synced(topic, []core.SessionID{sid}, ps.export())
	log.Debug().Str("module", "app.realtime").Str("topic", topic).Str("sid", string(sid)).Str("key", key).Msg("joined topic")
}

// Track replaces the record sid published on topic. It reports false if
// sid never joined topic.
func (h *Hub) Track(topic string, sid core.SessionID, payload json.RawMessage) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	ps, ok := h.topics[topic]
	if !ok {
		return false
	}
	key, ok := ps.subscribers[sid]
	if !ok {
		return false
	}
	h.seq++
	meta := presenceMeta{sid: sid, ref: uuid.New().String()[:8], seq: h.seq, payload: payload}

	metas := ps.state[key]
	found := false
	for i, m := range metas {
		if m.sid == sid {
			metas[i] = meta
			found = true
			break
		}
	}
	if !found {
		ps.state[key] = append(metas, meta)
	}
	h.syncLocked(topic, ps)
	return true
}

// Leave unsubscribes sid from topic and drops its record.
func (h *Hub) Leave(topic string, sid core.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(topic, sid)
}

// LeaveAll drops sid from every topic, used when its connection closes.
func (h *Hub) LeaveAll(sid core.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, ps := range h.topics {
		if _, ok := ps.subscribers[sid]; ok {
			h.leaveLocked(topic, sid)
		}
	}
}

// State returns a copy of topic's presence state.
func (h *Hub) State(topic string) map[string][]core.PresenceMeta {
	h.mu.Lock()
	defer h.mu.Unlock()
	ps, ok := h.topics[topic]
	if !ok {
		return map[string][]core.PresenceMeta{}
	}
	return ps.export()
}

func (h *Hub) leaveLocked(topic string, sid core.SessionID) {
	ps, ok := h.topics[topic]
	if !ok {
		return
	}
	key, ok := ps.subscribers[sid]
	if !ok {
		return
	}
	delete(ps.subscribers, sid)
	removed := ps.untrack(key, sid)
	if len(ps.subscribers) == 0 {
		delete(h.topics, topic)
		log.Debug().Str("module", "app.realtime").Str("topic", topic).Msg("topic closed")
		return
	}
	if removed {
		h.syncLocked(topic, ps)
	}
}

func (h *Hub) syncLocked(topic string, ps *PresenceState) {
	subs := make([]core.SessionID, 0, len(ps.subscribers))
	for sid := range ps.subscribers {
		subs = append(subs, sid)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i] < subs[j] })
	h.listener.Synced(topic, subs, ps.export())
}

func (ps *PresenceState) untrack(key string, sid core.SessionID) bool {
	metas := ps.state[key]
	remaining := metas[:0]
	removed := false
	for _, m := range metas {
		if m.sid == sid {
			removed = true
			continue
		}
		remaining = append(remaining, m)
	}
	if len(remaining) == 0 {
		delete(ps.state, key)
	} else {
		ps.state[key] = remaining
	}
	return removed
}

func (ps *PresenceState) export() map[string][]core.PresenceMeta {
	out := make(map[string][]core.PresenceMeta, len(ps.state))
	for key, metas := range ps.state {
		list := make([]core.PresenceMeta, len(metas))
		for i, m := range metas {
			list[i] = core.PresenceMeta{Ref: m.ref, Seq: m.seq, Payload: m.payload}
		}
		out[key] = list
	}
	return out
}
