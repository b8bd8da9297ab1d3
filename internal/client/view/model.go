// Package view projects the reconciled presence state for a UI.
package view

import (
	"sync"

	"github.com/dkeye/Huddle/internal/client/presence"
	"github.com/dkeye/Huddle/internal/client/reconcile"
	"github.com/dkeye/Huddle/internal/client/voice"
	"github.com/dkeye/Huddle/internal/domain"
)

type PresenceSource interface {
	GroupedPresence() presence.Grouped
	OnChange(fn func()) func()
}

type RosterSource interface {
	Snapshot() map[domain.ChannelID][]domain.VoiceParticipant
	OnChange(fn func()) func()
}

type SelfSource interface {
	Self() voice.Self
	OnChange(fn func(voice.Self)) func()
}

// Snapshot is what the UI renders.
type Snapshot struct {
	reconcile.View
	Self voice.Self
}

// Model recomputes the snapshot whenever any source changes. It is inert
// until Init and inert again after Dispose.
type Model struct {
	presence PresenceSource
	roster   RosterSource
	self     SelfSource

	mu     sync.Mutex
	snap   Snapshot
	unsubs []func()
	subs   map[uint64]func(Snapshot)
	nextID uint64

	// one recompute loop at a time; changes arriving meanwhile set dirty
	// and are picked up by the running loop
	running bool
	dirty   bool
}

func New(p PresenceSource, r RosterSource, s SelfSource) *Model {
	return &Model{presence: p, roster: r, self: s, subs: make(map[uint64]func(Snapshot))}
}

func (m *Model) Init() {
	m.mu.Lock()
	if m.unsubs != nil {
		m.mu.Unlock()
		return
	}
	m.unsubs = []func(){
		m.presence.OnChange(m.recompute),
		m.roster.OnChange(m.recompute),
		m.self.OnChange(func(voice.Self) { m.recompute() }),
	}
	m.mu.Unlock()
	m.recompute()
}

func (m *Model) Dispose() {
	m.mu.Lock()
	unsubs := m.unsubs
	m.unsubs = nil
	m.subs = make(map[uint64]func(Snapshot))
	m.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// Subscribe registers fn for every new snapshot.
func (m *Model) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// recompute rebuilds and publishes the snapshot. Source reads, stores and
// deliveries never overlap, so a slow read cannot overwrite a newer
// snapshot and subscribers see snapshots in the order they were built.
func (m *Model) recompute() {
	m.mu.Lock()
	m.dirty = true
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	for m.dirty && m.unsubs != nil {
		m.dirty = false
		m.mu.Unlock()
		snap := m.build()

		m.mu.Lock()
		if m.unsubs == nil {
			break
		}
		m.snap = snap
		fns := make([]func(Snapshot), 0, len(m.subs))
		for _, fn := range m.subs {
			fns = append(fns, fn)
		}
		m.mu.Unlock()

		for _, fn := range fns {
			fn(snap)
		}
		m.mu.Lock()
	}
	m.running = false
	m.mu.Unlock()
}

func (m *Model) build() Snapshot {
	self := m.self.Self()
	st := &reconcile.SelfState{User: self.User, Muted: self.Muted, Deafened: self.Deafened}
	if self.State == voice.Joined {
		st.ChannelID = self.ChannelID
	}
	return Snapshot{
		View: reconcile.Reconcile(reconcile.Input{
			Presence: m.presence.GroupedPresence(),
			Roster:   m.roster.Snapshot(),
			Self:     st,
		}),
		Self: self,
	}
}
