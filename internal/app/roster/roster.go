// Package roster holds the authoritative voice roster: which users are
// connected to which voice channel, with lease-based expiry.
package roster

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	DefaultExpiry        = 30 * time.Second
	DefaultSweepInterval = 15 * time.Second
)

type LeaveReason int

const (
	LeaveExplicit LeaveReason = iota
	// LeaveMoved is reported when a join to another channel evicts the user.
	LeaveMoved
	LeaveExpired
)

func (r LeaveReason) String() string {
	switch r {
	case LeaveExplicit:
		return "explicit"
	case LeaveMoved:
		return "moved"
	case LeaveExpired:
		return "expired"
	}
	return "unknown"
}

// Listener receives every visible roster change. Callbacks run while the
// roster lock is held so per-channel order is preserved; they must not block
// and must not call back into the Roster.
type Listener interface {
	Joined(channel domain.ChannelID, p domain.VoiceParticipant, roster []domain.VoiceParticipant)
	Left(channel domain.ChannelID, user domain.UserID, reason LeaveReason)
	StateChanged(channel domain.ChannelID, p domain.VoiceParticipant)
	SpeakingChanged(channel domain.ChannelID, p domain.VoiceParticipant)
}

type entry struct {
	p   *domain.VoiceParticipant
	seq uint64
}

// Roster is safe for concurrent use. All mutations go through one mutex,
// so it is the single writer of the channel map.
type Roster struct {
	mu       sync.Mutex
	channels map[domain.ChannelID]map[domain.UserID]*entry
	located  map[domain.UserID]domain.ChannelID
	seq      uint64

	expiry   time.Duration
	now      func() time.Time
	listener Listener
}

type Option func(*Roster)

func WithExpiry(d time.Duration) Option { return func(r *Roster) { r.expiry = d } }

func WithClock(now func() time.Time) Option { return func(r *Roster) { r.now = now } }

func WithListener(l Listener) Option { return func(r *Roster) { r.listener = l } }

func New(opts ...Option) *Roster {
	r := &Roster{
		channels: make(map[domain.ChannelID]map[domain.UserID]*entry),
		located:  make(map[domain.UserID]domain.ChannelID),
		expiry:   DefaultExpiry,
		now:      time.Now,
		listener: nopListener{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetListener swaps the listener. Used at wiring time when the listener
// itself needs the roster.
func (r *Roster) SetListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l == nil {
		l = nopListener{}
	}
	r.listener = l
}

// Join inserts or overwrites the user's entry in channel with all flags
// cleared. A user present in another channel is removed there first.
// It returns the channel the user was moved out of, if any.
func (r *Roster) Join(channel domain.ChannelID, user domain.User) (movedFrom domain.ChannelID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.located[user.ID]; ok && prev != channel {
		r.removeLocked(prev, user.ID)
		r.listener.Left(prev, user.ID, LeaveMoved)
		movedFrom = prev
	}

	members, ok := r.channels[channel]
	if !ok {
		members = make(map[domain.UserID]*entry)
		r.channels[channel] = members
	}
	r.seq++
	p := domain.NewParticipant(user, r.now())
	if old, ok := members[user.ID]; ok {
		// rejoin keeps the original ordering slot
		members[user.ID] = &entry{p: p, seq: old.seq}
	} else {
		members[user.ID] = &entry{p: p, seq: r.seq}
	}
	r.located[user.ID] = channel

	log.Info().Str("module", "app.roster").Str("channel", string(channel)).Str("user", string(user.ID)).Msg("participant joined")
	r.listener.Joined(channel, *p, r.participantsLocked(channel))
	return movedFrom
}

// Leave removes the user from channel. It reports false when the user was
// not there.
func (r *Roster) Leave(channel domain.ChannelID, user domain.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.removeLocked(channel, user) {
		return false
	}
	log.Info().Str("module", "app.roster").Str("channel", string(channel)).Str("user", string(user)).Msg("participant left")
	r.listener.Left(channel, user, LeaveExplicit)
	return true
}

// UpdateState sets the mute/deafen flags. Events for absent participants
// are ignored: they race with the expiry sweep and carry nothing to apply.
func (r *Roster) UpdateState(channel domain.ChannelID, user domain.UserID, muted, deafened bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lookupLocked(channel, user)
	if !ok {
		log.Debug().Str("module", "app.roster").Str("channel", string(channel)).Str("user", string(user)).Msg("state for absent participant ignored")
		return false
	}
	e.p.Muted = muted
	e.p.Deafened = deafened
	e.p.LastHeartbeat = r.now()
	r.listener.StateChanged(channel, *e.p)
	return true
}

// UpdateSpeaking sets the speaking flag. Only a change is reported.
func (r *Roster) UpdateSpeaking(channel domain.ChannelID, user domain.UserID, speaking bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lookupLocked(channel, user)
	if !ok {
		return false
	}
	e.p.LastHeartbeat = r.now()
	if e.p.Speaking == speaking {
		return true
	}
	e.p.Speaking = speaking
	r.listener.SpeakingChanged(channel, *e.p)
	return true
}

// Heartbeat refreshes the lease only. Nothing is broadcast.
func (r *Roster) Heartbeat(channel domain.ChannelID, user domain.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lookupLocked(channel, user)
	if !ok {
		return false
	}
	e.p.LastHeartbeat = r.now()
	return true
}

// Expired describes one participant reaped by Sweep.
type Expired struct {
	ChannelID domain.ChannelID
	UserID    domain.UserID
}

// Sweep removes every participant whose lease ran out.
func (r *Roster) Sweep() []Expired {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var out []Expired
	for channel, members := range r.channels {
		for uid, e := range members {
			if e.p.Expired(now, r.expiry) {
				out = append(out, Expired{ChannelID: channel, UserID: uid})
			}
		}
	}
	for _, x := range out {
		r.removeLocked(x.ChannelID, x.UserID)
		r.listener.Left(x.ChannelID, x.UserID, LeaveExpired)
	}
	return out
}

// Run sweeps on every tick until ctx is done.
func (r *Roster) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.roster").Msg("sweeper stopped")
			return
		case <-ticker.C:
			if reaped := r.Sweep(); len(reaped) > 0 {
				log.Info().Str("module", "app.roster").Int("expired", len(reaped)).Msg("sweep removed stale participants")
			}
		}
	}
}

// Participants returns a copy of channel's roster in join order.
func (r *Roster) Participants(channel domain.ChannelID) []domain.VoiceParticipant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.participantsLocked(channel)
}

// Snapshot returns a copy of every non-empty channel roster.
func (r *Roster) Snapshot() map[domain.ChannelID][]domain.VoiceParticipant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// WithSnapshot calls fn with the full roster while holding the lock, so
// anything fn enqueues is ordered before the next roster change.
func (r *Roster) WithSnapshot(fn func(map[domain.ChannelID][]domain.VoiceParticipant)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.snapshotLocked())
}

func (r *Roster) snapshotLocked() map[domain.ChannelID][]domain.VoiceParticipant {
	out := make(map[domain.ChannelID][]domain.VoiceParticipant, len(r.channels))
	for channel := range r.channels {
		out[channel] = r.participantsLocked(channel)
	}
	return out
}

// ChannelOf returns the channel the user is connected to.
func (r *Roster) ChannelOf(user domain.UserID) (domain.ChannelID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.located[user]
	return ch, ok
}

func (r *Roster) lookupLocked(channel domain.ChannelID, user domain.UserID) (*entry, bool) {
	members, ok := r.channels[channel]
	if !ok {
		return nil, false
	}
	e, ok := members[user]
	return e, ok
}

func (r *Roster) removeLocked(channel domain.ChannelID, user domain.UserID) bool {
	members, ok := r.channels[channel]
	if !ok {
		return false
	}
	if _, ok := members[user]; !ok {
		return false
	}
	delete(members, user)
	if len(members) == 0 {
		delete(r.channels, channel)
	}
	if r.located[user] == channel {
		delete(r.located, user)
	}
	return true
}

func (r *Roster) participantsLocked(channel domain.ChannelID) []domain.VoiceParticipant {
	members := r.channels[channel]
	entries := make([]*entry, 0, len(members))
	for _, e := range members {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]domain.VoiceParticipant, len(entries))
	for i, e := range entries {
		out[i] = *e.p
	}
	return out
}

type nopListener struct{}

func (nopListener) Joined(domain.ChannelID, domain.VoiceParticipant, []domain.VoiceParticipant) {}
func (nopListener) Left(domain.ChannelID, domain.UserID, LeaveReason)                           {}
func (nopListener) StateChanged(domain.ChannelID, domain.VoiceParticipant)                      {}
func (nopListener) SpeakingChanged(domain.ChannelID, domain.VoiceParticipant)                   {}
