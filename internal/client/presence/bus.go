package presence

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/dkeye/Huddle/internal/client/transport"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Topic names the presence channel of one community.
func Topic(community domain.CommunityID, nonce string) string {
	return fmt.Sprintf("voice-presence:%s:%s", community, nonce)
}

// Grouped buckets every present user into exactly one place.
type Grouped struct {
	Text  map[domain.ChannelID][]domain.PresenceRecord
	Voice map[domain.ChannelID][]domain.PresenceRecord
}

func emptyGrouped() Grouped {
	return Grouped{
		Text:  make(map[domain.ChannelID][]domain.PresenceRecord),
		Voice: make(map[domain.ChannelID][]domain.PresenceRecord),
	}
}

// Bus owns at most one presence subscription and the record this client
// publishes on it. Presence is best effort: when the transport is down the
// bus reports empty groupings.
type Bus struct {
	sock transport.Socket

	mu        sync.Mutex
	ch        *Channel
	unsubSync func()
	record    *domain.PresenceRecord
	listeners map[uint64]func()
	nextID    uint64
}

func NewBus(sock transport.Socket) *Bus {
	return &Bus{sock: sock, listeners: make(map[uint64]func())}
}

// Subscribe opens the community channel, tearing down any previous one,
// and tracks the initial record once the server confirms.
func (b *Bus) Subscribe(community domain.CommunityID, nonce string, user domain.User) error {
	b.Unsubscribe()

	ch, err := Open(b.sock, Topic(community, nonce), string(user.ID))
	if err != nil {
		log.Warn().Err(err).Str("module", "client.presence").Str("community", string(community)).Msg("presence unavailable")
		return err
	}

	b.mu.Lock()
	b.ch = ch
	b.record = &domain.PresenceRecord{
		CommunityID: community,
		UserID:      user.ID,
		Username:    user.Username,
		AvatarURL:   user.AvatarURL,
	}
	b.unsubSync = ch.OnSync(b.notify)
	b.mu.Unlock()

	ch.OnJoined(func() {
		if err := b.publish(); err != nil {
			log.Warn().Err(err).Str("module", "client.presence").Msg("initial track")
		}
	})
	return nil
}

// SetActiveText records the text channel being viewed. Empty clears it.
func (b *Bus) SetActiveText(ch domain.ChannelID) error {
	return b.update(func(r *domain.PresenceRecord) { r.ActiveTextChannelID = ch })
}

func (b *Bus) JoinVoice(ch domain.ChannelID) error {
	return b.update(func(r *domain.PresenceRecord) { r.ActiveVoiceChannelID = ch })
}

func (b *Bus) LeaveVoice() error {
	return b.update(func(r *domain.PresenceRecord) { r.ActiveVoiceChannelID = "" })
}

// Unsubscribe closes the channel and forgets the local record.
func (b *Bus) Unsubscribe() {
	b.mu.Lock()
	ch := b.ch
	unsub := b.unsubSync
	b.ch = nil
	b.unsubSync = nil
	b.record = nil
	b.mu.Unlock()

	if ch == nil {
		return
	}
	unsub()
	if err := ch.Close(); err != nil {
		log.Debug().Err(err).Str("module", "client.presence").Msg("close presence channel")
	}
	b.notify()
}

// OnChange registers fn to run whenever the merged snapshot changes.
func (b *Bus) OnChange(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// GroupedPresence groups the current snapshot.
func (b *Bus) GroupedPresence() Grouped {
	b.mu.Lock()
	ch := b.ch
	b.mu.Unlock()
	if ch == nil {
		return emptyGrouped()
	}
	return Group(ch.PresenceState())
}

// Record returns a copy of the record this client publishes.
func (b *Bus) Record() (domain.PresenceRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.record == nil {
		return domain.PresenceRecord{}, false
	}
	return *b.record, true
}

func (b *Bus) update(mutate func(*domain.PresenceRecord)) error {
	b.mu.Lock()
	if b.record == nil {
		b.mu.Unlock()
		return nil
	}
	mutate(b.record)
	b.mu.Unlock()
	return b.publish()
}

// publish tracks the full record. Before the subscription is confirmed it
// does nothing: the confirmation tracks whatever the record is by then.
func (b *Bus) publish() error {
	b.mu.Lock()
	ch := b.ch
	var rec domain.PresenceRecord
	if b.record != nil {
		rec = *b.record
	}
	b.mu.Unlock()
	if ch == nil || rec.UserID == "" || !ch.Joined() {
		return nil
	}
	return ch.Track(rec)
}

func (b *Bus) notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type candidate struct {
	rec domain.PresenceRecord
	seq uint64
}

func (c candidate) voice() bool { return c.rec.ActiveVoiceChannelID != "" }

// Group resolves each user to one record and buckets it. A user with
// several records (several tabs) is represented by a record with voice set
// if there is one; among equals the most recently tracked wins.
func Group(state map[string][]core.PresenceMeta) Grouped {
	best := make(map[domain.UserID]candidate)
	for _, metas := range state {
		for _, m := range metas {
			var rec domain.PresenceRecord
			if err := json.Unmarshal(m.Payload, &rec); err != nil || rec.UserID == "" {
				continue
			}
			next := candidate{rec: rec, seq: m.Seq}
			cur, ok := best[rec.UserID]
			if !ok || better(next, cur) {
				best[rec.UserID] = next
			}
		}
	}

	out := emptyGrouped()
	for _, c := range best {
		ch, voice, ok := c.rec.Location()
		if !ok {
			continue
		}
		if voice {
			out.Voice[ch] = append(out.Voice[ch], c.rec)
		} else {
			out.Text[ch] = append(out.Text[ch], c.rec)
		}
	}
	for _, m := range []map[domain.ChannelID][]domain.PresenceRecord{out.Text, out.Voice} {
		for _, list := range m {
			sortRecords(list)
		}
	}
	return out
}

func better(next, cur candidate) bool {
	if next.voice() != cur.voice() {
		return next.voice()
	}
	return next.seq > cur.seq
}

func sortRecords(list []domain.PresenceRecord) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Username != list[j].Username {
			return list[i].Username < list[j].Username
		}
		return list[i].UserID < list[j].UserID
	})
}
