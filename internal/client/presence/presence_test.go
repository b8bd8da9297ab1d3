package presence

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/Huddle/internal/client/transport"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
)

type emitted struct {
	eventType string
	data      any
}

type fakeSocket struct {
	mu       sync.Mutex
	emits    []emitted
	handlers map[string]map[int]transport.Handler
	next     int
	fail     error
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{handlers: make(map[string]map[int]transport.Handler)}
}

func (s *fakeSocket) Emit(eventType string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.emits = append(s.emits, emitted{eventType, data})
	return nil
}

func (s *fakeSocket) On(eventType string, h transport.Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers[eventType] == nil {
		s.handlers[eventType] = make(map[int]transport.Handler)
	}
	s.next++
	id := s.next
	s.handlers[eventType][id] = h
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers[eventType], id)
	}
}

func (s *fakeSocket) push(t *testing.T, eventType string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	s.mu.Lock()
	var hs []transport.Handler
	for _, h := range s.handlers[eventType] {
		hs = append(hs, h)
	}
	s.mu.Unlock()
	for _, h := range hs {
		h(raw)
	}
}

func (s *fakeSocket) tracked(t *testing.T) []domain.PresenceRecord {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PresenceRecord
	for _, e := range s.emits {
		if e.eventType != core.EventPresenceTrack {
			continue
		}
		var rec domain.PresenceRecord
		if err := json.Unmarshal(e.data.(core.PresenceTrack).Payload, &rec); err != nil {
			t.Fatal(err)
		}
		out = append(out, rec)
	}
	return out
}

func (s *fakeSocket) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.emits))
	for _, e := range s.emits {
		out = append(out, e.eventType)
	}
	return out
}

func meta(t *testing.T, seq uint64, rec domain.PresenceRecord) core.PresenceMeta {
	t.Helper()
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	return core.PresenceMeta{Seq: seq, Payload: raw}
}

var alice = domain.User{ID: "u1", Username: "alice"}

func TestTopic(t *testing.T) {
	if got := Topic("s1", "default"); got != "voice-presence:s1:default" {
		t.Fatalf("topic = %q", got)
	}
}

func TestBusTracksAfterJoined(t *testing.T) {
	s := newFakeSocket()
	b := NewBus(s)
	if err := b.Subscribe("s1", "default", alice); err != nil {
		t.Fatal(err)
	}
	if err := b.SetActiveText("general"); err != nil {
		t.Fatal(err)
	}
	if got := s.tracked(t); len(got) != 0 {
		t.Fatalf("tracked before confirmation: %+v", got)
	}

	s.push(t, core.EventPresenceJoined, core.PresenceJoined{Topic: "voice-presence:s1:default"})
	got := s.tracked(t)
	if len(got) != 1 || got[0].ActiveTextChannelID != "general" || got[0].CommunityID != "s1" {
		t.Fatalf("initial track = %+v", got)
	}
}

func TestBusRepublishesFullRecord(t *testing.T) {
	s := newFakeSocket()
	b := NewBus(s)
	_ = b.Subscribe("s1", "default", alice)
	s.push(t, core.EventPresenceJoined, core.PresenceJoined{Topic: Topic("s1", "default")})

	_ = b.SetActiveText("general")
	_ = b.JoinVoice("v1")
	_ = b.LeaveVoice()

	got := s.tracked(t)
	if len(got) != 4 {
		t.Fatalf("tracks = %d", len(got))
	}
	last := got[3]
	if last.ActiveTextChannelID != "general" || last.ActiveVoiceChannelID != "" || last.Username != "alice" {
		t.Fatalf("last record = %+v", last)
	}
	if got[2].ActiveVoiceChannelID != "v1" || got[2].ActiveTextChannelID != "general" {
		t.Fatalf("voice record = %+v", got[2])
	}
}

func TestBusNoopWhenUnsubscribed(t *testing.T) {
	s := newFakeSocket()
	b := NewBus(s)
	if err := b.JoinVoice("v1"); err != nil {
		t.Fatal(err)
	}
	if len(s.types()) != 0 {
		t.Fatalf("emits = %v", s.types())
	}
	if g := b.GroupedPresence(); len(g.Text)+len(g.Voice) != 0 {
		t.Fatalf("grouped = %+v", g)
	}
}

func TestBusResubscribeTearsDown(t *testing.T) {
	s := newFakeSocket()
	b := NewBus(s)
	_ = b.Subscribe("s1", "default", alice)
	_ = b.Subscribe("s2", "default", alice)

	want := []string{core.EventPresenceJoin, core.EventPresenceLeave, core.EventPresenceJoin}
	got := s.types()
	if len(got) != len(want) {
		t.Fatalf("emits = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("emits = %v", got)
		}
	}

	// the old topic no longer drives anything
	s.push(t, core.EventPresenceJoined, core.PresenceJoined{Topic: Topic("s1", "default")})
	if n := len(s.tracked(t)); n != 0 {
		t.Fatalf("tracked on stale topic: %d", n)
	}
}

func TestBusSubscribeFailureDegrades(t *testing.T) {
	s := newFakeSocket()
	s.fail = transport.ErrClosed
	b := NewBus(s)
	if err := b.Subscribe("s1", "default", alice); err == nil {
		t.Fatal("expected error")
	}
	if err := b.SetActiveText("general"); err != nil {
		t.Fatalf("update after failed subscribe: %v", err)
	}
	if g := b.GroupedPresence(); len(g.Text) != 0 {
		t.Fatalf("grouped = %+v", g)
	}
}

func TestBusSyncNotifies(t *testing.T) {
	s := newFakeSocket()
	b := NewBus(s)
	_ = b.Subscribe("s1", "default", alice)
	topic := Topic("s1", "default")

	calls := 0
	off := b.OnChange(func() { calls++ })

	s.push(t, core.EventPresenceSync, core.PresenceSync{Topic: topic, State: map[string][]core.PresenceMeta{
		"u1": {meta(t, 1, domain.PresenceRecord{UserID: "u1", Username: "alice", ActiveTextChannelID: "general"})},
		"u2": {meta(t, 2, domain.PresenceRecord{UserID: "u2", Username: "bob", ActiveVoiceChannelID: "v1"})},
	}})
	s.push(t, core.EventPresenceSync, core.PresenceSync{Topic: "voice-presence:other:default"})

	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
	g := b.GroupedPresence()
	if len(g.Text["general"]) != 1 || len(g.Voice["v1"]) != 1 {
		t.Fatalf("grouped = %+v", g)
	}

	off()
	b.Unsubscribe()
	if calls != 1 {
		t.Fatalf("listener ran after unsubscribe: %d", calls)
	}
}

func TestGroupVoiceWinsOverText(t *testing.T) {
	g := Group(map[string][]core.PresenceMeta{
		"u1": {meta(t, 1, domain.PresenceRecord{UserID: "u1", Username: "a", ActiveTextChannelID: "t", ActiveVoiceChannelID: "v"})},
	})
	if len(g.Text) != 0 || len(g.Voice["v"]) != 1 {
		t.Fatalf("grouped = %+v", g)
	}
}

func TestGroupMultiTab(t *testing.T) {
	g := Group(map[string][]core.PresenceMeta{
		"u1": {
			meta(t, 5, domain.PresenceRecord{UserID: "u1", Username: "a", ActiveTextChannelID: "t2"}),
			meta(t, 2, domain.PresenceRecord{UserID: "u1", Username: "a", ActiveVoiceChannelID: "v"}),
			meta(t, 3, domain.PresenceRecord{UserID: "u1", Username: "a", ActiveTextChannelID: "t1"}),
		},
	})
	if len(g.Voice["v"]) != 1 || len(g.Text) != 0 {
		t.Fatalf("voice tab should win: %+v", g)
	}

	g = Group(map[string][]core.PresenceMeta{
		"u1": {
			meta(t, 3, domain.PresenceRecord{UserID: "u1", Username: "a", ActiveTextChannelID: "t1"}),
			meta(t, 5, domain.PresenceRecord{UserID: "u1", Username: "a", ActiveTextChannelID: "t2"}),
		},
	})
	if len(g.Text["t2"]) != 1 || len(g.Text["t1"]) != 0 {
		t.Fatalf("latest tab should win: %+v", g)
	}
}

func TestGroupSkipsNowhereAndBadPayloads(t *testing.T) {
	g := Group(map[string][]core.PresenceMeta{
		"u1": {meta(t, 1, domain.PresenceRecord{UserID: "u1", Username: "a"})},
		"u2": {{Seq: 1, Payload: json.RawMessage(`"nope"`)}},
	})
	if len(g.Text)+len(g.Voice) != 0 {
		t.Fatalf("grouped = %+v", g)
	}
}

func TestGroupOrdering(t *testing.T) {
	g := Group(map[string][]core.PresenceMeta{
		"u3": {meta(t, 1, domain.PresenceRecord{UserID: "u3", Username: "carol", ActiveTextChannelID: "t"})},
		"u1": {meta(t, 1, domain.PresenceRecord{UserID: "u1", Username: "alice", ActiveTextChannelID: "t"})},
		"u2": {meta(t, 1, domain.PresenceRecord{UserID: "u2", Username: "bob", ActiveTextChannelID: "t"})},
	})
	list := g.Text["t"]
	if len(list) != 3 || list[0].Username != "alice" || list[1].Username != "bob" || list[2].Username != "carol" {
		t.Fatalf("order = %+v", list)
	}
}
