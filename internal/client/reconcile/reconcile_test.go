package reconcile

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/dkeye/Huddle/internal/client/presence"
	"github.com/dkeye/Huddle/internal/domain"
)

func rec(id, text, voice string) domain.PresenceRecord {
	return domain.PresenceRecord{
		UserID:               domain.UserID(id),
		Username:             id,
		ActiveTextChannelID:  domain.ChannelID(text),
		ActiveVoiceChannelID: domain.ChannelID(voice),
	}
}

func part(id string) domain.VoiceParticipant {
	return domain.VoiceParticipant{UserID: domain.UserID(id), Username: id}
}

func grouped(records ...domain.PresenceRecord) presence.Grouped {
	g := presence.Grouped{
		Text:  map[domain.ChannelID][]domain.PresenceRecord{},
		Voice: map[domain.ChannelID][]domain.PresenceRecord{},
	}
	for _, r := range records {
		ch, voice, ok := r.Location()
		if !ok {
			continue
		}
		if voice {
			g.Voice[ch] = append(g.Voice[ch], r)
		} else {
			g.Text[ch] = append(g.Text[ch], r)
		}
	}
	return g
}

func ids(list []domain.VoiceParticipant) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = string(p.UserID)
	}
	return out
}

func TestRosterWinsOverIntent(t *testing.T) {
	v := Reconcile(Input{
		Presence: grouped(rec("b", "", "v-old")),
		Roster:   map[domain.ChannelID][]domain.VoiceParticipant{"v-new": {part("b")}},
	})
	if _, ok := v.VoiceByChannel["v-old"]; ok {
		t.Fatalf("stale intent rendered: %+v", v.VoiceByChannel)
	}
	if got := ids(v.VoiceByChannel["v-new"]); len(got) != 1 || got[0] != "b" {
		t.Fatalf("v-new = %v", got)
	}
	if v.VoiceByChannel["v-new"][0].Synthesized {
		t.Fatal("roster entry marked synthesized")
	}
}

func TestIntentOnlyIsSynthesized(t *testing.T) {
	v := Reconcile(Input{Presence: grouped(rec("c", "", "v"))})
	list := v.VoiceByChannel["v"]
	if len(list) != 1 || !list[0].Synthesized {
		t.Fatalf("v = %+v", list)
	}
}

func TestVoiceUsersLeaveText(t *testing.T) {
	v := Reconcile(Input{
		Presence: grouped(rec("a", "general", ""), rec("b", "general", "")),
		Roster:   map[domain.ChannelID][]domain.VoiceParticipant{"v": {part("b")}},
	})
	if got := v.TextByChannel["general"]; len(got) != 1 || got[0].UserID != "a" {
		t.Fatalf("general = %+v", got)
	}
}

func TestSelfSynthesizedBeforeEcho(t *testing.T) {
	self := &SelfState{User: domain.User{ID: "me", Username: "me"}, ChannelID: "v", Muted: true}
	v := Reconcile(Input{
		Roster: map[domain.ChannelID][]domain.VoiceParticipant{"v": {part("a")}},
		Self:   self,
	})
	list := v.VoiceByChannel["v"]
	if got := ids(list); len(got) != 2 || got[0] != "a" || got[1] != "me" {
		t.Fatalf("v = %v", got)
	}
	if !list[1].Synthesized || !list[1].Muted {
		t.Fatalf("self = %+v", list[1])
	}
}

func TestSelfOverlayOnRosterEntry(t *testing.T) {
	self := &SelfState{User: domain.User{ID: "me", Username: "me"}, ChannelID: "v", Muted: true, Deafened: true}
	v := Reconcile(Input{
		Presence: grouped(rec("me", "", "v")),
		Roster:   map[domain.ChannelID][]domain.VoiceParticipant{"v": {part("me"), part("a")}},
		Self:     self,
	})
	list := v.VoiceByChannel["v"]
	if got := ids(list); len(got) != 2 || got[0] != "me" {
		t.Fatalf("v = %v", got)
	}
	if list[0].Synthesized || !list[0].Muted || !list[0].Deafened {
		t.Fatalf("self = %+v", list[0])
	}
}

func TestSelfMovedLocally(t *testing.T) {
	self := &SelfState{User: domain.User{ID: "me", Username: "me"}, ChannelID: "v2"}
	v := Reconcile(Input{
		Roster: map[domain.ChannelID][]domain.VoiceParticipant{"v1": {part("me"), part("a")}},
		Self:   self,
	})
	if got := ids(v.VoiceByChannel["v1"]); len(got) != 1 || got[0] != "a" {
		t.Fatalf("v1 = %v", got)
	}
	if got := ids(v.VoiceByChannel["v2"]); len(got) != 1 || got[0] != "me" {
		t.Fatalf("v2 = %v", got)
	}
}

func TestSelfLeftOptimistically(t *testing.T) {
	self := &SelfState{User: domain.User{ID: "me", Username: "me"}}
	v := Reconcile(Input{
		Presence: grouped(rec("me", "general", "")),
		Roster:   map[domain.ChannelID][]domain.VoiceParticipant{"v": {part("me")}},
		Self:     self,
	})
	if len(v.VoiceByChannel) != 0 {
		t.Fatalf("voice = %+v", v.VoiceByChannel)
	}
	if got := v.TextByChannel["general"]; len(got) != 1 {
		t.Fatalf("general = %+v", got)
	}
}

func TestReconcileDoesNotAliasInput(t *testing.T) {
	roster := map[domain.ChannelID][]domain.VoiceParticipant{"v": {part("me")}}
	Reconcile(Input{
		Roster: roster,
		Self:   &SelfState{User: domain.User{ID: "me"}, ChannelID: "v", Muted: true},
	})
	if roster["v"][0].Muted {
		t.Fatal("input roster mutated")
	}
}

// Every user shows up in at most one voice channel, and never in text
// while in voice, whatever the sources claim.
func TestAtMostOneLocation(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	users := []string{"a", "b", "c", "d", "me"}
	channels := []string{"", "x", "y"}
	pick := func() string { return channels[r.Intn(len(channels))] }

	for iter := 0; iter < 500; iter++ {
		var records []domain.PresenceRecord
		roster := map[domain.ChannelID][]domain.VoiceParticipant{}
		for _, u := range users {
			records = append(records, rec(u, pick(), pick()))
			// the roster may disagree with presence and even list a user twice
			for n := r.Intn(3); n > 0; n-- {
				if ch := pick(); ch != "" {
					roster[domain.ChannelID(ch)] = append(roster[domain.ChannelID(ch)], part(u))
				}
			}
		}
		self := &SelfState{User: domain.User{ID: "me", Username: "me"}, ChannelID: domain.ChannelID(pick())}

		v := Reconcile(Input{Presence: grouped(records...), Roster: roster, Self: self})

		inVoice := map[domain.UserID]domain.ChannelID{}
		for ch, list := range v.VoiceByChannel {
			for _, p := range list {
				if prev, ok := inVoice[p.UserID]; ok {
					t.Fatalf("iter %d: %s in %s and %s", iter, p.UserID, prev, ch)
				}
				inVoice[p.UserID] = ch
			}
		}
		for ch, list := range v.TextByChannel {
			for _, p := range list {
				if vc, ok := inVoice[p.UserID]; ok {
					t.Fatalf("iter %d: %s in text %s and voice %s", iter, p.UserID, ch, vc)
				}
			}
		}
		if got, ok := inVoice["me"]; self.ChannelID == "" && ok || self.ChannelID != "" && got != self.ChannelID {
			t.Fatalf("iter %d: self in %q, want %q", iter, got, self.ChannelID)
		}
	}
}

func TestDeterministic(t *testing.T) {
	in := Input{
		Presence: grouped(rec("a", "t", ""), rec("b", "", "v"), rec("c", "", "w")),
		Roster:   map[domain.ChannelID][]domain.VoiceParticipant{"v": {part("d"), part("e")}},
	}
	want := fmt.Sprint(Reconcile(in))
	for i := 0; i < 20; i++ {
		if got := fmt.Sprint(Reconcile(in)); got != want {
			t.Fatalf("run %d differs:\n%s\n%s", i, got, want)
		}
	}
}
