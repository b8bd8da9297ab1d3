// Package reconcile merges the soft presence intent, the authoritative
// voice roster and the local self state into the view the UI renders.
package reconcile

import (
	"sort"

	"github.com/dkeye/Huddle/internal/client/presence"
	"github.com/dkeye/Huddle/internal/domain"
)

// SelfState is what this client knows about itself before the server does.
// An empty ChannelID means not in voice.
type SelfState struct {
	User      domain.User
	ChannelID domain.ChannelID
	Muted     bool
	Deafened  bool
}

type Input struct {
	Presence presence.Grouped
	// Roster is the mirrored server roster, each channel in join order.
	Roster map[domain.ChannelID][]domain.VoiceParticipant
	Self   *SelfState
}

// View is the derived, read-only grouping. Every user appears at most once
// across both maps.
type View struct {
	TextByChannel  map[domain.ChannelID][]domain.PresenceRecord
	VoiceByChannel map[domain.ChannelID][]domain.VoiceParticipant
}

// VoiceChannelOf reports the voice channel uid is shown in.
func (v View) VoiceChannelOf(uid domain.UserID) (domain.ChannelID, bool) {
	for ch, list := range v.VoiceByChannel {
		for _, p := range list {
			if p.UserID == uid {
				return ch, true
			}
		}
	}
	return "", false
}

// Reconcile is pure: the same input always yields the same view.
//
// Voice membership comes from the roster. A user announcing voice intent
// on presence but missing from the roster is shown as a synthesized entry
// in the intent channel; if the roster has them anywhere, the roster's
// channel is used. The self entry follows local state and is never
// duplicated. Users in voice are left out of the text grouping.
func Reconcile(in Input) View {
	voice := make(map[domain.ChannelID][]domain.VoiceParticipant)
	seen := make(map[domain.UserID]struct{})

	for _, ch := range sortedKeys(in.Roster) {
		for _, p := range in.Roster[ch] {
			if _, dup := seen[p.UserID]; dup {
				continue
			}
			seen[p.UserID] = struct{}{}
			p.Synthesized = false
			voice[ch] = append(voice[ch], p)
		}
	}

	for _, ch := range sortedKeys(in.Presence.Voice) {
		for _, rec := range in.Presence.Voice[ch] {
			if _, ok := seen[rec.UserID]; ok {
				continue
			}
			seen[rec.UserID] = struct{}{}
			voice[ch] = append(voice[ch], domain.VoiceParticipant{
				UserID:      rec.UserID,
				Username:    rec.Username,
				AvatarURL:   rec.AvatarURL,
				Synthesized: true,
			})
		}
	}

	if in.Self != nil {
		overlaySelf(voice, seen, *in.Self)
	}

	text := make(map[domain.ChannelID][]domain.PresenceRecord)
	for _, ch := range sortedKeys(in.Presence.Text) {
		for _, rec := range in.Presence.Text[ch] {
			if _, inVoice := seen[rec.UserID]; inVoice {
				continue
			}
			text[ch] = append(text[ch], rec)
		}
	}

	for ch, list := range voice {
		if len(list) == 0 {
			delete(voice, ch)
		}
	}
	return View{TextByChannel: text, VoiceByChannel: voice}
}

func overlaySelf(voice map[domain.ChannelID][]domain.VoiceParticipant, seen map[domain.UserID]struct{}, self SelfState) {
	uid := self.User.ID
	placed := false
	for ch, list := range voice {
		for i := 0; i < len(list); i++ {
			if list[i].UserID != uid {
				continue
			}
			if ch == self.ChannelID && !list[i].Synthesized {
				// the roster has us: keep the entry and its position
				list[i].Muted = self.Muted
				list[i].Deafened = self.Deafened
				placed = true
				continue
			}
			list = append(list[:i], list[i+1:]...)
			i--
		}
		voice[ch] = list
	}

	if self.ChannelID == "" {
		delete(seen, uid)
		return
	}
	seen[uid] = struct{}{}
	if placed {
		return
	}
	voice[self.ChannelID] = append(voice[self.ChannelID], domain.VoiceParticipant{
		UserID:      uid,
		Username:    self.User.Username,
		AvatarURL:   self.User.AvatarURL,
		Muted:       self.Muted,
		Deafened:    self.Deafened,
		Synthesized: true,
	})
}

func sortedKeys[V any](m map[domain.ChannelID]V) []domain.ChannelID {
	keys := make([]domain.ChannelID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
