// Package media connects the voice controller to a LiveKit room: one Opus
// microphone track out, remote audio in unless deafened.
package media

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dkeye/Huddle/internal/client/voice"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

var ErrDropped = errors.New("media: room disconnected")

// Connector plugs Connect into voice.Options.
var Connector voice.MediaConnector = voice.ConnectorFunc(func(ctx context.Context, creds voice.Credentials) (voice.MediaSession, error) {
	return Connect(ctx, creds)
})

type Session struct {
	room *lksdk.Room
	mic  *lksdk.LocalTrackPublication

	deafened atomic.Bool
	local    atomic.Bool

	mu         sync.Mutex
	speaking   map[domain.UserID]bool
	onSpeaking func(domain.UserID, bool)
	onDropped  func(error)
	dropped    bool
}

func newSession() *Session {
	return &Session{speaking: make(map[domain.UserID]bool)}
}

// Connect joins the room the token is scoped to and publishes the
// microphone track. Remote tracks are subscribed explicitly so deafen can
// turn them off.
func Connect(ctx context.Context, creds voice.Credentials) (*Session, error) {
	s := newSession()
	cb := lksdk.NewRoomCallback()
	cb.OnDisconnected = s.handleDisconnected
	cb.OnActiveSpeakersChanged = s.handleActiveSpeakers
	cb.ParticipantCallback.OnTrackPublished = s.handleTrackPublished

	type result struct {
		room *lksdk.Room
		err  error
	}
	done := make(chan result, 1)
	go func() {
		room, err := lksdk.ConnectToRoomWithToken(creds.URL, creds.Token, cb, lksdk.WithAutoSubscribe(false))
		done <- result{room, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		s.local.Store(true)
		go func() {
			if r := <-done; r.room != nil {
				r.room.Disconnect()
			}
		}()
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, fmt.Errorf("livekit connect: %w", res.err)
	}
	s.room = res.room

	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
		"audio", "microphone",
	)
	if err != nil {
		s.abandon()
		return nil, fmt.Errorf("microphone track: %w", err)
	}
	pub, err := s.room.LocalParticipant.PublishTrack(track, &lksdk.TrackPublicationOptions{
		Name:   "microphone",
		Source: livekit.TrackSource_MICROPHONE,
	})
	if err != nil {
		s.abandon()
		return nil, fmt.Errorf("publish microphone: %w", err)
	}
	s.mic = pub

	if err := s.subscribeAudio(true); err != nil {
		log.Warn().Err(err).Str("module", "client.media").Msg("subscribe existing audio")
	}
	log.Info().Str("module", "client.media").Str("room", s.room.Name()).Msg("connected")
	return s, nil
}

func (s *Session) SetMicrophoneEnabled(enabled bool) error {
	if s.mic == nil {
		return nil
	}
	s.mic.SetMuted(!enabled)
	return nil
}

func (s *Session) SetDeafened(deafened bool) error {
	s.deafened.Store(deafened)
	return s.subscribeAudio(!deafened)
}

func (s *Session) OnSpeakingChanged(fn func(domain.UserID, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSpeaking = fn
}

// OnDisconnected registers fn for drops the client did not ask for. A drop
// that happened before registration is reported right away.
func (s *Session) OnDisconnected(fn func(error)) {
	s.mu.Lock()
	s.onDropped = fn
	dropped := s.dropped
	s.mu.Unlock()
	if dropped && fn != nil {
		go fn(ErrDropped)
	}
}

func (s *Session) Disconnect() error {
	if s.local.Swap(true) {
		return nil
	}
	if s.room != nil {
		s.room.Disconnect()
	}
	log.Debug().Str("module", "client.media").Msg("disconnected")
	return nil
}

func (s *Session) abandon() {
	s.local.Store(true)
	s.room.Disconnect()
}

func (s *Session) subscribeAudio(on bool) error {
	if s.room == nil {
		return nil
	}
	var errs []error
	for _, rp := range s.room.GetRemoteParticipants() {
		for _, tp := range rp.TrackPublications() {
			pub, ok := tp.(*lksdk.RemoteTrackPublication)
			if !ok || pub.Kind() != lksdk.TrackKindAudio {
				continue
			}
			if err := pub.SetSubscribed(on); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", rp.Identity(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func (s *Session) handleTrackPublished(pub *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
	if pub.Kind() != lksdk.TrackKindAudio || s.deafened.Load() {
		return
	}
	if err := pub.SetSubscribed(true); err != nil {
		log.Warn().Err(err).Str("module", "client.media").Str("user", rp.Identity()).Msg("subscribe audio")
	}
}

func (s *Session) handleActiveSpeakers(ps []lksdk.Participant) {
	next := make(map[domain.UserID]bool, len(ps))
	for _, p := range ps {
		next[domain.UserID(p.Identity())] = true
	}
	s.applySpeakers(next)
}

func (s *Session) applySpeakers(next map[domain.UserID]bool) {
	s.mu.Lock()
	changes := speakingDiff(s.speaking, next)
	s.speaking = next
	fn := s.onSpeaking
	s.mu.Unlock()
	if fn == nil {
		return
	}
	for _, c := range changes {
		fn(c.UserID, c.Speaking)
	}
}

func (s *Session) handleDisconnected() {
	if s.local.Load() {
		return
	}
	s.mu.Lock()
	if s.dropped {
		s.mu.Unlock()
		return
	}
	s.dropped = true
	fn := s.onDropped
	s.mu.Unlock()

	log.Warn().Str("module", "client.media").Msg("room dropped")
	if fn != nil {
		fn(ErrDropped)
	}
}

type speakingChange struct {
	UserID   domain.UserID
	Speaking bool
}

// speakingDiff turns two active-speaker sets into per-user edges, sorted
// by user id.
func speakingDiff(prev, next map[domain.UserID]bool) []speakingChange {
	var out []speakingChange
	for uid := range next {
		if !prev[uid] {
			out = append(out, speakingChange{uid, true})
		}
	}
	for uid := range prev {
		if !next[uid] {
			out = append(out, speakingChange{uid, false})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
