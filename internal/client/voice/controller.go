// Package voice drives the local voice session: token, media connection,
// signaling, presence intent and heartbeat, in that order.
package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/client/heartbeat"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrBusy            = errors.New("voice: join already in progress")
	ErrSuperseded      = errors.New("voice: join superseded")
	ErrChannelRequired = errors.New("voice: channel required")
	ErrHeartbeatLost   = errors.New("voice: heartbeat lost")
	ErrMediaDropped    = errors.New("voice: media session dropped")
)

type State int

const (
	Idle State = iota
	Joining
	Joined
	Leaving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Joining:
		return "joining"
	case Joined:
		return "joined"
	case Leaving:
		return "leaving"
	default:
		return "unknown"
	}
}

// Self is the local view of this client's voice session. ChannelID is only
// set while Joined.
type Self struct {
	User      domain.User
	State     State
	ChannelID domain.ChannelID
	Muted     bool
	Deafened  bool
}

type Options struct {
	User     domain.User
	Tokens   TokenSource
	Media    MediaConnector
	Signal   Signaling
	Presence PresenceIntent
	Notifier Notifier

	HeartbeatInterval time.Duration
	Muted             bool
	Deafened          bool
}

// Controller is the Idle, Joining, Joined, Leaving state machine. Every
// join and leave bumps gen, and an async continuation only applies its
// effects if gen is still the one it started with.
type Controller struct {
	user     domain.User
	tokens   TokenSource
	media    MediaConnector
	signal   Signaling
	presence PresenceIntent
	notifier Notifier
	interval time.Duration

	// applyMu orders toggles end to end; taken before mu.
	applyMu sync.Mutex

	mu        sync.Mutex
	state     State
	gen       uint64
	channel   domain.ChannelID
	muted     bool
	deafened  bool
	session   MediaSession
	hb        *heartbeat.Timer
	leaveDone chan struct{}

	lmu       sync.Mutex
	listeners map[uint64]func(Self)
	nextID    uint64
}

func NewController(opts Options) *Controller {
	c := &Controller{
		user:      opts.User,
		tokens:    opts.Tokens,
		media:     opts.Media,
		signal:    opts.Signal,
		presence:  opts.Presence,
		notifier:  opts.Notifier,
		interval:  opts.HeartbeatInterval,
		muted:     opts.Muted || opts.Deafened,
		deafened:  opts.Deafened,
		listeners: make(map[uint64]func(Self)),
	}
	if c.notifier == nil {
		c.notifier = NotifyFunc(func(Notice) {})
	}
	if c.interval <= 0 {
		c.interval = heartbeat.DefaultInterval
	}
	return c
}

// Join connects to ch. A join while joined elsewhere leaves first; a join
// while a leave is in flight waits for it. A failure returns the
// controller to Idle and is reported once through the Notifier.
func (c *Controller) Join(ctx context.Context, ch domain.ChannelID) error {
	if ch == "" {
		return ErrChannelRequired
	}

	c.mu.Lock()
	for c.state == Leaving {
		done := c.leaveDone
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
	}
	switch c.state {
	case Joining:
		c.mu.Unlock()
		return ErrBusy
	case Joined:
		if c.channel == ch {
			c.mu.Unlock()
			return nil
		}
		c.leaveLocked()
		return c.Join(ctx, ch)
	}
	c.gen++
	gen := c.gen
	c.state = Joining
	c.mu.Unlock()
	c.changed()

	l := log.With().Str("module", "client.voice").Str("channel", string(ch)).Logger()
	l.Debug().Msg("joining")

	creds, err := c.tokens.Token(ctx, ch, c.user)
	if err != nil {
		return c.abort(gen, ch, nil, fmt.Errorf("voice token: %w", err))
	}
	if !c.current(gen) {
		return ErrSuperseded
	}

	sess, err := c.media.Connect(ctx, creds)
	if err != nil {
		return c.abort(gen, ch, nil, fmt.Errorf("media connect: %w", err))
	}

	c.mu.Lock()
	if c.gen != gen || c.state != Joining {
		c.mu.Unlock()
		if err := sess.Disconnect(); err != nil {
			l.Debug().Err(err).Msg("disconnect superseded session")
		}
		return ErrSuperseded
	}
	if err := c.establishLocked(gen, ch, sess); err != nil {
		c.mu.Unlock()
		return c.abort(gen, ch, sess, err)
	}
	c.mu.Unlock()
	c.changed()

	l.Info().Msg("joined")
	return nil
}

// establishLocked runs the final, synchronous part of a join. Signaling is
// the last step that can fail so nothing is announced for a join that
// does not go through.
func (c *Controller) establishLocked(gen uint64, ch domain.ChannelID, sess MediaSession) error {
	uid := c.user.ID
	if err := sess.SetMicrophoneEnabled(!c.muted); err != nil {
		return fmt.Errorf("apply mute: %w", err)
	}
	if c.deafened {
		if err := sess.SetDeafened(true); err != nil {
			return fmt.Errorf("apply deafen: %w", err)
		}
	}
	if err := c.presence.JoinVoice(ch); err != nil {
		log.Warn().Err(err).Str("module", "client.voice").Msg("presence voice intent")
	}
	if err := c.signal.JoinVoice(ch, c.user); err != nil {
		if perr := c.presence.LeaveVoice(); perr != nil {
			log.Debug().Err(perr).Str("module", "client.voice").Msg("presence voice clear")
		}
		return fmt.Errorf("signal join: %w", err)
	}
	if c.muted || c.deafened {
		if err := c.signal.UpdateState(ch, uid, c.muted, c.deafened); err != nil {
			log.Warn().Err(err).Str("module", "client.voice").Msg("initial state")
		}
	}

	sess.OnSpeakingChanged(func(who domain.UserID, speaking bool) {
		if who == uid {
			c.speaking(gen, speaking)
		}
	})
	sess.OnDisconnected(func(err error) {
		if err == nil {
			err = ErrMediaDropped
		}
		go c.forceLeave(gen, NoticeDisconnected, err)
	})
	c.hb = heartbeat.Start(c.interval,
		func() error { return c.signal.Heartbeat(ch, uid) },
		func() { c.forceLeave(gen, NoticeHeartbeatLost, ErrHeartbeatLost) },
	)

	c.session = sess
	c.channel = ch
	c.state = Joined
	return nil
}

func (c *Controller) abort(gen uint64, ch domain.ChannelID, sess MediaSession, err error) error {
	if sess != nil {
		if derr := sess.Disconnect(); derr != nil {
			log.Debug().Err(derr).Str("module", "client.voice").Msg("disconnect after failed join")
		}
	}
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.state = Idle
	c.mu.Unlock()

	log.Error().Err(err).Str("module", "client.voice").Str("channel", string(ch)).Msg("join failed")
	c.notifier.Notify(Notice{Kind: NoticeJoinFailed, ChannelID: ch, Err: err})
	c.changed()
	return err
}

// Leave ends the session. It is a no-op when Idle, cancels a pending join,
// and otherwise returns once the session is torn down. Teardown failures
// are logged and never keep the controller out of Idle.
func (c *Controller) Leave() {
	c.mu.Lock()
	switch c.state {
	case Idle:
		c.mu.Unlock()
	case Joining:
		c.gen++
		c.state = Idle
		c.mu.Unlock()
		c.changed()
	case Leaving:
		done := c.leaveDone
		c.mu.Unlock()
		<-done
	case Joined:
		c.leaveLocked()
	}
}

// leaveLocked tears down a Joined session. It is entered with c.mu held
// and releases it.
func (c *Controller) leaveLocked() {
	c.gen++
	c.state = Leaving
	ch, sess, hb := c.channel, c.session, c.hb
	c.channel, c.session, c.hb = "", nil, nil
	done := make(chan struct{})
	c.leaveDone = done
	c.mu.Unlock()
	c.changed()

	l := log.With().Str("module", "client.voice").Str("channel", string(ch)).Logger()
	if err := sess.Disconnect(); err != nil {
		l.Warn().Err(err).Msg("media disconnect")
	}
	if err := c.signal.LeaveVoice(ch, c.user.ID); err != nil {
		l.Warn().Err(err).Msg("signal leave")
	}
	if err := c.presence.LeaveVoice(); err != nil {
		l.Warn().Err(err).Msg("presence voice clear")
	}
	hb.Stop()

	c.mu.Lock()
	c.state = Idle
	c.leaveDone = nil
	c.mu.Unlock()
	close(done)
	c.changed()
	l.Info().Msg("left")
}

func (c *Controller) forceLeave(gen uint64, kind NoticeKind, err error) {
	c.mu.Lock()
	if c.gen != gen || c.state != Joined {
		c.mu.Unlock()
		return
	}
	ch := c.channel
	c.leaveLocked()
	log.Warn().Err(err).Str("module", "client.voice").Str("channel", string(ch)).Stringer("kind", kind).Msg("session lost")
	c.notifier.Notify(Notice{Kind: kind, ChannelID: ch, Err: err})
}

// ToggleMute flips the mute flag. It does nothing outside Joined.
func (c *Controller) ToggleMute() bool {
	c.applyMu.Lock()
	c.mu.Lock()
	if c.state != Joined {
		c.mu.Unlock()
		c.applyMu.Unlock()
		return false
	}
	c.muted = !c.muted
	c.apply(false)
	c.applyMu.Unlock()
	c.changed()
	return true
}

// ToggleDeafen flips the deafen flag. Deafening also mutes; undeafening
// leaves the mute flag as it is.
func (c *Controller) ToggleDeafen() bool {
	c.applyMu.Lock()
	c.mu.Lock()
	if c.state != Joined {
		c.mu.Unlock()
		c.applyMu.Unlock()
		return false
	}
	c.deafened = !c.deafened
	if c.deafened {
		c.muted = true
	}
	c.apply(true)
	c.applyMu.Unlock()
	c.changed()
	return true
}

// apply pushes the flags to the media session and the roster. Entered with
// c.applyMu and c.mu held; releases c.mu only, so toggles reach the
// session and the roster in the order they flipped the flags.
func (c *Controller) apply(deafen bool) {
	ch, sess := c.channel, c.session
	muted, deafened := c.muted, c.deafened
	c.mu.Unlock()

	l := log.With().Str("module", "client.voice").Str("channel", string(ch)).Logger()
	if deafen {
		if err := sess.SetDeafened(deafened); err != nil {
			l.Warn().Err(err).Msg("apply deafen")
		}
	}
	if err := sess.SetMicrophoneEnabled(!muted); err != nil {
		l.Warn().Err(err).Msg("apply mute")
	}
	if err := c.signal.UpdateState(ch, c.user.ID, muted, deafened); err != nil {
		l.Warn().Err(err).Msg("state update")
	}
}

func (c *Controller) speaking(gen uint64, speaking bool) {
	c.mu.Lock()
	if c.gen != gen || c.state != Joined {
		c.mu.Unlock()
		return
	}
	ch := c.channel
	c.mu.Unlock()
	if err := c.signal.UpdateSpeaking(ch, c.user.ID, speaking); err != nil {
		log.Debug().Err(err).Str("module", "client.voice").Msg("speaking update")
	}
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen && c.state == Joining
}

func (c *Controller) Self() Self {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selfLocked()
}

func (c *Controller) selfLocked() Self {
	return Self{
		User:      c.user,
		State:     c.state,
		ChannelID: c.channel,
		Muted:     c.muted,
		Deafened:  c.deafened,
	}
}

// OnChange registers fn to run with the new self state after every
// transition or toggle.
func (c *Controller) OnChange(fn func(Self)) func() {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	c.nextID++
	id := c.nextID
	c.listeners[id] = fn
	return func() {
		c.lmu.Lock()
		defer c.lmu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Controller) changed() {
	self := c.Self()
	c.lmu.Lock()
	fns := make([]func(Self), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.lmu.Unlock()
	for _, fn := range fns {
		fn(self)
	}
}
