// Package client wires the client-side voice and presence core onto one
// signaling socket.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/dkeye/Huddle/internal/client/media"
	"github.com/dkeye/Huddle/internal/client/presence"
	"github.com/dkeye/Huddle/internal/client/signaling"
	"github.com/dkeye/Huddle/internal/client/transport"
	"github.com/dkeye/Huddle/internal/client/view"
	"github.com/dkeye/Huddle/internal/client/voice"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultNonce is the presence topic suffix every client of a community shares.
const DefaultNonce = "default"

type Options struct {
	// ServerURL is the http(s) base of the huddle server.
	ServerURL string
	User      domain.User
	Community domain.CommunityID
	Nonce     string

	Muted             bool
	Deafened          bool
	HeartbeatInterval time.Duration

	// Media defaults to the LiveKit connector.
	Media    voice.MediaConnector
	Notifier voice.Notifier
}

// Session owns every client component for one signed-in user. Open it once
// per UI session and Close it on logout.
type Session struct {
	conn *transport.Conn

	Presence *presence.Bus
	Roster   *signaling.Mirror
	Voice    *voice.Controller
	View     *view.Model
}

func Open(ctx context.Context, opts Options) (*Session, error) {
	wsURL, err := signalURL(opts.ServerURL)
	if err != nil {
		return nil, err
	}
	if opts.Media == nil {
		opts.Media = media.Connector
	}
	if opts.Nonce == "" {
		opts.Nonce = DefaultNonce
	}

	// one jar so the token endpoint and the socket share the client session
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	conn, err := transport.Dial(ctx, wsURL, jar)
	if err != nil {
		return nil, err
	}

	bus := presence.NewBus(conn)
	mirror := signaling.NewMirror(conn)
	ctrl := voice.NewController(voice.Options{
		User:              opts.User,
		Tokens:            voice.NewHTTPTokenSource(opts.ServerURL, &http.Client{Jar: jar, Timeout: 10 * time.Second}),
		Media:             opts.Media,
		Signal:            signaling.NewChannel(conn),
		Presence:          bus,
		Notifier:          opts.Notifier,
		HeartbeatInterval: opts.HeartbeatInterval,
		Muted:             opts.Muted,
		Deafened:          opts.Deafened,
	})
	model := view.New(bus, mirror, ctrl)
	model.Init()

	s := &Session{conn: conn, Presence: bus, Roster: mirror, Voice: ctrl, View: model}
	if opts.Community != "" {
		// presence is best effort; voice still works without it
		_ = bus.Subscribe(opts.Community, opts.Nonce, opts.User)
	}
	log.Info().Str("module", "client").Str("user", string(opts.User.ID)).Msg("session open")
	return s, nil
}

// Done is closed when the signaling socket goes away.
func (s *Session) Done() <-chan struct{} { return s.conn.Done() }

func (s *Session) Close() error {
	s.Voice.Leave()
	s.Presence.Unsubscribe()
	s.View.Dispose()
	s.Roster.Close()
	return s.conn.Close()
}

func signalURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("server url: unsupported scheme %q", u.Scheme)
	}
	u.Path = "/api/ws/signal"
	return u.String(), nil
}
