package voice

//go:generate mockgen -source=ports.go -destination=mocks_test.go -package=voice

import (
	"context"

	"github.com/dkeye/Huddle/internal/domain"
)

// Credentials are a minted media-session token and the SFU to use it on.
type Credentials struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type TokenSource interface {
	Token(ctx context.Context, ch domain.ChannelID, user domain.User) (Credentials, error)
}

type MediaConnector interface {
	Connect(ctx context.Context, creds Credentials) (MediaSession, error)
}

// ConnectorFunc adapts a function to MediaConnector.
type ConnectorFunc func(ctx context.Context, creds Credentials) (MediaSession, error)

func (f ConnectorFunc) Connect(ctx context.Context, creds Credentials) (MediaSession, error) {
	return f(ctx, creds)
}

// MediaSession is one live connection to the SFU.
type MediaSession interface {
	SetMicrophoneEnabled(enabled bool) error
	// SetDeafened stops or resumes receiving remote audio.
	SetDeafened(deafened bool) error
	OnSpeakingChanged(fn func(uid domain.UserID, speaking bool))
	// OnDisconnected fires when the SFU drops the session, not on Disconnect.
	OnDisconnected(fn func(err error))
	Disconnect() error
}

type Signaling interface {
	JoinVoice(ch domain.ChannelID, user domain.User) error
	LeaveVoice(ch domain.ChannelID, uid domain.UserID) error
	UpdateState(ch domain.ChannelID, uid domain.UserID, muted, deafened bool) error
	UpdateSpeaking(ch domain.ChannelID, uid domain.UserID, speaking bool) error
	Heartbeat(ch domain.ChannelID, uid domain.UserID) error
}

// PresenceIntent publishes the soft voice location on the presence bus.
type PresenceIntent interface {
	JoinVoice(ch domain.ChannelID) error
	LeaveVoice() error
}

type NoticeKind int

const (
	NoticeJoinFailed NoticeKind = iota
	NoticeDisconnected
	NoticeHeartbeatLost
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeJoinFailed:
		return "join_failed"
	case NoticeDisconnected:
		return "disconnected"
	case NoticeHeartbeatLost:
		return "heartbeat_lost"
	default:
		return "unknown"
	}
}

// Notice is the one user-visible report of a failure.
type Notice struct {
	Kind      NoticeKind
	ChannelID domain.ChannelID
	Err       error
}

type Notifier interface {
	Notify(Notice)
}

type NotifyFunc func(Notice)

func (f NotifyFunc) Notify(n Notice) { f(n) }
