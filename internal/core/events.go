package core

import (
	"encoding/json"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
)

// Event names are part of the wire contract and must stay stable.
const (
	EventVoiceJoin      = "voice:join"
	EventVoiceLeave     = "voice:leave"
	EventVoiceState     = "voice:state"
	EventVoiceSpeaking  = "voice:speaking"
	EventVoiceHeartbeat = "voice:heartbeat"
	EventVoiceUserList  = "voice:userlist"
	EventVoiceSync      = "voice:sync"

	EventPresenceJoin   = "presence:join"
	EventPresenceJoined = "presence:joined"
	EventPresenceTrack  = "presence:track"
	EventPresenceLeave  = "presence:leave"
	EventPresenceSync   = "presence:sync"

	EventChannelJoin  = "channel:join"
	EventChannelLeave = "channel:leave"
	EventTypingStart  = "typing:start"
	EventTypingUser   = "typing:user"
	EventTypingStop   = "typing:stop"

	EventInvitationSend = "invitation:send"
	// EventInvitationPrefix is followed by the invitee user id.
	EventInvitationPrefix = "invitation:"

	EventStatusChange = "user:status:change"
	EventStatusUpdate = "user:status:update"

	EventPing   = "ping"
	EventPong   = "pong"
	EventWhoAmI = "whoami"
	EventError  = "error"
)

// Error codes carried by EventError frames.
const (
	ErrCodeBadPayload   = "bad_payload"
	ErrCodeUnknownEvent = "unknown_event"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeBadStatus    = "bad_status"
)

// Envelope is the single frame shape used in both directions.
type Envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Encode marshals data into an envelope frame of the given type.
func Encode(eventType string, data any) (Frame, error) {
	env := Envelope{Type: eventType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// EncodeError builds an error frame.
func EncodeError(code string) Frame {
	b, _ := json.Marshal(Envelope{Type: EventError, Error: code})
	return b
}

// ---- voice ----

type VoiceJoinRequest struct {
	ChannelID domain.ChannelID `json:"channelId"`
	User      domain.User      `json:"user"`
}

type VoiceJoinBroadcast struct {
	ChannelID domain.ChannelID        `json:"channelId"`
	User      domain.VoiceParticipant `json:"user"`
}

type VoiceLeave struct {
	ChannelID domain.ChannelID `json:"channelId"`
	UserID    domain.UserID    `json:"userId"`
}

type VoiceState struct {
	ChannelID domain.ChannelID `json:"channelId"`
	UserID    domain.UserID    `json:"userId"`
	Muted     bool             `json:"muted"`
	Deafened  bool             `json:"deafened"`
}

type VoiceSpeaking struct {
	ChannelID domain.ChannelID `json:"channelId"`
	UserID    domain.UserID    `json:"userId"`
	Speaking  bool             `json:"speaking"`
}

type VoiceHeartbeat struct {
	ChannelID domain.ChannelID `json:"channelId"`
	UserID    domain.UserID    `json:"userId"`
}

type VoiceUserList struct {
	ChannelID    domain.ChannelID          `json:"channelId"`
	Participants []domain.VoiceParticipant `json:"participants"`
}

type VoiceSync struct {
	Channels map[domain.ChannelID][]domain.VoiceParticipant `json:"channels"`
}

// ---- presence ----

type PresenceJoin struct {
	Topic string `json:"topic"`
	Key   string `json:"key"`
}

type PresenceJoined struct {
	Topic string `json:"topic"`
}

type PresenceTrack struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

type PresenceLeave struct {
	Topic string `json:"topic"`
}

// PresenceMeta is one tracked entry under a presence key. A key holds one
// meta per connection that tracked it. Seq grows with every track on the
// server, so a higher Seq is a more recent publish.
type PresenceMeta struct {
	Ref     string          `json:"ref"`
	Seq     uint64          `json:"seq"`
	Payload json.RawMessage `json:"payload"`
}

type PresenceSync struct {
	Topic string                    `json:"topic"`
	State map[string][]PresenceMeta `json:"state"`
}

// ---- auxiliary fan-out ----

type ChannelRoom struct {
	ChannelID domain.ChannelID `json:"channelId"`
}

type Typing struct {
	ChannelID domain.ChannelID `json:"channelId"`
	UserID    domain.UserID    `json:"userId"`
	Username  string           `json:"username,omitempty"`
}

type Invitation struct {
	InvitationID string          `json:"invitationId"`
	Invitee      domain.User     `json:"invitee"`
	Channel      json.RawMessage `json:"channel,omitempty"`
}

type StatusChange struct {
	UserID domain.UserID `json:"userId"`
	Status string        `json:"status"`
}

type StatusUpdate struct {
	UserID    domain.UserID `json:"userId"`
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

type WhoAmI struct {
	SID  SessionID    `json:"sid"`
	User *domain.User `json:"user,omitempty"`
}
