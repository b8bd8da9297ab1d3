// Package signaling is the client side of the voice signaling channel:
// fire-and-forget emitters and a mirror of the server roster.
package signaling

import (
	"github.com/dkeye/Huddle/internal/client/transport"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
)

// Channel emits voice events. None of them wait for an acknowledgment.
type Channel struct {
	sock transport.Socket
}

func NewChannel(sock transport.Socket) *Channel {
	return &Channel{sock: sock}
}

func (c *Channel) JoinVoice(ch domain.ChannelID, user domain.User) error {
	return c.sock.Emit(core.EventVoiceJoin, core.VoiceJoinRequest{ChannelID: ch, User: user})
}

func (c *Channel) LeaveVoice(ch domain.ChannelID, uid domain.UserID) error {
	return c.sock.Emit(core.EventVoiceLeave, core.VoiceLeave{ChannelID: ch, UserID: uid})
}

func (c *Channel) UpdateState(ch domain.ChannelID, uid domain.UserID, muted, deafened bool) error {
	return c.sock.Emit(core.EventVoiceState, core.VoiceState{ChannelID: ch, UserID: uid, Muted: muted, Deafened: deafened})
}

func (c *Channel) UpdateSpeaking(ch domain.ChannelID, uid domain.UserID, speaking bool) error {
	return c.sock.Emit(core.EventVoiceSpeaking, core.VoiceSpeaking{ChannelID: ch, UserID: uid, Speaking: speaking})
}

func (c *Channel) Heartbeat(ch domain.ChannelID, uid domain.UserID) error {
	return c.sock.Emit(core.EventVoiceHeartbeat, core.VoiceHeartbeat{ChannelID: ch, UserID: uid})
}
