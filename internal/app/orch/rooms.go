package orch

import (
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

var userStatuses = map[string]struct{}{
	"online":  {},
	"idle":    {},
	"dnd":     {},
	"offline": {},
}

func (o *Orchestrator) ChannelJoin(sid core.SessionID, req core.ChannelRoom) error {
	if req.ChannelID == "" {
		return ErrChannelRequired
	}
	o.Registry.JoinRoom(sid, req.ChannelID)
	return nil
}

func (o *Orchestrator) ChannelLeave(sid core.SessionID, req core.ChannelRoom) {
	o.Registry.LeaveRoom(sid, req.ChannelID)
}

// TypingStart relays to everyone in the room except the sender.
func (o *Orchestrator) TypingStart(sid core.SessionID, req core.Typing) error {
	if req.ChannelID == "" {
		return ErrChannelRequired
	}
	o.deliver(o.roomExcept(req.ChannelID, sid), encode(core.EventTypingUser, req))
	return nil
}

func (o *Orchestrator) TypingStop(sid core.SessionID, req core.Typing) error {
	if req.ChannelID == "" {
		return ErrChannelRequired
	}
	req.Username = ""
	o.deliver(o.roomExcept(req.ChannelID, sid), encode(core.EventTypingStop, req))
	return nil
}

// Invite relays the invitation under an event named after the invitee, so
// only the invitee's clients react to it.
func (o *Orchestrator) Invite(req core.Invitation) error {
	if req.Invitee.ID == "" {
		return domain.ErrUserIDEmpty
	}
	o.broadcast(encode(core.EventInvitationPrefix+string(req.Invitee.ID), req))
	return nil
}

func (o *Orchestrator) StatusChange(req core.StatusChange) error {
	if req.UserID == "" {
		return domain.ErrUserIDEmpty
	}
	if _, ok := userStatuses[req.Status]; !ok {
		return ErrBadStatus
	}
	log.Debug().Str("module", "app.orch").Str("user", string(req.UserID)).Str("status", req.Status).Msg("status change")
	o.broadcast(encode(core.EventStatusUpdate, core.StatusUpdate{
		UserID:    req.UserID,
		Status:    req.Status,
		Timestamp: o.now().UTC(),
	}))
	return nil
}

func (o *Orchestrator) roomExcept(room domain.ChannelID, sid core.SessionID) []app.SessionSnap {
	members := o.Registry.MembersOfRoom(room)
	out := members[:0]
	for _, m := range members {
		if m.SID != sid {
			out = append(out, m)
		}
	}
	return out
}
