package orch

import (
	"github.com/dkeye/Huddle/internal/app/roster"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// VoiceJoin records the announced identity on the session and puts the
// user into the channel roster, moving them out of any other channel.
func (o *Orchestrator) VoiceJoin(sid core.SessionID, req core.VoiceJoinRequest) error {
	if req.ChannelID == "" {
		return ErrChannelRequired
	}
	if req.User.ID == "" {
		return domain.ErrUserIDEmpty
	}
	user, err := domain.NewUser(req.User.ID, req.User.Username, req.User.AvatarURL)
	if err != nil {
		return err
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return core.ErrConnClosed
	}
	sess.Identify(*user)

	if from := o.Roster.Join(req.ChannelID, *user); from != "" {
		log.Info().Str("module", "app.orch").Str("user", string(user.ID)).Str("from", string(from)).Str("to", string(req.ChannelID)).Msg("moved between voice channels")
	}
	return nil
}

func (o *Orchestrator) VoiceLeave(req core.VoiceLeave) bool {
	return o.Roster.Leave(req.ChannelID, req.UserID)
}

func (o *Orchestrator) VoiceState(req core.VoiceState) bool {
	return o.Roster.UpdateState(req.ChannelID, req.UserID, req.Muted, req.Deafened)
}

func (o *Orchestrator) VoiceSpeaking(req core.VoiceSpeaking) bool {
	return o.Roster.UpdateSpeaking(req.ChannelID, req.UserID, req.Speaking)
}

func (o *Orchestrator) VoiceHeartbeat(req core.VoiceHeartbeat) bool {
	return o.Roster.Heartbeat(req.ChannelID, req.UserID)
}

// VoiceStates returns every non-empty channel roster.
func (o *Orchestrator) VoiceStates() map[domain.ChannelID][]domain.VoiceParticipant {
	return o.Roster.Snapshot()
}

func (o *Orchestrator) ChannelParticipants(ch domain.ChannelID) []domain.VoiceParticipant {
	return o.Roster.Participants(ch)
}

// rosterFanout turns roster changes into frames. It runs under the roster
// lock, which keeps per-channel delivery order equal to mutation order.
type rosterFanout struct{ o *Orchestrator }

func (f rosterFanout) Joined(ch domain.ChannelID, p domain.VoiceParticipant, participants []domain.VoiceParticipant) {
	f.o.broadcast(encode(core.EventVoiceJoin, core.VoiceJoinBroadcast{ChannelID: ch, User: p}))
	// late joiners get the full roster without waiting for anyone's next event
	f.o.deliver(f.o.Registry.SessionsOfUser(p.UserID),
		encode(core.EventVoiceUserList, core.VoiceUserList{ChannelID: ch, Participants: participants}))
}

func (f rosterFanout) Left(ch domain.ChannelID, uid domain.UserID, reason roster.LeaveReason) {
	log.Debug().Str("module", "app.orch").Str("channel", string(ch)).Str("user", string(uid)).Str("reason", reason.String()).Msg("broadcast leave")
	f.o.broadcast(encode(core.EventVoiceLeave, core.VoiceLeave{ChannelID: ch, UserID: uid}))
}

func (f rosterFanout) StateChanged(ch domain.ChannelID, p domain.VoiceParticipant) {
	f.o.broadcast(encode(core.EventVoiceState, core.VoiceState{
		ChannelID: ch,
		UserID:    p.UserID,
		Muted:     p.Muted,
		Deafened:  p.Deafened,
	}))
}

func (f rosterFanout) SpeakingChanged(ch domain.ChannelID, p domain.VoiceParticipant) {
	f.o.broadcast(encode(core.EventVoiceSpeaking, core.VoiceSpeaking{
		ChannelID: ch,
		UserID:    p.UserID,
		Speaking:  p.Speaking,
	}))
}
