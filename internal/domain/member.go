package domain

import "time"

// VoiceParticipant is one user connected to one voice channel.
// The authoritative copy lives in the server roster; clients hold mirrors.
type VoiceParticipant struct {
	UserID    UserID `json:"userId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Muted     bool   `json:"muted"`
	Deafened  bool   `json:"deafened"`
	Speaking  bool   `json:"speaking"`

	// LastHeartbeat is server-side bookkeeping and is not sent over the wire.
	LastHeartbeat time.Time `json:"-"`
	// Synthesized marks a self entry created locally before the server
	// echoed the join back. Never set on roster entries.
	Synthesized bool `json:"-"`
}

// NewParticipant builds the initial roster entry for a join.
func NewParticipant(user User, now time.Time) *VoiceParticipant {
	return &VoiceParticipant{
		UserID:        user.ID,
		Username:      user.Username,
		AvatarURL:     user.AvatarURL,
		LastHeartbeat: now,
	}
}

// Expired reports whether the lease ran out at now.
func (p *VoiceParticipant) Expired(now time.Time, expiry time.Duration) bool {
	return now.Sub(p.LastHeartbeat) > expiry
}
