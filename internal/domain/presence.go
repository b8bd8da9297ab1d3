package domain

// PresenceRecord is the full state one client publishes on a community
// presence channel. Every publish replaces the previous record entirely.
type PresenceRecord struct {
	CommunityID          CommunityID `json:"serverId"`
	UserID               UserID      `json:"userId"`
	Username             string      `json:"username"`
	AvatarURL            string      `json:"avatar_url,omitempty"`
	ActiveTextChannelID  ChannelID   `json:"activeTextChannelId,omitempty"`
	ActiveVoiceChannelID ChannelID   `json:"activeVoiceChannelId,omitempty"`
}

// Location returns the single place the user is surfaced in. Voice wins
// over text. ok is false when the user is in neither.
func (r PresenceRecord) Location() (channel ChannelID, voice bool, ok bool) {
	if r.ActiveVoiceChannelID != "" {
		return r.ActiveVoiceChannelID, true, true
	}
	if r.ActiveTextChannelID != "" {
		return r.ActiveTextChannelID, false, true
	}
	return "", false, false
}
