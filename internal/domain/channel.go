package domain

type (
	// ChannelID names a text or voice channel. Voice channel ids double as
	// media room names.
	ChannelID string
	// CommunityID names a server (guild) a presence subscription is scoped to.
	CommunityID string
)
