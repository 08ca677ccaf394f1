package membership

// GuildRoute maps a guild to the channels that receive its notifications.
type GuildRoute struct {
	GuildID               GuildID `json:"guildId" yaml:"guild_id"`
	MembershipChannelID   string  `json:"membershipChannelId" yaml:"membership_channel_id"`
	TransparencyChannelID string  `json:"transparencyChannelId" yaml:"transparency_channel_id"`
}

// ChannelFor returns the channel configured for the role, or "" when unset.
func (r GuildRoute) ChannelFor(role ChannelRole) string {
	switch role {
	case RoleMembership:
		return r.MembershipChannelID
	case RoleTransparency:
		return r.TransparencyChannelID
	default:
		return ""
	}
}
