package discord

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

// Embed colours.
const (
	colorRed       = 0xE74C3C
	colorDarkRed   = 0x992D22
	colorOrange    = 0xE67E22
	colorDarkGreen = 0x1F8B4C
	colorPurple    = 0x9B59B6
	colorDefault   = 0x95A5A6
)

// ColorValue maps a notification colour tag to an embed colour.
func ColorValue(tag membership.ColorTag) int {
	switch tag {
	case membership.ColorJoined, membership.ColorPositive:
		return colorDarkGreen
	case membership.ColorNeutral, membership.ColorAlert:
		return colorRed
	case membership.ColorWarning:
		return colorOrange
	case membership.ColorSevere:
		return colorDarkRed
	case membership.ColorAggregate:
		return colorPurple
	default:
		return colorDefault
	}
}

// ToEmbed renders a notification as a Discord embed.
func ToEmbed(n membership.Notification) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: n.Title,
		Color: ColorValue(n.Color),
	}
	for _, f := range n.Fields {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if n.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: n.Thumbnail}
	}
	return embed
}

// ProfileFromUser snapshots a Discord user.
func ProfileFromUser(u *discordgo.User) membership.UserProfile {
	if u == nil {
		return membership.UserProfile{}
	}
	profile := membership.UserProfile{
		ID:          membership.UserID(u.ID),
		Username:    u.Username,
		DisplayName: strings.TrimSpace(u.GlobalName),
	}
	if u.Avatar != "" {
		profile.AvatarURL = u.AvatarURL("")
	}
	return profile
}

// ProfileFromMember snapshots a guild member, preferring the guild nickname.
func ProfileFromMember(m *discordgo.Member) membership.UserProfile {
	if m == nil {
		return membership.UserProfile{}
	}
	profile := ProfileFromUser(m.User)
	if nick := strings.TrimSpace(m.Nick); nick != "" {
		profile.DisplayName = nick
	}
	return profile
}

// ModerationEntryFromAudit translates an audit log entry. Kinds the bot doesn't
// track come back as ModerationUnknown.
func ModerationEntryFromAudit(entry *discordgo.AuditLogEntry) membership.ModerationEntry {
	if entry == nil || entry.ActionType == nil {
		return membership.ModerationEntry{Kind: membership.ModerationUnknown}
	}
	out := membership.ModerationEntry{
		TargetID: membership.UserID(strings.TrimSpace(entry.TargetID)),
		Reason:   strings.TrimSpace(entry.Reason),
	}
	switch *entry.ActionType {
	case discordgo.AuditLogActionMemberBanAdd:
		out.Kind = membership.ModerationBanAdd
	case discordgo.AuditLogActionMemberBanRemove:
		out.Kind = membership.ModerationBanRemove
	case discordgo.AuditLogActionMemberKick:
		out.Kind = membership.ModerationKick
	case discordgo.AuditLogActionMemberPrune:
		out.Kind = membership.ModerationPrune
		if entry.Options != nil {
			if n, err := strconv.Atoi(strings.TrimSpace(entry.Options.MembersRemoved)); err == nil {
				out.PrunedCount = &n
			}
		}
	default:
		out.Kind = membership.ModerationUnknown
	}
	return out
}
