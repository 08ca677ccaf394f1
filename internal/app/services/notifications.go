package services

import (
	"fmt"
	"strings"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
	"github.com/google/uuid"
)

func newNotification(guild membership.GuildID, role membership.ChannelRole, title string, color membership.ColorTag) membership.Notification {
	return membership.Notification{
		ID:      uuid.NewString(),
		GuildID: guild,
		Role:    role,
		Title:   title,
		Color:   color,
	}
}

// userNotification builds the common "<name> ..." notice with the identity fields and avatar.
func userNotification(guild membership.GuildID, role membership.ChannelRole, user membership.UserProfile, title string, color membership.ColorTag) membership.Notification {
	n := newNotification(guild, role, fmt.Sprintf("%s %s", user.Name(), title), color)
	n.Fields = append(n.Fields, membership.Field{Name: "User ID", Value: string(user.ID), Inline: true})
	if username := strings.TrimSpace(user.Username); username != "" {
		n.Fields = append(n.Fields, membership.Field{Name: "Username", Value: username, Inline: true})
	}
	n.Thumbnail = user.AvatarURL
	return n
}

func withReason(n membership.Notification, reason string) membership.Notification {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return n
	}
	n.Fields = append(n.Fields, membership.Field{Name: "Reason", Value: reason})
	return n
}

func joinNotification(guild membership.GuildID, user membership.UserProfile) membership.Notification {
	return userNotification(guild, membership.RoleMembership, user, "joined the server", membership.ColorJoined)
}

func departureNotification(guild membership.GuildID, user membership.UserProfile, cause membership.DepartureCause) membership.Notification {
	var title string
	switch cause {
	case membership.CauseKicked:
		title = "was kicked"
	case membership.CauseBanned:
		title = "was banned"
	default:
		title = "left the server"
	}
	return userNotification(guild, membership.RoleMembership, user, title, membership.CauseColor(cause))
}

func banNotification(guild membership.GuildID, user membership.UserProfile, reason string) membership.Notification {
	return withReason(userNotification(guild, membership.RoleTransparency, user, "was banned", membership.ColorAlert), reason)
}

func unbanNotification(guild membership.GuildID, user membership.UserProfile, reason string) membership.Notification {
	return withReason(userNotification(guild, membership.RoleTransparency, user, "was unbanned", membership.ColorPositive), reason)
}

func kickNotification(guild membership.GuildID, user membership.UserProfile, reason string) membership.Notification {
	return withReason(userNotification(guild, membership.RoleTransparency, user, "was kicked", membership.ColorWarning), reason)
}

func pruneNotification(guild membership.GuildID, count int) membership.Notification {
	return newNotification(guild, membership.RoleTransparency, pruneTitle(count), membership.ColorAggregate)
}

// pruneTitle renders "1 user was pruned" / "N users were pruned".
func pruneTitle(count int) string {
	if count == 1 {
		return "1 user was pruned"
	}
	return fmt.Sprintf("%d users were pruned", count)
}
