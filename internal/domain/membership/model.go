package membership

import (
	"strings"
	"time"
)

// GuildID identifies a guild (Discord server).
type GuildID string

// UserID identifies a platform account.
type UserID string

// UserProfile is the display snapshot of a user at the moment an event was observed.
type UserProfile struct {
	ID          UserID `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Minimal returns the degraded profile used when a user can't be resolved.
func Minimal(id UserID) UserProfile {
	return UserProfile{ID: id}
}

// Name returns the best available human-readable name for the profile.
func (p UserProfile) Name() string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	if name := strings.TrimSpace(p.Username); name != "" {
		return name
	}
	return strings.TrimSpace(string(p.ID))
}

// Merge fills empty fields of p with the ones from other.
func (p UserProfile) Merge(other UserProfile) UserProfile {
	if p.ID == "" {
		p.ID = other.ID
	}
	if p.Username == "" {
		p.Username = other.Username
	}
	if p.DisplayName == "" {
		p.DisplayName = other.DisplayName
	}
	if p.AvatarURL == "" {
		p.AvatarURL = other.AvatarURL
	}
	return p
}

// Incomplete reports whether the snapshot carries nothing beyond the identity.
func (p UserProfile) Incomplete() bool {
	return p.Username == "" && p.DisplayName == ""
}

// ModerationKind is the kind of action recorded in the moderation log.
type ModerationKind int

const (
	ModerationUnknown ModerationKind = iota
	ModerationBanAdd
	ModerationBanRemove
	ModerationKick
	ModerationPrune
)

func (k ModerationKind) String() string {
	switch k {
	case ModerationBanAdd:
		return "ban_add"
	case ModerationBanRemove:
		return "ban_remove"
	case ModerationKick:
		return "kick"
	case ModerationPrune:
		return "prune"
	default:
		return "unknown"
	}
}

// ModerationEntry is one observed moderation-log (audit log) entry.
type ModerationEntry struct {
	Kind        ModerationKind
	TargetID    UserID
	Reason      string
	PrunedCount *int
}

// HasTarget reports whether the entry names a target user.
func (e ModerationEntry) HasTarget() bool {
	return strings.TrimSpace(string(e.TargetID)) != ""
}

// DepartureEvent is a member-removal notification. It never carries a cause.
type DepartureEvent struct {
	GuildID    GuildID
	User       UserProfile
	ReceivedAt time.Time
}

// DepartureCause is the result of classifying a departure.
type DepartureCause int

const (
	CauseVoluntary DepartureCause = iota
	CauseKicked
	CauseBanned
)

func (c DepartureCause) String() string {
	switch c {
	case CauseKicked:
		return "kicked"
	case CauseBanned:
		return "banned"
	default:
		return "voluntary"
	}
}
