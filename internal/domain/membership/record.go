package membership

import "time"

// Record is a stored entry of the notification history for a guild.
type Record struct {
	ID         string    `json:"id"`
	GuildID    GuildID   `json:"guildId"`
	UserID     UserID    `json:"userId,omitempty"`
	UserName   string    `json:"userName,omitempty"`
	Action     string    `json:"action"`
	Reason     string    `json:"reason,omitempty"`
	Count      int       `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Record actions.
const (
	ActionJoined   = "joined"
	ActionLeft     = "left"
	ActionKicked   = "kicked"
	ActionBanned   = "banned"
	ActionUnbanned = "unbanned"
	ActionPruned   = "pruned"

	ActionKickLogged = "kick_logged"
	ActionBanLogged  = "ban_logged"
)

// DepartureAction maps a classified cause to its history action.
func DepartureAction(cause DepartureCause) string {
	switch cause {
	case CauseKicked:
		return ActionKicked
	case CauseBanned:
		return ActionBanned
	default:
		return ActionLeft
	}
}
