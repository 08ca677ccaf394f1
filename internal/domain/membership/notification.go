package membership

// ChannelRole selects which configured guild channel receives a notification.
type ChannelRole string

const (
	RoleMembership   ChannelRole = "membership"
	RoleTransparency ChannelRole = "transparency"
)

// ColorTag is the semantic colour of a notification; the dispatcher maps it to a concrete colour.
type ColorTag string

const (
	ColorJoined    ColorTag = "joined"
	ColorNeutral   ColorTag = "neutral"
	ColorWarning   ColorTag = "warning"
	ColorSevere    ColorTag = "severe"
	ColorAlert     ColorTag = "alert"
	ColorPositive  ColorTag = "positive"
	ColorAggregate ColorTag = "aggregate"
)

// Field is one name/value line of a notification.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Notification is a formatted notice ready to be delivered to a guild channel.
type Notification struct {
	ID        string      `json:"id"`
	GuildID   GuildID     `json:"guildId"`
	Role      ChannelRole `json:"role"`
	Title     string      `json:"title"`
	Color     ColorTag    `json:"color"`
	Fields    []Field     `json:"fields,omitempty"`
	Thumbnail string      `json:"thumbnail,omitempty"`
}

// CauseColor maps a departure cause to its notification colour.
func CauseColor(cause DepartureCause) ColorTag {
	switch cause {
	case CauseKicked:
		return ColorWarning
	case CauseBanned:
		return ColorSevere
	default:
		return ColorNeutral
	}
}
