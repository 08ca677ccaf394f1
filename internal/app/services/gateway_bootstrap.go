package services

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
	"github.com/faeln1/go-guild-notifier/internal/platform/discord"
	"github.com/faeln1/go-guild-notifier/pkg/eventlog"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// MembershipEventListener consumes member join and removal notifications.
type MembershipEventListener interface {
	HandleMemberAdded(ctx context.Context, guild membership.GuildID, user membership.UserProfile) error
	HandleMemberRemoved(ctx context.Context, evt membership.DepartureEvent) (membership.DepartureCause, error)
}

// ModerationEventListener consumes moderation-log entries.
type ModerationEventListener interface {
	HandleModerationEntry(ctx context.Context, guild membership.GuildID, entry membership.ModerationEntry) error
}

// HandlerRegistrar is the part of a discordgo session the bootstrap needs.
type HandlerRegistrar interface {
	AddHandler(handler interface{}) func()
}

// GatewayBootstrap translates gateway events into listener calls. Every event runs
// on its own goroutine so a departure waiting out its grace interval never blocks
// the gateway.
type GatewayBootstrap struct {
	Log              waLog.Logger
	MembershipEvents MembershipEventListener
	ModerationEvents ModerationEventListener
	EventLog         *eventlog.Writer

	now func() time.Time
}

func NewGatewayBootstrap(log waLog.Logger, membershipEvents MembershipEventListener, moderationEvents ModerationEventListener, eventLog *eventlog.Writer) *GatewayBootstrap {
	if log == nil {
		log = waLog.Noop
	}
	return &GatewayBootstrap{
		Log:              log,
		MembershipEvents: membershipEvents,
		ModerationEvents: moderationEvents,
		EventLog:         eventLog,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Attach registers the gateway handlers on the session.
func (b *GatewayBootstrap) Attach(session HandlerRegistrar) {
	session.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildMemberAdd) {
		if e == nil || e.Member == nil || e.User == nil {
			return
		}
		b.archive(e.GuildID, e)
		b.OnMemberAdded(membership.GuildID(e.GuildID), discord.ProfileFromMember(e.Member))
	})
	session.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildMemberRemove) {
		if e == nil || e.Member == nil || e.User == nil {
			return
		}
		b.archive(e.GuildID, e)
		b.OnMemberRemoved(membership.GuildID(e.GuildID), discord.ProfileFromMember(e.Member))
	})
	session.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildAuditLogEntryCreate) {
		if e == nil || e.AuditLogEntry == nil {
			return
		}
		b.archive(e.GuildID, e)
		b.OnModerationEntry(membership.GuildID(e.GuildID), discord.ModerationEntryFromAudit(e.AuditLogEntry))
	})
}

// OnMemberAdded hands a join to the membership listener in the background.
func (b *GatewayBootstrap) OnMemberAdded(guild membership.GuildID, user membership.UserProfile) {
	if b.MembershipEvents == nil {
		return
	}
	b.spawn("member_add", func(ctx context.Context) error {
		return b.MembershipEvents.HandleMemberAdded(ctx, guild, user)
	})
}

// OnMemberRemoved hands a removal to the membership listener in the background.
func (b *GatewayBootstrap) OnMemberRemoved(guild membership.GuildID, user membership.UserProfile) {
	if b.MembershipEvents == nil {
		return
	}
	evt := membership.DepartureEvent{GuildID: guild, User: user, ReceivedAt: b.now()}
	b.spawn("member_remove", func(ctx context.Context) error {
		_, err := b.MembershipEvents.HandleMemberRemoved(ctx, evt)
		return err
	})
}

// OnModerationEntry hands an audit log entry to the moderation listener in the background.
func (b *GatewayBootstrap) OnModerationEntry(guild membership.GuildID, entry membership.ModerationEntry) {
	if b.ModerationEvents == nil || entry.Kind == membership.ModerationUnknown {
		return
	}
	b.spawn("audit_log", func(ctx context.Context) error {
		return b.ModerationEvents.HandleModerationEntry(ctx, guild, entry)
	})
}

func (b *GatewayBootstrap) spawn(kind string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.Log.Errorf("%s handler panicked: %v", kind, r)
			}
		}()
		err := fn(context.Background())
		switch {
		case err == nil:
		case errors.Is(err, ErrMissingTarget):
			b.Log.Warnf("%s dropped: %v", kind, err)
		default:
			b.Log.Errorf("%s failed: %v", kind, err)
		}
	}()
}

func (b *GatewayBootstrap) archive(guild string, evt any) {
	if !b.EventLog.Enabled() {
		return
	}
	if err := b.EventLog.Write(context.Background(), guild, evt); err != nil {
		b.Log.Warnf("event archive failed guild=%s: %v", guild, err)
	}
}
