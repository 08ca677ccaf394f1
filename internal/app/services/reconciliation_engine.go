package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/faeln1/go-guild-notifier/internal/app/repositories"
	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// Default reconciliation timing.
const (
	DefaultGraceInterval   = time.Second
	DefaultRecheckAttempts = 2
	DefaultRecheckInterval = 500 * time.Millisecond
)

// ReconcileConfig controls how long a departure waits for its moderation-log entry.
type ReconcileConfig struct {
	GraceInterval   time.Duration // waited before the first cache lookup
	RecheckAttempts int           // extra lookups before falling back to Voluntary
	RecheckInterval time.Duration
}

func (c ReconcileConfig) withDefaults() ReconcileConfig {
	if c.GraceInterval < 0 {
		c.GraceInterval = 0
	}
	if c.RecheckAttempts < 0 {
		c.RecheckAttempts = 0
	}
	if c.RecheckInterval <= 0 {
		c.RecheckInterval = DefaultRecheckInterval
	}
	return c
}

// DefaultReconcileConfig returns the production timing.
func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		GraceInterval:   DefaultGraceInterval,
		RecheckAttempts: DefaultRecheckAttempts,
		RecheckInterval: DefaultRecheckInterval,
	}
}

// EngineStats counts what the engine observed since startup.
type EngineStats struct {
	Joined            uint64 `json:"joined"`
	Voluntary         uint64 `json:"voluntary"`
	Kicked            uint64 `json:"kicked"`
	Banned            uint64 `json:"banned"`
	ModerationEntries uint64 `json:"moderationEntries"`
	DroppedEntries    uint64 `json:"droppedEntries"`
	LookupFailures    uint64 `json:"lookupFailures"`
	DeliveryFailures  uint64 `json:"deliveryFailures"`
}

// ReconciliationEngine classifies departures by correlating removal notifications
// with moderation-log entries through per-guild marker caches.
type ReconciliationEngine struct {
	registry   *CacheRegistry
	resolver   UserResolver
	dispatcher NotificationDispatcher
	history    repositories.DepartureHistoryRepository
	cfg        ReconcileConfig
	log        waLog.Logger

	joined, voluntary, kicked, banned atomic.Uint64
	entries, dropped                  atomic.Uint64
	lookupFailures, deliveryFailures  atomic.Uint64
}

// NewReconciliationEngine wires the engine. resolver and history may be nil.
func NewReconciliationEngine(registry *CacheRegistry, resolver UserResolver, dispatcher NotificationDispatcher, history repositories.DepartureHistoryRepository, cfg ReconcileConfig, log waLog.Logger) *ReconciliationEngine {
	if registry == nil {
		registry = NewCacheRegistry()
	}
	if log == nil {
		log = waLog.Noop
	}
	return &ReconciliationEngine{
		registry:   registry,
		resolver:   resolver,
		dispatcher: dispatcher,
		history:    history,
		cfg:        cfg.withDefaults(),
		log:        log,
	}
}

// Registry exposes the marker caches for diagnostics.
func (e *ReconciliationEngine) Registry() *CacheRegistry {
	return e.registry
}

func (e *ReconciliationEngine) Stats() EngineStats {
	return EngineStats{
		Joined:            e.joined.Load(),
		Voluntary:         e.voluntary.Load(),
		Kicked:            e.kicked.Load(),
		Banned:            e.banned.Load(),
		ModerationEntries: e.entries.Load(),
		DroppedEntries:    e.dropped.Load(),
		LookupFailures:    e.lookupFailures.Load(),
		DeliveryFailures:  e.deliveryFailures.Load(),
	}
}

// HandleMemberAdded posts a join notice. Joins carry no correlation.
func (e *ReconciliationEngine) HandleMemberAdded(ctx context.Context, guild membership.GuildID, user membership.UserProfile) error {
	e.joined.Add(1)
	user = e.resolveProfile(ctx, user)
	e.record(ctx, guild, user, membership.ActionJoined, "", 0, time.Time{})
	return e.dispatch(ctx, joinNotification(guild, user))
}

// HandleMemberRemoved waits for the grace interval, classifies the departure from the
// guild's markers and posts the matching membership notice.
func (e *ReconciliationEngine) HandleMemberRemoved(ctx context.Context, evt membership.DepartureEvent) (membership.DepartureCause, error) {
	cache := e.registry.GetOrCreate(evt.GuildID)
	cause := e.classify(ctx, cache, evt.User.ID)

	switch cause {
	case membership.CauseKicked:
		e.kicked.Add(1)
	case membership.CauseBanned:
		e.banned.Add(1)
	default:
		e.voluntary.Add(1)
	}
	e.log.Infof("departure guild=%s user=%s cause=%s", evt.GuildID, evt.User.ID, cause)

	user := e.resolveProfile(ctx, evt.User)
	e.record(ctx, evt.GuildID, user, membership.DepartureAction(cause), "", 0, evt.ReceivedAt)
	return cause, e.dispatch(ctx, departureNotification(evt.GuildID, user, cause))
}

func (e *ReconciliationEngine) classify(ctx context.Context, cache *GuildCache, user membership.UserID) membership.DepartureCause {
	wait(ctx, e.cfg.GraceInterval)
	for attempt := 0; ; attempt++ {
		if cache.ConsumeIfKicked(user) {
			return membership.CauseKicked
		}
		if cache.ConsumeIfBanned(user) {
			return membership.CauseBanned
		}
		if attempt >= e.cfg.RecheckAttempts {
			return membership.CauseVoluntary
		}
		wait(ctx, e.cfg.RecheckInterval)
	}
}

// HandleModerationEntry records markers for bans and kicks and posts the transparency notice.
func (e *ReconciliationEngine) HandleModerationEntry(ctx context.Context, guild membership.GuildID, entry membership.ModerationEntry) error {
	switch entry.Kind {
	case membership.ModerationBanAdd, membership.ModerationBanRemove, membership.ModerationKick:
		e.entries.Add(1)
		if !entry.HasTarget() {
			e.dropped.Add(1)
			e.log.Warnf("moderation entry dropped guild=%s kind=%s: no target", guild, entry.Kind)
			return fmt.Errorf("%s entry in guild %s: %w", entry.Kind, guild, ErrMissingTarget)
		}
	case membership.ModerationPrune:
		e.entries.Add(1)
		return e.handlePrune(ctx, guild, entry)
	default:
		return nil
	}

	cache := e.registry.GetOrCreate(guild)
	var n membership.Notification
	switch entry.Kind {
	case membership.ModerationBanAdd:
		cache.MarkPendingBan(entry.TargetID)
		user := e.resolveProfile(ctx, membership.Minimal(entry.TargetID))
		e.record(ctx, guild, user, membership.ActionBanLogged, entry.Reason, 0, time.Time{})
		n = banNotification(guild, user, entry.Reason)
	case membership.ModerationBanRemove:
		if cache.ClearPendingBan(entry.TargetID) {
			e.log.Debugf("cleared stale ban marker guild=%s user=%s", guild, entry.TargetID)
		}
		user := e.resolveProfile(ctx, membership.Minimal(entry.TargetID))
		e.record(ctx, guild, user, membership.ActionUnbanned, entry.Reason, 0, time.Time{})
		n = unbanNotification(guild, user, entry.Reason)
	case membership.ModerationKick:
		cache.MarkPendingKick(entry.TargetID)
		user := e.resolveProfile(ctx, membership.Minimal(entry.TargetID))
		e.record(ctx, guild, user, membership.ActionKickLogged, entry.Reason, 0, time.Time{})
		n = kickNotification(guild, user, entry.Reason)
	}
	return e.dispatch(ctx, n)
}

func (e *ReconciliationEngine) handlePrune(ctx context.Context, guild membership.GuildID, entry membership.ModerationEntry) error {
	if entry.PrunedCount == nil || *entry.PrunedCount <= 0 {
		return nil
	}
	count := *entry.PrunedCount
	e.record(ctx, guild, membership.UserProfile{}, membership.ActionPruned, entry.Reason, count, time.Time{})
	return e.dispatch(ctx, pruneNotification(guild, count))
}

// resolveProfile fills in display data for snapshots that only carry an identity.
// Lookup failures degrade to the snapshot instead of failing the event.
func (e *ReconciliationEngine) resolveProfile(ctx context.Context, snapshot membership.UserProfile) membership.UserProfile {
	if e.resolver == nil || !snapshot.Incomplete() || snapshot.ID == "" {
		return snapshot
	}
	profile, err := e.resolver.ResolveUser(ctx, snapshot.ID)
	if err != nil {
		e.lookupFailures.Add(1)
		e.log.Warnf("user lookup failed user=%s: %v", snapshot.ID, err)
		return snapshot
	}
	return snapshot.Merge(profile)
}

func (e *ReconciliationEngine) dispatch(ctx context.Context, n membership.Notification) error {
	if e.dispatcher == nil {
		return nil
	}
	if err := e.dispatcher.Dispatch(ctx, n); err != nil {
		e.deliveryFailures.Add(1)
		return err
	}
	return nil
}

// record appends a history entry. A zero at is stamped with the append time.
func (e *ReconciliationEngine) record(ctx context.Context, guild membership.GuildID, user membership.UserProfile, action, reason string, count int, at time.Time) {
	if e.history == nil {
		return
	}
	rec := membership.Record{
		GuildID:    guild,
		UserID:     user.ID,
		UserName:   user.Name(),
		Action:     action,
		Reason:     reason,
		Count:      count,
		OccurredAt: at,
	}
	if err := e.history.Append(ctx, rec); err != nil {
		e.log.Warnf("history append failed guild=%s action=%s: %v", guild, action, err)
	}
}

// wait sleeps for d or until ctx is done, whichever comes first.
func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
