package services

import (
	"sync"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

// GuildCache holds the pending-cause markers of one guild.
//
// A user has at most one pending cause. Marking the opposite cause while one is
// pending counts as an invariant violation and is resolved in favour of the kick.
type GuildCache struct {
	mu         sync.Mutex
	pending    map[membership.UserID]membership.DepartureCause
	violations uint64
}

func newGuildCache() *GuildCache {
	return &GuildCache{pending: make(map[membership.UserID]membership.DepartureCause)}
}

// MarkPendingBan records that a ban was observed for the user.
func (c *GuildCache) MarkPendingBan(user membership.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.pending[user] {
	case membership.CauseKicked:
		c.violations++
	default:
		c.pending[user] = membership.CauseBanned
	}
}

// MarkPendingKick records that a kick was observed for the user.
func (c *GuildCache) MarkPendingKick(user membership.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[user] == membership.CauseBanned {
		c.violations++
	}
	c.pending[user] = membership.CauseKicked
}

// ConsumeIfBanned removes the user's ban marker and reports whether it was present.
func (c *GuildCache) ConsumeIfBanned(user membership.UserID) bool {
	return c.consume(user, membership.CauseBanned)
}

// ConsumeIfKicked removes the user's kick marker and reports whether it was present.
func (c *GuildCache) ConsumeIfKicked(user membership.UserID) bool {
	return c.consume(user, membership.CauseKicked)
}

// ClearPendingBan drops a stale ban marker, if any.
func (c *GuildCache) ClearPendingBan(user membership.UserID) bool {
	return c.consume(user, membership.CauseBanned)
}

func (c *GuildCache) consume(user membership.UserID, cause membership.DepartureCause) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.pending[user]
	if !ok || current != cause {
		return false
	}
	delete(c.pending, user)
	return true
}

// IsPending reports whether the user currently carries the given marker.
func (c *GuildCache) IsPending(user membership.UserID, cause membership.DepartureCause) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.pending[user]
	return ok && current == cause
}

// Pending returns the number of ban and kick markers waiting for a departure.
func (c *GuildCache) Pending() (banned, kicked int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cause := range c.pending {
		switch cause {
		case membership.CauseBanned:
			banned++
		case membership.CauseKicked:
			kicked++
		}
	}
	return banned, kicked
}

// Violations returns how many conflicting marks were observed.
func (c *GuildCache) Violations() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.violations
}
