package services

import (
	"sync"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

// CacheRegistry hands out one GuildCache per guild. Caches live for the process lifetime.
type CacheRegistry struct {
	mu     sync.RWMutex
	caches map[membership.GuildID]*GuildCache
}

// CacheStats summarizes the registry for diagnostics.
type CacheStats struct {
	Guilds         int    `json:"guilds"`
	PendingBanned  int    `json:"pendingBanned"`
	PendingKicked  int    `json:"pendingKicked"`
	MarkViolations uint64 `json:"markViolations"`
}

func NewCacheRegistry() *CacheRegistry {
	return &CacheRegistry{caches: make(map[membership.GuildID]*GuildCache)}
}

// GetOrCreate returns the guild's cache, registering an empty one on first access.
func (r *CacheRegistry) GetOrCreate(guild membership.GuildID) *GuildCache {
	r.mu.RLock()
	cache, ok := r.caches[guild]
	r.mu.RUnlock()
	if ok {
		return cache
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cache, ok := r.caches[guild]; ok {
		return cache
	}
	cache = newGuildCache()
	r.caches[guild] = cache
	return cache
}

func (r *CacheRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.caches)
}

// Stats aggregates marker counts across all guilds.
func (r *CacheRegistry) Stats() CacheStats {
	r.mu.RLock()
	caches := make([]*GuildCache, 0, len(r.caches))
	for _, c := range r.caches {
		caches = append(caches, c)
	}
	r.mu.RUnlock()

	stats := CacheStats{Guilds: len(caches)}
	for _, c := range caches {
		banned, kicked := c.Pending()
		stats.PendingBanned += banned
		stats.PendingKicked += kicked
		stats.MarkViolations += c.Violations()
	}
	return stats
}
