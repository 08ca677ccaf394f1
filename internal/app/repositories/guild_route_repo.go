package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

// GuildRouteRepository stores the per-guild channel routing.
type GuildRouteRepository interface {
	Get(ctx context.Context, guild membership.GuildID) (membership.GuildRoute, error)
	List(ctx context.Context) ([]membership.GuildRoute, error)
	Upsert(ctx context.Context, route membership.GuildRoute) error
}

type inMemoryGuildRouteRepo struct {
	mu     sync.RWMutex
	routes map[membership.GuildID]membership.GuildRoute
}

// NewInMemoryGuildRouteRepo returns a route repository seeded with the given routes.
func NewInMemoryGuildRouteRepo(seed []membership.GuildRoute) GuildRouteRepository {
	repo := &inMemoryGuildRouteRepo{routes: make(map[membership.GuildID]membership.GuildRoute)}
	for _, route := range seed {
		route = normalizeRoute(route)
		if route.GuildID == "" {
			continue
		}
		repo.routes[route.GuildID] = route
	}
	return repo
}

func (r *inMemoryGuildRouteRepo) Get(ctx context.Context, guild membership.GuildID) (membership.GuildRoute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[guild]
	if !ok {
		return membership.GuildRoute{}, ErrRouteNotFound
	}
	return route, nil
}

func (r *inMemoryGuildRouteRepo) List(ctx context.Context) ([]membership.GuildRoute, error) {
	r.mu.RLock()
	out := make([]membership.GuildRoute, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, route)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out, nil
}

func (r *inMemoryGuildRouteRepo) Upsert(ctx context.Context, route membership.GuildRoute) error {
	route = normalizeRoute(route)
	if route.GuildID == "" {
		return ErrInvalidRoute
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route.GuildID] = route
	return nil
}

func normalizeRoute(route membership.GuildRoute) membership.GuildRoute {
	route.GuildID = membership.GuildID(strings.TrimSpace(string(route.GuildID)))
	route.MembershipChannelID = strings.TrimSpace(route.MembershipChannelID)
	route.TransparencyChannelID = strings.TrimSpace(route.TransparencyChannelID)
	return route
}
