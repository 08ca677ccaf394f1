package services

import (
	"context"
	"time"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// UserResolver looks up the display data of a user by identity.
type UserResolver interface {
	ResolveUser(ctx context.Context, id membership.UserID) (membership.UserProfile, error)
}

type cachedUserResolver struct {
	next   UserResolver
	cache  *expirable.LRU[membership.UserID, membership.UserProfile]
	flight singleflight.Group
}

// NewCachedUserResolver fronts next with a bounded LRU whose entries expire after ttl.
// Concurrent misses for the same user share one upstream call.
func NewCachedUserResolver(next UserResolver, size int, ttl time.Duration) UserResolver {
	if size <= 0 {
		size = 1024
	}
	return &cachedUserResolver{
		next:  next,
		cache: expirable.NewLRU[membership.UserID, membership.UserProfile](size, nil, ttl),
	}
}

func (r *cachedUserResolver) ResolveUser(ctx context.Context, id membership.UserID) (membership.UserProfile, error) {
	if profile, ok := r.cache.Get(id); ok {
		return profile, nil
	}
	v, err, _ := r.flight.Do(string(id), func() (interface{}, error) {
		profile, err := r.next.ResolveUser(ctx, id)
		if err != nil {
			return nil, err
		}
		r.cache.Add(id, profile)
		return profile, nil
	})
	if err != nil {
		return membership.UserProfile{}, err
	}
	return v.(membership.UserProfile), nil
}
