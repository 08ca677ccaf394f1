package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

func TestCachedUserResolverHitsUpstreamOnce(t *testing.T) {
	upstream := &fakeResolver{profiles: map[membership.UserID]membership.UserProfile{
		"u1": {ID: "u1", Username: "alice"},
	}}
	resolver := NewCachedUserResolver(upstream, 8, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		profile, err := resolver.ResolveUser(ctx, "u1")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if profile.Username != "alice" {
			t.Fatalf("unexpected profile %+v", profile)
		}
	}
	if upstream.Calls() != 1 {
		t.Fatalf("expected a single upstream call, got %d", upstream.Calls())
	}
}

func TestCachedUserResolverDoesNotCacheFailures(t *testing.T) {
	upstream := &fakeResolver{profiles: map[membership.UserID]membership.UserProfile{}}
	resolver := NewCachedUserResolver(upstream, 8, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := resolver.ResolveUser(context.Background(), "missing"); !errors.Is(err, errFakeLookup) {
			t.Fatalf("expected lookup error, got %v", err)
		}
	}
	if upstream.Calls() != 2 {
		t.Fatalf("failed lookups must be retried, got %d calls", upstream.Calls())
	}
}

type blockingResolver struct {
	fakeResolver
	release chan struct{}
}

func (r *blockingResolver) ResolveUser(ctx context.Context, id membership.UserID) (membership.UserProfile, error) {
	<-r.release
	return r.fakeResolver.ResolveUser(ctx, id)
}

func TestCachedUserResolverCoalescesConcurrentMisses(t *testing.T) {
	upstream := &blockingResolver{
		fakeResolver: fakeResolver{profiles: map[membership.UserID]membership.UserProfile{"u1": {ID: "u1", Username: "alice"}}},
		release:      make(chan struct{}),
	}
	resolver := NewCachedUserResolver(upstream, 8, time.Minute)

	const callers = 8
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			_, err := resolver.ResolveUser(context.Background(), "u1")
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(upstream.release)

	for i := 0; i < callers; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	if upstream.Calls() > 2 {
		t.Fatalf("expected concurrent misses to share upstream calls, got %d", upstream.Calls())
	}
}
