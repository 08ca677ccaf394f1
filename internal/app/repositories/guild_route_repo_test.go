package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

func TestInMemoryGuildRouteRepo(t *testing.T) {
	repo := NewInMemoryGuildRouteRepo([]membership.GuildRoute{
		{GuildID: " 2 ", MembershipChannelID: " 20 "},
		{GuildID: "1", MembershipChannelID: "10", TransparencyChannelID: "11"},
		{MembershipChannelID: "orphan"},
	})
	ctx := context.Background()

	route, err := repo.Get(ctx, "2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if route.MembershipChannelID != "20" {
		t.Fatalf("expected trimmed channel id, got %q", route.MembershipChannelID)
	}

	if _, err := repo.Get(ctx, "3"); !errors.Is(err, ErrRouteNotFound) {
		t.Fatalf("expected ErrRouteNotFound, got %v", err)
	}

	routes, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(routes) != 2 || routes[0].GuildID != "1" || routes[1].GuildID != "2" {
		t.Fatalf("expected sorted routes without the orphan, got %+v", routes)
	}

	if err := repo.Upsert(ctx, membership.GuildRoute{GuildID: "2", TransparencyChannelID: "21"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	route, _ = repo.Get(ctx, "2")
	if route.MembershipChannelID != "" || route.TransparencyChannelID != "21" {
		t.Fatalf("upsert must replace the whole route, got %+v", route)
	}

	if err := repo.Upsert(ctx, membership.GuildRoute{}); !errors.Is(err, ErrInvalidRoute) {
		t.Fatalf("expected ErrInvalidRoute, got %v", err)
	}
}
