package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

func TestParseGuildRoutes(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []membership.GuildRoute
	}{
		{
			name: "flat json",
			data: `{"200": {"transparency": 900000000000000001, "membership": "900000000000000002"}, "100": {"membership": "5"}}`,
			want: []membership.GuildRoute{
				{GuildID: "100", MembershipChannelID: "5"},
				{GuildID: "200", MembershipChannelID: "900000000000000002", TransparencyChannelID: "900000000000000001"},
			},
		},
		{
			name: "nested json with channel suffix",
			data: `{"guilds": {"300": {"transparency_channel": "31", "membership_channel": "32"}}}`,
			want: []membership.GuildRoute{{GuildID: "300", MembershipChannelID: "32", TransparencyChannelID: "31"}},
		},
		{
			name: "yaml",
			data: "guilds:\n  \"400\":\n    transparency: 41\n    membership: 42\n",
			want: []membership.GuildRoute{{GuildID: "400", MembershipChannelID: "42", TransparencyChannelID: "41"}},
		},
		{
			name: "empty",
			data: `{}`,
			want: []membership.GuildRoute{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGuildRoutes([]byte(tt.data))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d routes, got %+v", len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("route %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestParseGuildRoutesRejectsMalformed(t *testing.T) {
	for _, data := range []string{
		`{"100": {"membership": ["a", "b"]}}`,
		`{"100": "not an object"}`,
		`{not json`,
	} {
		if _, err := ParseGuildRoutes([]byte(data)); !errors.Is(err, ErrGuildConfigInvalid) {
			t.Fatalf("expected ErrGuildConfigInvalid for %s, got %v", data, err)
		}
	}
}

func TestLoadGuildRoutesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"1": {"membership": "2"}}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	routes, err := LoadGuildRoutes(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(routes) != 1 || routes[0].MembershipChannelID != "2" {
		t.Fatalf("unexpected routes %+v", routes)
	}

	if _, err := LoadGuildRoutes(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}
