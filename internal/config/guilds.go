package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
	yaml "gopkg.in/yaml.v3"
)

var ErrGuildConfigInvalid = errors.New("invalid guild config")

// snowflake keeps ids as their literal text so 64-bit values never pass through a float.
type snowflake string

func (s *snowflake) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: channel id must be a scalar", ErrGuildConfigInvalid, node.Line)
	}
	*s = snowflake(strings.TrimSpace(node.Value))
	return nil
}

// guildEntry accepts both {"transparency", "membership"} and the
// {"transparency_channel", "membership_channel"} spellings.
type guildEntry struct {
	Transparency        snowflake `yaml:"transparency"`
	Membership          snowflake `yaml:"membership"`
	TransparencyChannel snowflake `yaml:"transparency_channel"`
	MembershipChannel   snowflake `yaml:"membership_channel"`
}

func (e guildEntry) route(guild string) membership.GuildRoute {
	route := membership.GuildRoute{
		GuildID:               membership.GuildID(strings.TrimSpace(guild)),
		MembershipChannelID:   string(e.Membership),
		TransparencyChannelID: string(e.Transparency),
	}
	if route.MembershipChannelID == "" {
		route.MembershipChannelID = string(e.MembershipChannel)
	}
	if route.TransparencyChannelID == "" {
		route.TransparencyChannelID = string(e.TransparencyChannel)
	}
	return route
}

// LoadGuildRoutes reads the guild -> channel mapping from a JSON or YAML file.
func LoadGuildRoutes(path string) ([]membership.GuildRoute, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read guild config %s: %w", path, err)
	}
	return ParseGuildRoutes(data)
}

// ParseGuildRoutes decodes either {"<guild>": {...}} or {"guilds": {"<guild>": {...}}}.
func ParseGuildRoutes(data []byte) ([]membership.GuildRoute, error) {
	var root map[string]yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGuildConfigInvalid, err)
	}

	entries := make(map[string]guildEntry)
	if node, ok := root["guilds"]; ok {
		if err := node.Decode(&entries); err != nil {
			return nil, fmt.Errorf("%w: guilds: %v", ErrGuildConfigInvalid, err)
		}
	} else {
		for guild, node := range root {
			var entry guildEntry
			if err := node.Decode(&entry); err != nil {
				return nil, fmt.Errorf("%w: guild %s: %v", ErrGuildConfigInvalid, guild, err)
			}
			entries[guild] = entry
		}
	}

	routes := make([]membership.GuildRoute, 0, len(entries))
	for guild, entry := range entries {
		route := entry.route(guild)
		if route.GuildID == "" {
			continue
		}
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].GuildID < routes[j].GuildID })
	return routes, nil
}
