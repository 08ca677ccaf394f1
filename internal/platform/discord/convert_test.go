package discord

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

func TestModerationEntryFromAudit(t *testing.T) {
	action := func(a discordgo.AuditLogAction) *discordgo.AuditLogAction { return &a }

	tests := []struct {
		name      string
		entry     *discordgo.AuditLogEntry
		wantKind  membership.ModerationKind
		wantCount int
		hasCount  bool
	}{
		{name: "nil", entry: nil, wantKind: membership.ModerationUnknown},
		{name: "no action", entry: &discordgo.AuditLogEntry{TargetID: "1"}, wantKind: membership.ModerationUnknown},
		{name: "ban", entry: &discordgo.AuditLogEntry{ActionType: action(discordgo.AuditLogActionMemberBanAdd), TargetID: "1"}, wantKind: membership.ModerationBanAdd},
		{name: "unban", entry: &discordgo.AuditLogEntry{ActionType: action(discordgo.AuditLogActionMemberBanRemove), TargetID: "1"}, wantKind: membership.ModerationBanRemove},
		{name: "kick", entry: &discordgo.AuditLogEntry{ActionType: action(discordgo.AuditLogActionMemberKick), TargetID: "1"}, wantKind: membership.ModerationKick},
		{
			name:      "prune",
			entry:     &discordgo.AuditLogEntry{ActionType: action(discordgo.AuditLogActionMemberPrune), Options: &discordgo.AuditLogOptions{MembersRemoved: "7"}},
			wantKind:  membership.ModerationPrune,
			wantCount: 7,
			hasCount:  true,
		},
		{name: "prune without options", entry: &discordgo.AuditLogEntry{ActionType: action(discordgo.AuditLogActionMemberPrune)}, wantKind: membership.ModerationPrune},
		{name: "untracked", entry: &discordgo.AuditLogEntry{ActionType: action(discordgo.AuditLogActionChannelCreate)}, wantKind: membership.ModerationUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ModerationEntryFromAudit(tt.entry)
			if got.Kind != tt.wantKind {
				t.Fatalf("expected kind %s, got %s", tt.wantKind, got.Kind)
			}
			if tt.hasCount {
				if got.PrunedCount == nil || *got.PrunedCount != tt.wantCount {
					t.Fatalf("expected pruned count %d, got %v", tt.wantCount, got.PrunedCount)
				}
			} else if got.PrunedCount != nil {
				t.Fatalf("expected no pruned count, got %d", *got.PrunedCount)
			}
		})
	}
}

func TestProfileFromMember(t *testing.T) {
	member := &discordgo.Member{
		Nick: "Nick",
		User: &discordgo.User{ID: "42", Username: "user", GlobalName: "Global", Avatar: "abc"},
	}
	profile := ProfileFromMember(member)
	if profile.ID != "42" || profile.Username != "user" || profile.DisplayName != "Nick" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if !strings.Contains(profile.AvatarURL, "42") {
		t.Fatalf("expected avatar url for the user, got %q", profile.AvatarURL)
	}

	member.Nick = ""
	member.User.Avatar = ""
	profile = ProfileFromMember(member)
	if profile.DisplayName != "Global" || profile.AvatarURL != "" {
		t.Fatalf("expected global name without avatar, got %+v", profile)
	}

	if got := ProfileFromMember(nil); got != (membership.UserProfile{}) {
		t.Fatalf("expected empty profile, got %+v", got)
	}
}

func TestToEmbed(t *testing.T) {
	n := membership.Notification{
		Title: "alice was banned",
		Color: membership.ColorSevere,
		Fields: []membership.Field{
			{Name: "User ID", Value: "1", Inline: true},
			{Name: "Reason", Value: "  "},
		},
		Thumbnail: "https://cdn.example/a.png",
	}
	embed := ToEmbed(n)
	if embed.Title != n.Title || embed.Color != 0x992D22 {
		t.Fatalf("unexpected embed header %+v", embed)
	}
	if len(embed.Fields) != 1 || embed.Fields[0].Name != "User ID" || !embed.Fields[0].Inline {
		t.Fatalf("expected blank fields to be skipped, got %+v", embed.Fields)
	}
	if embed.Thumbnail == nil || embed.Thumbnail.URL != n.Thumbnail {
		t.Fatalf("expected thumbnail, got %+v", embed.Thumbnail)
	}
}

func TestColorValue(t *testing.T) {
	tests := map[membership.ColorTag]int{
		membership.ColorNeutral:   0xE74C3C,
		membership.ColorAlert:     0xE74C3C,
		membership.ColorSevere:    0x992D22,
		membership.ColorWarning:   0xE67E22,
		membership.ColorJoined:    0x1F8B4C,
		membership.ColorPositive:  0x1F8B4C,
		membership.ColorAggregate: 0x9B59B6,
	}
	for tag, want := range tests {
		if got := ColorValue(tag); got != want {
			t.Fatalf("%s: expected %#x, got %#x", tag, want, got)
		}
	}
}

func TestIntentsCoverModerationLog(t *testing.T) {
	for _, want := range []discordgo.Intent{discordgo.IntentsGuilds, discordgo.IntentsGuildMembers, discordgo.IntentGuildModeration} {
		if Intents&want != want {
			t.Fatalf("intent %d missing from %d", want, Intents)
		}
	}
}
