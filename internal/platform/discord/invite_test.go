package discord

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

func TestInviteURL(t *testing.T) {
	link, err := InviteURL(" 1234 ")
	if err != nil {
		t.Fatalf("invite url: %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("client_id") != "1234" || q.Get("scope") != "bot" {
		t.Fatalf("unexpected query %v", q)
	}
	if q.Get("permissions") != strconv.FormatInt(InvitePermissions, 10) {
		t.Fatalf("unexpected permissions %q", q.Get("permissions"))
	}

	if _, err := InviteURL(""); !errors.Is(err, ErrMissingAppID) {
		t.Fatalf("expected ErrMissingAppID, got %v", err)
	}
}

func TestRenderQRASCII(t *testing.T) {
	art, err := RenderQRASCII("https://discord.com/oauth2/authorize?client_id=1")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) < 10 {
		t.Fatalf("expected a multi-line qr code, got %d lines", len(lines))
	}
	width := len([]rune(lines[0]))
	for i, line := range lines {
		if len([]rune(line)) != width {
			t.Fatalf("line %d has width %d, expected %d", i, len([]rune(line)), width)
		}
	}
}
