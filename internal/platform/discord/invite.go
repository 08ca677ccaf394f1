package discord

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	qrcode "github.com/skip2/go-qrcode"
)

// InvitePermissions are the channel permissions the bot needs to read the audit log and post embeds.
const InvitePermissions = discordgo.PermissionViewAuditLogs |
	discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionEmbedLinks

// InviteURL builds the OAuth2 URL that adds the bot to a guild.
func InviteURL(applicationID string) (string, error) {
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return "", ErrMissingAppID
	}
	q := url.Values{}
	q.Set("client_id", applicationID)
	q.Set("scope", "bot")
	q.Set("permissions", strconv.FormatInt(InvitePermissions, 10))
	u := url.URL{Scheme: "https", Host: "discord.com", Path: "/oauth2/authorize", RawQuery: q.Encode()}
	return u.String(), nil
}

// RenderQRASCII renders content as a compact half-block QR code for terminals.
func RenderQRASCII(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("generate qr: %w", err)
	}
	qr.DisableBorder = true
	bmp := qr.Bitmap()
	if len(bmp)%2 == 1 {
		width := 0
		if len(bmp) > 0 {
			width = len(bmp[0])
		}
		bmp = append(bmp, make([]bool, width))
	}

	var out strings.Builder
	for y := 0; y < len(bmp); y += 2 {
		top, bottom := bmp[y], bmp[y+1]
		for x := range top {
			switch {
			case top[x] && bottom[x]:
				out.WriteRune('█')
			case top[x]:
				out.WriteRune('▀')
			case bottom[x]:
				out.WriteRune('▄')
			default:
				out.WriteRune(' ')
			}
		}
		out.WriteByte('\n')
	}
	return out.String(), nil
}

// PrintInviteQR prints the invite URL and its QR code.
func PrintInviteQR(applicationID string) error {
	link, err := InviteURL(applicationID)
	if err != nil {
		return err
	}
	art, err := RenderQRASCII(link)
	if err != nil {
		return err
	}
	fmt.Printf("\n[invite] %s\n\n%s\n", link, art)
	return nil
}
