package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// Intents the bot needs: guild metadata, member add/remove and audit log entries.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentGuildModeration

// DefaultStatusText is the "Watching ..." activity shown on the bot's profile.
const DefaultStatusText = "for rule violations!"

// ErrUserNotFound is returned by ResolveUser when Discord doesn't know the id.
var ErrUserNotFound = errors.New("discord user not found")

// Client owns the gateway session.
type Client struct {
	mu         sync.RWMutex
	session    *discordgo.Session
	open       bool
	statusText string
	log        waLog.Logger
}

// NewClient creates a session for the bot token. The connection is opened by Open.
func NewClient(token, statusText string, log waLog.Logger) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}
	session, err := discordgo.New(token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = Intents
	if strings.TrimSpace(statusText) == "" {
		statusText = DefaultStatusText
	}
	if log == nil {
		log = waLog.Noop
	}
	c := &Client{session: session, statusText: statusText, log: log}
	session.AddHandler(c.onReady)
	session.AddHandler(c.onDisconnect)
	return c, nil
}

// Session exposes the underlying session so listeners can register handlers.
func (c *Client) Session() *discordgo.Session {
	return c.session
}

func (c *Client) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return nil
	}
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	c.open = true
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil
	}
	c.open = false
	return c.session.Close()
}

// Connected reports whether Open succeeded and Close hasn't been called.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open
}

func (c *Client) onReady(s *discordgo.Session, r *discordgo.Ready) {
	name := ""
	if r.User != nil {
		name = r.User.Username
	}
	c.log.Infof("(re)connected to the Discord gateway as %s, %d guild(s)", name, len(r.Guilds))
	err := s.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: string(discordgo.StatusDoNotDisturb),
		Activities: []*discordgo.Activity{{
			Name: c.statusText,
			Type: discordgo.ActivityTypeWatching,
		}},
	})
	if err != nil {
		c.log.Warnf("failed to update presence: %v", err)
	}
}

func (c *Client) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	c.log.Warnf("disconnected from the Discord gateway")
}

// SendEmbed posts the notification as an embed into channelID.
func (c *Client) SendEmbed(ctx context.Context, channelID string, n membership.Notification) error {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return ErrEmptyChannel
	}
	if !c.Connected() {
		return ErrNotConnected
	}
	if _, err := c.session.ChannelMessageSendEmbed(channelID, ToEmbed(n), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send embed to %s: %w", channelID, err)
	}
	return nil
}

// ResolveUser fetches a user's display data by id.
func (c *Client) ResolveUser(ctx context.Context, id membership.UserID) (membership.UserProfile, error) {
	user, err := c.session.User(string(id), discordgo.WithContext(ctx))
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return membership.UserProfile{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return membership.UserProfile{}, fmt.Errorf("fetch user %s: %w", id, err)
	}
	return ProfileFromUser(user), nil
}
