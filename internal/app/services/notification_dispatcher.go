package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/faeln1/go-guild-notifier/internal/app/repositories"
	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
	waLog "go.mau.fi/whatsmeow/util/log"
	"golang.org/x/time/rate"
)

// NotificationDispatcher delivers a formatted notification to its guild channel.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n membership.Notification) error
}

// EmbedSender posts a notification into a concrete channel.
type EmbedSender interface {
	SendEmbed(ctx context.Context, channelID string, n membership.Notification) error
}

type notificationDispatcher struct {
	routes repositories.GuildRouteRepository
	sender EmbedSender
	log    waLog.Logger

	perChannel rate.Limit
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
}

// NewNotificationDispatcher resolves the channel for each notification through routes and sends it with sender.
// perChannel caps sends per second into a single channel; zero or less disables pacing.
func NewNotificationDispatcher(routes repositories.GuildRouteRepository, sender EmbedSender, perChannel float64, log waLog.Logger) NotificationDispatcher {
	if log == nil {
		log = waLog.Noop
	}
	limit := rate.Inf
	if perChannel > 0 {
		limit = rate.Limit(perChannel)
	}
	return &notificationDispatcher{
		routes:     routes,
		sender:     sender,
		log:        log,
		perChannel: limit,
		limiters:   make(map[string]*rate.Limiter),
	}
}

func (d *notificationDispatcher) limiter(channelID string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.limiters[channelID]
	if !ok {
		l = rate.NewLimiter(d.perChannel, 5)
		d.limiters[channelID] = l
	}
	return l
}

func (d *notificationDispatcher) Dispatch(ctx context.Context, n membership.Notification) error {
	if d.routes == nil || d.sender == nil {
		return errors.New("dispatcher not configured")
	}
	route, err := d.routes.Get(ctx, n.GuildID)
	if errors.Is(err, repositories.ErrRouteNotFound) {
		d.log.Debugf("notification skipped guild=%s role=%s: no route configured", n.GuildID, n.Role)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve route for guild %s: %w", n.GuildID, err)
	}

	channelID := route.ChannelFor(n.Role)
	if channelID == "" {
		d.log.Debugf("notification skipped guild=%s role=%s: channel not set", n.GuildID, n.Role)
		return nil
	}

	if d.perChannel != rate.Inf {
		if err := d.limiter(channelID).Wait(ctx); err != nil {
			return fmt.Errorf("%w: guild=%s channel=%s: %w", ErrDeliveryFailed, n.GuildID, channelID, err)
		}
	}

	d.log.Debugf("dispatch start guild=%s role=%s channel=%s title=%q", n.GuildID, n.Role, channelID, n.Title)
	if err := d.sender.SendEmbed(ctx, channelID, n); err != nil {
		d.log.Warnf("dispatch failed guild=%s role=%s channel=%s err=%v", n.GuildID, n.Role, channelID, err)
		return fmt.Errorf("%w: guild=%s channel=%s: %w", ErrDeliveryFailed, n.GuildID, channelID, err)
	}
	return nil
}
