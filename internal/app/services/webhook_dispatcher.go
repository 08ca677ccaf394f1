package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/faeln1/go-guild-notifier/internal/app/repositories"
	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// WebhookConfig describes an HTTP endpoint that receives a copy of every notification.
type WebhookConfig struct {
	URL     string
	Roles   []string // empty forwards every role
	Headers map[string]string
}

type webhookDispatcher struct {
	next   NotificationDispatcher
	routes repositories.GuildRouteRepository
	cfg    WebhookConfig
	client *http.Client
	log    waLog.Logger
}

// NewWebhookDispatcher delivers through next and then mirrors the notification to the
// configured webhook. Notifications for guilds without a channel for their role are not
// mirrored. Without a URL it returns next unchanged.
func NewWebhookDispatcher(next NotificationDispatcher, routes repositories.GuildRouteRepository, cfg WebhookConfig, client *http.Client, log waLog.Logger) NotificationDispatcher {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		return next
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = waLog.Noop
	}
	return &webhookDispatcher{next: next, routes: routes, cfg: cfg, client: client, log: log}
}

func (d *webhookDispatcher) Dispatch(ctx context.Context, n membership.Notification) error {
	var primary error
	if d.next != nil {
		primary = d.next.Dispatch(ctx, n)
	}
	if len(d.cfg.Roles) > 0 && !containsRole(d.cfg.Roles, string(n.Role)) {
		d.log.Debugf("webhook skipping guild=%s role=%s: filtered by roles", n.GuildID, n.Role)
		return primary
	}
	if !d.routed(ctx, n) {
		d.log.Debugf("webhook skipping guild=%s role=%s: no channel routed", n.GuildID, n.Role)
		return primary
	}
	if err := d.post(ctx, n); err != nil {
		d.log.Warnf("webhook dispatch failed guild=%s role=%s url=%s err=%v", n.GuildID, n.Role, d.cfg.URL, err)
		return errors.Join(primary, fmt.Errorf("%w: webhook: %w", ErrDeliveryFailed, err))
	}
	return primary
}

func (d *webhookDispatcher) routed(ctx context.Context, n membership.Notification) bool {
	if d.routes == nil {
		return true
	}
	route, err := d.routes.Get(ctx, n.GuildID)
	if err != nil {
		return false
	}
	return route.ChannelFor(n.Role) != ""
}

func (d *webhookDispatcher) post(ctx context.Context, n membership.Notification) error {
	buf, err := json.Marshal(map[string]any{
		"event":     "notification." + string(n.Role),
		"guild":     n.GuildID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"data":      n,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range d.cfg.Headers {
		req.Header.Set(k, v)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	d.log.Debugf("webhook dispatch success guild=%s role=%s status=%d", n.GuildID, n.Role, resp.StatusCode)
	return nil
}

func containsRole(list []string, target string) bool {
	canonicalTarget := canonicalName(target)
	if canonicalTarget == "" {
		return false
	}
	for _, item := range list {
		if c := canonicalName(item); c == canonicalTarget || c == "all" {
			return true
		}
	}
	return false
}

func canonicalName(value string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
}
