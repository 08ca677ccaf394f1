package eventlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/faeln1/go-guild-notifier/pkg/storage"
	"github.com/google/uuid"
	waLog "go.mau.fi/whatsmeow/util/log"
)

var invalidSegment = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Writer archives raw gateway events as JSON files, on disk and/or in object storage.
type Writer struct {
	baseDir string
	store   storage.Service
	log     waLog.Logger
	now     func() time.Time
}

// NewWriter returns nil when neither a directory nor a store is configured.
func NewWriter(baseDir string, store storage.Service, log waLog.Logger) *Writer {
	base := strings.TrimSpace(baseDir)
	if base == "" && store == nil {
		return nil
	}
	if base != "" {
		base = filepath.Clean(base)
	}
	if log == nil {
		log = waLog.Noop
	}
	return &Writer{baseDir: base, store: store, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Enabled reports whether archiving is active.
func (w *Writer) Enabled() bool {
	return w != nil && (w.baseDir != "" || w.store != nil)
}

// Write stores evt under <type>/<guild>/<timestamp>-<uuid>.json.
func (w *Writer) Write(ctx context.Context, guild string, evt any) error {
	if !w.Enabled() || evt == nil {
		return nil
	}

	eventType := detectEventType(evt)
	segmentType := sanitizeSegment(eventType)
	segmentGuild := sanitizeSegment(guild)

	ts := w.now()
	fileName := fmt.Sprintf("%s-%s.json", ts.Format("20060102T150405Z"), uuid.NewString())

	data, err := json.MarshalIndent(map[string]any{
		"event_type":  eventType,
		"guild":       guild,
		"received_at": ts.Format(time.RFC3339Nano),
		"payload":     evt,
	}, "", "  ")
	if err != nil {
		data, err = json.MarshalIndent(map[string]any{
			"event_type":    eventType,
			"guild":         guild,
			"received_at":   ts.Format(time.RFC3339Nano),
			"marshal_error": err.Error(),
			"payload_text":  fmt.Sprintf("%+v", evt),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal fallback: %w", err)
		}
	}

	if w.baseDir != "" {
		dir := filepath.Join(w.baseDir, segmentType, segmentGuild)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
		target := filepath.Join(dir, fileName)
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
	}

	if w.store != nil {
		key := path.Join("events", segmentType, segmentGuild, fileName)
		_, err := w.store.PutObject(ctx, storage.UploadInput{
			Key:         key,
			ContentType: "application/json",
			Body:        bytes.NewReader(data),
			Size:        int64(len(data)),
			Metadata:    map[string]string{"event-type": eventType, "guild": guild},
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
	}
	return nil
}

func detectEventType(evt any) string {
	t := strings.TrimPrefix(fmt.Sprintf("%T", evt), "*")
	if idx := strings.LastIndex(t, "."); idx >= 0 && idx < len(t)-1 {
		return t[idx+1:]
	}
	if t == "" {
		return "Unknown"
	}
	return t
}

func sanitizeSegment(raw string) string {
	sanitized := invalidSegment.ReplaceAllString(strings.TrimSpace(raw), "_")
	sanitized = strings.Trim(sanitized, "._-")
	if sanitized == "" {
		return "unknown"
	}
	return sanitized
}
