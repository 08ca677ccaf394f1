package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
	"github.com/google/uuid"
)

// DefaultHistoryLimit bounds ListByGuild when no limit is given.
const DefaultHistoryLimit = 50

// DepartureHistoryRepository persists the notices emitted for each guild.
type DepartureHistoryRepository interface {
	Append(ctx context.Context, rec membership.Record) error
	ListByGuild(ctx context.Context, guild membership.GuildID, limit int) ([]membership.Record, error)
}

type memoryDepartureHistoryRepo struct {
	mu       sync.RWMutex
	items    map[membership.GuildID][]membership.Record
	capacity int
}

// NewInMemoryDepartureHistoryRepo keeps at most capacity records per guild; zero means unbounded.
func NewInMemoryDepartureHistoryRepo(capacity int) DepartureHistoryRepository {
	return &memoryDepartureHistoryRepo{items: make(map[membership.GuildID][]membership.Record), capacity: capacity}
}

func (r *memoryDepartureHistoryRepo) Append(ctx context.Context, rec membership.Record) error {
	_ = ctx
	rec, err := normalizeRecord(rec)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	bucket := append(r.items[rec.GuildID], rec)
	if r.capacity > 0 && len(bucket) > r.capacity {
		bucket = append([]membership.Record(nil), bucket[len(bucket)-r.capacity:]...)
	}
	r.items[rec.GuildID] = bucket
	return nil
}

func (r *memoryDepartureHistoryRepo) ListByGuild(ctx context.Context, guild membership.GuildID, limit int) ([]membership.Record, error) {
	_ = ctx
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	r.mu.RLock()
	bucket := append([]membership.Record(nil), r.items[guild]...)
	r.mu.RUnlock()

	sort.SliceStable(bucket, func(i, j int) bool {
		return bucket[i].OccurredAt.After(bucket[j].OccurredAt)
	})
	if len(bucket) > limit {
		bucket = bucket[:limit]
	}
	return bucket, nil
}

func normalizeRecord(rec membership.Record) (membership.Record, error) {
	rec.GuildID = membership.GuildID(strings.TrimSpace(string(rec.GuildID)))
	if rec.GuildID == "" {
		return rec, ErrInvalidRecord
	}
	if strings.TrimSpace(rec.Action) == "" {
		return rec, ErrInvalidRecord
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = timeNow()
	}
	rec.OccurredAt = rec.OccurredAt.UTC()
	return rec, nil
}
