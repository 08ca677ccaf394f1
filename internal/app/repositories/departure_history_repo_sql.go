package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
)

// SQL dialects supported by the history repository.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

type sqlDepartureHistoryRepo struct {
	db      *sql.DB
	dialect string
}

// NewSQLDepartureHistoryRepo builds a history repository on PostgreSQL (lib/pq) or SQLite (modernc).
func NewSQLDepartureHistoryRepo(db *sql.DB, dialect string) (DepartureHistoryRepository, error) {
	dialect = strings.ToLower(strings.TrimSpace(dialect))
	if dialect != DialectPostgres && dialect != DialectSQLite {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSQL, dialect)
	}
	repo := &sqlDepartureHistoryRepo{db: db, dialect: dialect}
	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *sqlDepartureHistoryRepo) ensureSchema() error {
	const createTable = `
        CREATE TABLE IF NOT EXISTS guild_history (
            id TEXT PRIMARY KEY,
            guild_id TEXT NOT NULL,
            user_id TEXT NOT NULL DEFAULT '',
            user_name TEXT NOT NULL DEFAULT '',
            action TEXT NOT NULL,
            reason TEXT NOT NULL DEFAULT '',
            affected_count INTEGER NOT NULL DEFAULT 0,
            occurred_at BIGINT NOT NULL
        )`
	if _, err := r.db.Exec(createTable); err != nil {
		return fmt.Errorf("create guild_history: %w", err)
	}
	if _, err := r.db.Exec(`CREATE INDEX IF NOT EXISTS idx_guild_history_guild ON guild_history (guild_id, occurred_at)`); err != nil {
		return fmt.Errorf("index guild_history: %w", err)
	}
	return nil
}

func (r *sqlDepartureHistoryRepo) Append(ctx context.Context, rec membership.Record) error {
	rec, err := normalizeRecord(rec)
	if err != nil {
		return err
	}
	query := r.rebind(`
        INSERT INTO guild_history (id, guild_id, user_id, user_name, action, reason, affected_count, occurred_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		string(rec.GuildID),
		string(rec.UserID),
		rec.UserName,
		rec.Action,
		rec.Reason,
		rec.Count,
		rec.OccurredAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert history %s: %w", rec.ID, err)
	}
	return nil
}

func (r *sqlDepartureHistoryRepo) ListByGuild(ctx context.Context, guild membership.GuildID, limit int) ([]membership.Record, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	query := r.rebind(`
        SELECT id, guild_id, user_id, user_name, action, reason, affected_count, occurred_at
        FROM guild_history
        WHERE guild_id = ?
        ORDER BY occurred_at DESC
        LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, query, string(guild), limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var results []membership.Record
	for rows.Next() {
		var (
			rec      membership.Record
			guildID  string
			userID   string
			occurred int64
		)
		if err := rows.Scan(&rec.ID, &guildID, &userID, &rec.UserName, &rec.Action, &rec.Reason, &rec.Count, &occurred); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.GuildID = membership.GuildID(guildID)
		rec.UserID = membership.UserID(userID)
		rec.OccurredAt = time.UnixMilli(occurred).UTC()
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// rebind rewrites "?" placeholders into "$n" for PostgreSQL.
func (r *sqlDepartureHistoryRepo) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
