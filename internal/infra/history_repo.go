package infra

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/videodl/internal/models"
	"github.com/Vovarama1992/videodl/internal/ports"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresHistoryRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresHistoryRepo(pool *pgxpool.Pool) ports.HistoryRepository {
	return &PostgresHistoryRepo{pool: pool}
}

const historySchema = `
	CREATE TABLE IF NOT EXISTS download_log (
		id          UUID PRIMARY KEY,
		source_url  TEXT NOT NULL,
		platform    TEXT NOT NULL,
		strategy    TEXT NOT NULL DEFAULT '',
		success     BOOLEAN NOT NULL,
		video_url   TEXT NOT NULL DEFAULT '',
		error       TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS download_log_created_at_idx ON download_log (created_at DESC);
`

// EnsureSchema creates the download_log table when it does not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, historySchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresHistoryRepo) InsertEntry(ctx context.Context, e *models.HistoryEntry) error {
	query := `
		INSERT INTO download_log (id, source_url, platform, strategy, success, video_url, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	row := r.pool.QueryRow(ctx, query,
		e.ID,
		e.SourceURL,
		string(e.Platform),
		e.Strategy,
		e.Success,
		e.VideoURL,
		trim(e.Error, 1000),
	)
	if err := row.Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (r *PostgresHistoryRepo) RecentEntries(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, source_url, platform, strategy, success, video_url, error, created_at
		FROM download_log
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := make([]models.HistoryEntry, 0, limit)
	for rows.Next() {
		var (
			e        models.HistoryEntry
			platform string
		)
		if err := rows.Scan(
			&e.ID,
			&e.SourceURL,
			&platform,
			&e.Strategy,
			&e.Success,
			&e.VideoURL,
			&e.Error,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Platform = models.Platform(platform)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
