package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"review-pulse/internal/domain/entity"
	"review-pulse/internal/repository"
)

type StatRepo struct{ db *sql.DB }

func NewStatRepo(db *sql.DB) repository.StatRepository {
	return &StatRepo{db: db}
}

// FindFresh evaluates freshness in SQL: the row only comes back when its
// computed_at is within maxAge of now.
func (repo *StatRepo) FindFresh(ctx context.Context, statsType, identifier string, maxAge time.Duration, now time.Time) (*entity.StatRecord, error) {
	const query = `
SELECT id, stats_type, identifier, payload, computed_at, expires_at
FROM product_stats
WHERE stats_type = $1 AND identifier = $2 AND computed_at >= $3
LIMIT 1`
	cutoff := now.Add(-maxAge)
	var record entity.StatRecord
	err := repo.db.QueryRowContext(ctx, query, statsType, identifier, cutoff).Scan(
		&record.ID, &record.StatsType, &record.Identifier,
		&record.Payload, &record.ComputedAt, &record.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindFresh: %w", err)
	}
	return &record, nil
}

func (repo *StatRepo) Upsert(ctx context.Context, record *entity.StatRecord) error {
	const query = `
INSERT INTO product_stats (stats_type, identifier, payload, computed_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (stats_type, identifier) DO UPDATE
SET payload = EXCLUDED.payload,
    computed_at = EXCLUDED.computed_at,
    expires_at = EXCLUDED.expires_at
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		record.StatsType, record.Identifier, record.Payload,
		record.ComputedAt, record.ExpiresAt,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (repo *StatRepo) ListMatching(ctx context.Context, filter repository.StatFilter) ([]repository.StatKey, error) {
	query := `SELECT stats_type, identifier FROM product_stats WHERE 1=1`
	args := make([]interface{}, 0, 2)
	if filter.StatsType != nil {
		args = append(args, *filter.StatsType)
		query += fmt.Sprintf(" AND stats_type = $%d", len(args))
	}
	if filter.Identifier != nil {
		args = append(args, *filter.Identifier)
		query += fmt.Sprintf(" AND identifier = $%d", len(args))
	}
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListMatching: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := make([]repository.StatKey, 0, 8)
	for rows.Next() {
		var key repository.StatKey
		if err := rows.Scan(&key.StatsType, &key.Identifier); err != nil {
			return nil, fmt.Errorf("ListMatching: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (repo *StatRepo) DeleteMatching(ctx context.Context, filter repository.StatFilter) (int64, error) {
	query := `DELETE FROM product_stats WHERE 1=1`
	args := make([]interface{}, 0, 2)
	if filter.StatsType != nil {
		args = append(args, *filter.StatsType)
		query += fmt.Sprintf(" AND stats_type = $%d", len(args))
	}
	if filter.Identifier != nil {
		args = append(args, *filter.Identifier)
		query += fmt.Sprintf(" AND identifier = $%d", len(args))
	}
	result, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("DeleteMatching: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteMatching: RowsAffected: %w", err)
	}
	return affected, nil
}

func (repo *StatRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM product_stats WHERE expires_at < $1`
	result, err := repo.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("DeleteExpired: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteExpired: RowsAffected: %w", err)
	}
	return affected, nil
}

func (repo *StatRepo) DeleteAgedOut(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM product_stats WHERE computed_at < $1`
	result, err := repo.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("DeleteAgedOut: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteAgedOut: RowsAffected: %w", err)
	}
	return affected, nil
}

func (repo *StatRepo) ListDistinctTypes(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT stats_type FROM product_stats ORDER BY stats_type ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListDistinctTypes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	types := make([]string, 0, 8)
	for rows.Next() {
		var statsType string
		if err := rows.Scan(&statsType); err != nil {
			return nil, fmt.Errorf("ListDistinctTypes: %w", err)
		}
		types = append(types, statsType)
	}
	return types, rows.Err()
}
