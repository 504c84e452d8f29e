package sqlite

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

func (repo *StatRepo) FindFresh(ctx context.Context, statsType, identifier string, maxAge time.Duration, now time.Time) (*entity.StatRecord, error) {
	const query = `
SELECT id, stats_type, identifier, payload, computed_at, expires_at
FROM product_stats
WHERE stats_type = ? AND identifier = ? AND computed_at >= ?
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
		return nil, fmt.Errorf("FindFresh: QueryRowContext: %w", err)
	}
	return &record, nil
}

func (repo *StatRepo) Upsert(ctx context.Context, record *entity.StatRecord) error {
	const query = `
INSERT INTO product_stats (stats_type, identifier, payload, computed_at, expires_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (stats_type, identifier) DO UPDATE
SET payload = excluded.payload,
    computed_at = excluded.computed_at,
    expires_at = excluded.expires_at`
	result, err := repo.db.ExecContext(ctx, query,
		record.StatsType, record.Identifier, record.Payload,
		record.ComputedAt, record.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("Upsert: ExecContext: %w", err)
	}
	if record.ID == 0 {
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("Upsert: LastInsertId: %w", err)
		}
		record.ID = id
	}
	return nil
}

func (repo *StatRepo) ListMatching(ctx context.Context, filter repository.StatFilter) ([]repository.StatKey, error) {
	query := `SELECT stats_type, identifier FROM product_stats WHERE 1=1`
	args := make([]interface{}, 0, 2)
	if filter.StatsType != nil {
		query += ` AND stats_type = ?`
		args = append(args, *filter.StatsType)
	}
	if filter.Identifier != nil {
		query += ` AND identifier = ?`
		args = append(args, *filter.Identifier)
	}
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListMatching: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := make([]repository.StatKey, 0, 8)
	for rows.Next() {
		var key repository.StatKey
		if err := rows.Scan(&key.StatsType, &key.Identifier); err != nil {
			return nil, fmt.Errorf("ListMatching: Scan: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (repo *StatRepo) DeleteMatching(ctx context.Context, filter repository.StatFilter) (int64, error) {
	query := `DELETE FROM product_stats WHERE 1=1`
	args := make([]interface{}, 0, 2)
	if filter.StatsType != nil {
		query += ` AND stats_type = ?`
		args = append(args, *filter.StatsType)
	}
	if filter.Identifier != nil {
		query += ` AND identifier = ?`
		args = append(args, *filter.Identifier)
	}
	result, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("DeleteMatching: ExecContext: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteMatching: RowsAffected: %w", err)
	}
	return affected, nil
}

func (repo *StatRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM product_stats WHERE expires_at < ?`
	result, err := repo.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("DeleteExpired: ExecContext: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteExpired: RowsAffected: %w", err)
	}
	return affected, nil
}

func (repo *StatRepo) DeleteAgedOut(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM product_stats WHERE computed_at < ?`
	result, err := repo.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("DeleteAgedOut: ExecContext: %w", err)
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
		return nil, fmt.Errorf("ListDistinctTypes: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	types := make([]string, 0, 8)
	for rows.Next() {
		var statsType string
		if err := rows.Scan(&statsType); err != nil {
			return nil, fmt.Errorf("ListDistinctTypes: Scan: %w", err)
		}
		types = append(types, statsType)
	}
	return types, rows.Err()
}
