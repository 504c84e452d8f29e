package sqlite_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"review-pulse/internal/domain/entity"
	"review-pulse/internal/infra/adapter/persistence/sqlite"
	"review-pulse/internal/repository"
)

func statRow(r *entity.StatRecord) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "stats_type", "identifier", "payload", "computed_at", "expires_at",
	}).AddRow(r.ID, r.StatsType, r.Identifier, r.Payload, r.ComputedAt, r.ExpiresAt)
}

func TestStatRepo_FindFresh(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	want := &entity.StatRecord{
		ID: 3, StatsType: "rating_summary", Identifier: "42",
		Payload:    []byte(`{"total":10}`),
		ComputedAt: now.Add(-time.Hour),
		ExpiresAt:  now.Add(24 * time.Hour),
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs("rating_summary", "42", now.Add(-6*time.Hour)).
		WillReturnRows(statRow(want))

	repo := sqlite.NewStatRepo(db)
	got, err := repo.FindFresh(context.Background(), "rating_summary", "42", 6*time.Hour, now)
	if err != nil {
		t.Fatalf("FindFresh err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestStatRepo_Upsert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	record := &entity.StatRecord{
		StatsType: "rating_summary", Identifier: "42",
		Payload:    []byte(`{"total":10}`),
		ComputedAt: now,
		ExpiresAt:  now.Add(24 * time.Hour),
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO product_stats`)).
		WithArgs("rating_summary", "42", record.Payload, now, record.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(9, 1))

	repo := sqlite.NewStatRepo(db)
	if err := repo.Upsert(context.Background(), record); err != nil {
		t.Fatalf("Upsert err=%v", err)
	}
	if record.ID != 9 {
		t.Errorf("ID = %d, want 9", record.ID)
	}
}

func TestStatRepo_DeleteExpired(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	cutoff := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM product_stats WHERE expires_at < ?`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	repo := sqlite.NewStatRepo(db)
	deleted, err := repo.DeleteExpired(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteExpired err=%v", err)
	}
	if deleted != 4 {
		t.Errorf("deleted = %d, want 4", deleted)
	}
}

func TestStatRepo_ListMatching_IdentifierOnly(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	identifier := "42"
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT stats_type, identifier FROM product_stats WHERE 1=1 AND identifier = ?`)).
		WithArgs(identifier).
		WillReturnRows(sqlmock.NewRows([]string{"stats_type", "identifier"}).
			AddRow("rating_summary", "42").
			AddRow("sentiment_trend:30:day", "42"))

	repo := sqlite.NewStatRepo(db)
	keys, err := repo.ListMatching(context.Background(), repository.StatFilter{Identifier: &identifier})
	if err != nil {
		t.Fatalf("ListMatching err=%v", err)
	}
	want := []repository.StatKey{
		{StatsType: "rating_summary", Identifier: "42"},
		{StatsType: "sentiment_trend:30:day", Identifier: "42"},
	}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStatRepo_DeleteMatching_IdentifierOnly(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	identifier := "42"
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM product_stats WHERE 1=1 AND identifier = ?`)).
		WithArgs(identifier).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := sqlite.NewStatRepo(db)
	deleted, err := repo.DeleteMatching(context.Background(), repository.StatFilter{Identifier: &identifier})
	if err != nil || deleted != 1 {
		t.Fatalf("DeleteMatching err=%v deleted=%d", err, deleted)
	}
}
