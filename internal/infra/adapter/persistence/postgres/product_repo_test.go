package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"review-pulse/internal/domain/entity"
	"review-pulse/internal/infra/adapter/persistence/postgres"
)

func productRow(p *entity.Product) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "url", "created_at"}).
		AddRow(p.ID, p.Name, p.URL, p.CreatedAt)
}

func TestProductRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := &entity.Product{
		ID: 1, Name: "Wireless Earbuds", URL: "https://shop.example.com/earbuds/reviews",
		CreatedAt: time.Now(),
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(int64(1)).
		WillReturnRows(productRow(want))

	repo := postgres.NewProductRepo(db)
	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestProductRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "created_at"}))

	repo := postgres.NewProductRepo(db)
	got, err := repo.Get(context.Background(), 99)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing product, got %+v", got)
	}
}

func TestProductRepo_List(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(`FROM products`).
		WillReturnRows(productRow(&entity.Product{
			ID: 1, Name: "Standing Desk", URL: "https://shop.example.com/desk/reviews",
			CreatedAt: now,
		}))

	repo := postgres.NewProductRepo(db)
	got, err := repo.List(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("List err=%v len=%d", err, len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestProductRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO products`)).
		WithArgs("Standing Desk", "https://shop.example.com/desk/reviews").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	repo := postgres.NewProductRepo(db)
	product := &entity.Product{Name: "Standing Desk", URL: "https://shop.example.com/desk/reviews"}
	if err := repo.Create(context.Background(), product); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if product.ID != 7 {
		t.Errorf("ID = %d, want 7", product.ID)
	}
}

func TestProductRepo_Delete_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products`)).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewProductRepo(db)
	err := repo.Delete(context.Background(), 99)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductRepo_ExistsByURL(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("https://shop.example.com/desk/reviews").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := postgres.NewProductRepo(db)
	exists, err := repo.ExistsByURL(context.Background(), "https://shop.example.com/desk/reviews")
	if err != nil {
		t.Fatalf("ExistsByURL err=%v", err)
	}
	if !exists {
		t.Error("expected exists=true")
	}
}
