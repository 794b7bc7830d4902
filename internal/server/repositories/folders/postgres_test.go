package folders

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mkraev/atelier/internal/common"
	"github.com/mkraev/atelier/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreateIfAbsent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+folders\b.*ON\s+CONFLICT\s*\(slug\)\s*DO\s+NOTHING$`).
		WithArgs("showroom", "Showroom", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateIfAbsent(context.Background(), &models.Folder{Slug: "showroom", Name: "Showroom"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetBySlug_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+slug,\s+name`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBySlug(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+EXISTS`).
		WithArgs("showroom").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "showroom")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("want true")
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"slug", "name", "parent_slug", "created_at"}).
		AddRow("showroom", "Showroom", "", now).
		AddRow("showroom/doors", "Doors", "showroom", now)

	mock.ExpectQuery(`SELECT\s+slug,\s+name.*ORDER\s+BY\s+slug`).
		WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].ParentSlug != "showroom" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestRename_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^UPDATE\s+folders\s+SET\s+slug=\$2,\s+name=\$3\s+WHERE\s+slug=\$1$`).
		WithArgs("nope", "nope2", "Nope 2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Rename(context.Background(), "nope", "nope2", "Nope 2")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+folders\s+WHERE\s+slug=\$1$`).
		WithArgs("showroom").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "showroom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
