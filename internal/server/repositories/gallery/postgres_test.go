package gallery

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var columns = []string{"id", "title", "description", "image_url", "position", "created_at", "updated_at"}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT .* FROM gallery_items\s+ORDER BY position, id`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), "Club awards", "", "/gallery/a.png", 0, now, now).
			AddRow(int64(2), "School day", "", "/gallery/b.png", 1, now, now))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[1].Title != "School day" {
		t.Fatalf("unexpected items: %+v", got)
	}
}

func TestList_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM gallery_items`).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("x", "t", "", "", "not-int", nil, nil))

	if _, err := repo.List(context.Background()); err == nil {
		t.Fatal("expected scan error")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM gallery_items\s+WHERE id = \$1`).WithArgs(int64(3)).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 3)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT INTO gallery_items \(title, description, image_url, position\).*RETURNING id, position, created_at, updated_at`).
		WithArgs("Finals", "", "/gallery/finals.png").
		WillReturnRows(sqlmock.NewRows([]string{"id", "position", "created_at", "updated_at"}).AddRow(int64(4), 2, now, now))

	got, err := repo.Create(context.Background(), &models.GalleryItem{Title: "Finals", ImageURL: "/gallery/finals.png"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 4 || got.Position != 2 {
		t.Fatalf("unexpected item: %+v", got)
	}
}

func TestUpdate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE gallery_items SET title`).
		WithArgs("t", "d", "/gallery/x.png", int64(1)).
		WillReturnError(errors.New("db err"))

	_, err := repo.Update(context.Background(), &models.GalleryItem{ID: 1, Title: "t", Description: "d", ImageURL: "/gallery/x.png"})
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`DELETE FROM gallery_items WHERE id = \$1 RETURNING image_url`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"image_url"}).AddRow("/gallery/a.png"))

	img, err := repo.Delete(context.Background(), 1)
	if err != nil || img != "/gallery/a.png" {
		t.Fatalf("Delete = %q, %v", img, err)
	}

	mock.ExpectQuery(`DELETE FROM gallery_items`).WithArgs(int64(2)).WillReturnError(sql.ErrNoRows)
	if _, err := repo.Delete(context.Background(), 2); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSetPosition(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE gallery_items SET position = \$1`).WithArgs(1, int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.SetPosition(context.Background(), 5, 1); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestCountByImage(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM gallery_items WHERE image_url = $1`)).WithArgs("/gallery/a.png").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := repo.CountByImage(context.Background(), "/gallery/a.png")
	if err != nil || n != 1 {
		t.Fatalf("CountByImage = %d, %v", n, err)
	}

	mock.ExpectQuery(`SELECT count`).WithArgs("/gallery/b.png").WillReturnError(errors.New("down"))
	if _, err := repo.CountByImage(context.Background(), "/gallery/b.png"); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
