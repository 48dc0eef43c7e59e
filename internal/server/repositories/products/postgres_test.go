package products

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

var columns = []string{"id", "category_id", "name", "description", "image_url", "position", "created_at", "updated_at"}

func ptr(v int64) *int64 { return &v }

func TestList_Filters(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		filter models.ProductFilter
		query  string
		args   []any
	}{
		{
			name:  "no filter",
			query: selectColumns + " ORDER BY position, id",
		},
		{
			name:   "category",
			filter: models.ProductFilter{CategoryID: ptr(3)},
			query:  selectColumns + " WHERE category_id = $1 ORDER BY position, id",
			args:   []any{int64(3)},
		},
		{
			name:   "category and text",
			filter: models.ProductFilter{CategoryID: ptr(3), Query: " gold "},
			query:  selectColumns + " WHERE category_id = $1 AND (name ILIKE $2 OR description ILIKE $2) ORDER BY position, id",
			args:   []any{int64(3), "%gold%"},
		},
		{
			name:   "text is escaped",
			filter: models.ProductFilter{Query: "50%_off"},
			query:  selectColumns + " WHERE (name ILIKE $1 OR description ILIKE $1) ORDER BY position, id",
			args:   []any{`%50\%\_off%`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			args := make([]driver.Value, 0, len(tt.args))
			for _, a := range tt.args {
				args = append(args, a)
			}
			mock.ExpectQuery(tt.query).WithArgs(args...).
				WillReturnRows(sqlmock.NewRows(columns).
					AddRow(int64(1), int64(3), "Gold cup", "", "/products/cup.png", 0, now, now).
					AddRow(int64(2), nil, "Ribbon", "", "", 1, now, now))

			got, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			require.Len(t, got, 2)
			require.NotNil(t, got[0].CategoryID)
			assert.Equal(t, int64(3), *got[0].CategoryID)
			assert.Nil(t, got[1].CategoryID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(selectColumns + ` WHERE id = $1`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(1), nil, "Cup", "d", "/p.png", 0, now, now))
	got, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Cup", got.Name)

	mock.ExpectQuery(selectColumns + ` WHERE id = $1`).WithArgs(int64(2)).WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO products (category_id, name, description, image_url, position)
		 VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(position) + 1, 0) FROM products))
		 RETURNING id, position, created_at, updated_at`).
		WithArgs(sql.NullInt64{Int64: 2, Valid: true}, "Cup", "d", "/products/cup.png").
		WillReturnRows(sqlmock.NewRows([]string{"id", "position", "created_at", "updated_at"}).AddRow(int64(10), 4, now, now))

	got, err := repo.Create(context.Background(), &models.Product{CategoryID: ptr(2), Name: "Cup", Description: "d", ImageURL: "/products/cup.png"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)
	assert.Equal(t, 4, got.Position)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`UPDATE products SET category_id = $1, name = $2, description = $3, image_url = $4, updated_at = now()
		 WHERE id = $5
		 RETURNING position, created_at, updated_at`).
		WithArgs(sql.NullInt64{}, "Cup", "", "", int64(5)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), &models.Product{ID: 5, Name: "Cup"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete_ReturnsImage(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `DELETE FROM products WHERE id = $1 RETURNING image_url`

	mock.ExpectQuery(q).WithArgs(int64(1)).WillReturnRows(sqlmock.NewRows([]string{"image_url"}).AddRow("/products/cup.png"))
	img, err := repo.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "/products/cup.png", img)

	mock.ExpectQuery(q).WithArgs(int64(2)).WillReturnError(sql.ErrNoRows)
	_, err = repo.Delete(context.Background(), 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectQuery(q).WithArgs(int64(3)).WillReturnError(errors.New("down"))
	_, err = repo.Delete(context.Background(), 3)
	assert.ErrorContains(t, err, "db error: down")
}

func TestSetPosition(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `UPDATE products SET position = $1, updated_at = now() WHERE id = $2`

	mock.ExpectExec(q).WithArgs(2, int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetPosition(context.Background(), 1, 2))

	mock.ExpectExec(q).WithArgs(2, int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetPosition(context.Background(), 9, 2), common.ErrorNotFound)
}

func TestCountByImage(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `SELECT count(*) FROM products WHERE image_url = $1`

	mock.ExpectQuery(q).WithArgs("/products/cup.png").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	n, err := repo.CountByImage(context.Background(), "/products/cup.png")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	mock.ExpectQuery(q).WithArgs("/products/x.png").WillReturnError(errors.New("down"))
	_, err = repo.CountByImage(context.Background(), "/products/x.png")
	assert.ErrorContains(t, err, "db error: down")
	require.NoError(t, mock.ExpectationsWereMet())
}
