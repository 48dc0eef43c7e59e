package gallery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/dbx"
	"github.com/dmitrijs2005/trophyshop/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.GalleryItem, error) {
	query :=
		`SELECT id, title, description, image_url, position, created_at, updated_at
		 FROM gallery_items
		 ORDER BY position, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.GalleryItem{}
	for rows.Next() {
		var it models.GalleryItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Description, &it.ImageURL, &it.Position, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.GalleryItem, error) {
	query :=
		`SELECT id, title, description, image_url, position, created_at, updated_at
		 FROM gallery_items
		 WHERE id = $1`

	it := &models.GalleryItem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&it.ID, &it.Title, &it.Description, &it.ImageURL, &it.Position, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) Create(ctx context.Context, it *models.GalleryItem) (*models.GalleryItem, error) {
	query :=
		`INSERT INTO gallery_items (title, description, image_url, position)
		 VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position) + 1, 0) FROM gallery_items))
		 RETURNING id, position, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, it.Title, it.Description, it.ImageURL).
		Scan(&it.ID, &it.Position, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) Update(ctx context.Context, it *models.GalleryItem) (*models.GalleryItem, error) {
	query :=
		`UPDATE gallery_items SET title = $1, description = $2, image_url = $3, updated_at = now()
		 WHERE id = $4
		 RETURNING position, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, it.Title, it.Description, it.ImageURL, it.ID).
		Scan(&it.Position, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (string, error) {
	var imageURL string
	err := r.db.QueryRowContext(ctx, `DELETE FROM gallery_items WHERE id = $1 RETURNING image_url`, id).Scan(&imageURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return imageURL, nil
}

func (r *PostgresRepository) SetPosition(ctx context.Context, id int64, position int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE gallery_items SET position = $1, updated_at = now() WHERE id = $2`, position, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) CountByImage(ctx context.Context, imageURL string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM gallery_items WHERE image_url = $1`, imageURL).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
