package categories

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

func (r *PostgresRepository) List(ctx context.Context) ([]models.Category, error) {
	query :=
		`SELECT id, name, description, position, created_at, updated_at
		 FROM categories
		 ORDER BY position, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Category, error) {
	query :=
		`SELECT id, name, description, position, created_at, updated_at
		 FROM categories
		 WHERE id = $1`

	c := &models.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	query :=
		`INSERT INTO categories (name, description, position)
		 VALUES ($1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM categories))
		 RETURNING id, position, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, c.Name, c.Description).Scan(&c.ID, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	query :=
		`UPDATE categories SET name = $1, description = $2, updated_at = now()
		 WHERE id = $3
		 RETURNING position, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, c.Name, c.Description, c.ID).Scan(&c.Position, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) SetPosition(ctx context.Context, id int64, position int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET position = $1, updated_at = now() WHERE id = $2`, position, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
