package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/dbx"
	"github.com/dmitrijs2005/trophyshop/internal/server/models"
)

const selectColumns = `SELECT id, category_id, name, description, image_url, position, created_at, updated_at FROM products`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*models.Product, error) {
	var (
		p          models.Product
		categoryID sql.NullInt64
	)
	if err := s.Scan(&p.ID, &categoryID, &p.Name, &p.Description, &p.ImageURL, &p.Position, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.Int64
	}
	return &p, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (r *PostgresRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := selectColumns
	var (
		conds []string
		args  []any
	)
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+likeEscaper.Replace(q)+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY position, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	query :=
		`INSERT INTO products (category_id, name, description, image_url, position)
		 VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(position) + 1, 0) FROM products))
		 RETURNING id, position, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, nullableID(p.CategoryID), p.Name, p.Description, p.ImageURL).
		Scan(&p.ID, &p.Position, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	query :=
		`UPDATE products SET category_id = $1, name = $2, description = $3, image_url = $4, updated_at = now()
		 WHERE id = $5
		 RETURNING position, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, nullableID(p.CategoryID), p.Name, p.Description, p.ImageURL, p.ID).
		Scan(&p.Position, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (string, error) {
	var imageURL string
	err := r.db.QueryRowContext(ctx, `DELETE FROM products WHERE id = $1 RETURNING image_url`, id).Scan(&imageURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return imageURL, nil
}

func (r *PostgresRepository) SetPosition(ctx context.Context, id int64, position int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET position = $1, updated_at = now() WHERE id = $2`, position, id)
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
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM products WHERE image_url = $1`, imageURL).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
