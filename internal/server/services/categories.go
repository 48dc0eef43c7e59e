package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/trophyshop/internal/catalogcache"
	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/dbx"
	"github.com/dmitrijs2005/trophyshop/internal/server/models"
)

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return catalogcache.FetchJSON(ctx, s.cache, common.CacheKeyCategories, func(ctx context.Context) ([]models.Category, error) {
		return s.repomanager.Categories(s.db).List(ctx)
	})
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	return s.repomanager.Categories(s.db).Get(ctx, id)
}

func validateCategory(c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return common.NewValidationError("name", "must not be empty")
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	out, err := s.repomanager.Categories(s.db).Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.markWrite(ctx)
	return out, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	out, err := s.repomanager.Categories(s.db).Update(ctx, c)
	if err != nil {
		return nil, err
	}
	s.markWrite(ctx)
	return out, nil
}

// DeleteCategory removes the category; its products become uncategorised.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.repomanager.Categories(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.markWrite(ctx)
	return nil
}

func (s *CatalogService) ReorderCategories(ctx context.Context, ids []int64) error {
	return s.reorder(ctx, ids, func(tx dbx.DBTX) func(context.Context, int64, int) error {
		return s.repomanager.Categories(tx).SetPosition
	})
}
