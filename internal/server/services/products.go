package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/trophyshop/internal/catalogcache"
	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/dbx"
	"github.com/dmitrijs2005/trophyshop/internal/server/models"
)

// ListProducts serves the unfiltered listing from the cache; filtered
// listings go to the database.
func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if filter.CategoryID == nil && strings.TrimSpace(filter.Query) == "" {
		return catalogcache.FetchJSON(ctx, s.cache, common.CacheKeyProducts, func(ctx context.Context) ([]models.Product, error) {
			return s.repomanager.Products(s.db).List(ctx, models.ProductFilter{})
		})
	}
	return s.repomanager.Products(s.db).List(ctx, filter)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.repomanager.Products(s.db).Get(ctx, id)
}

func (s *CatalogService) validateProduct(ctx context.Context, tx dbx.DBTX, p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return common.NewValidationError("name", "must not be empty")
	}
	if p.CategoryID != nil {
		if _, err := s.repomanager.Categories(tx).Get(ctx, *p.CategoryID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewValidationError("categoryId", fmt.Sprintf("category %d does not exist", *p.CategoryID))
			}
			return err
		}
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	var out *models.Product
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.validateProduct(ctx, tx, p); err != nil {
			return err
		}
		var err error
		out, err = s.repomanager.Products(tx).Create(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.markWrite(ctx)
	return out, nil
}

// UpdateProduct saves p and discards the previous image when it was
// replaced.
func (s *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	var (
		out      *models.Product
		oldImage string
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.validateProduct(ctx, tx, p); err != nil {
			return err
		}
		repo := s.repomanager.Products(tx)
		existing, err := repo.Get(ctx, p.ID)
		if err != nil {
			return err
		}
		oldImage = existing.ImageURL
		out, err = repo.Update(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.markWrite(ctx)
	if oldImage != out.ImageURL {
		s.discard(ctx, s.productImages, oldImage)
	}
	return out, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	image, err := s.repomanager.Products(s.db).Delete(ctx, id)
	if err != nil {
		return err
	}
	s.markWrite(ctx)
	s.discard(ctx, s.productImages, image)
	return nil
}

func (s *CatalogService) ReorderProducts(ctx context.Context, ids []int64) error {
	return s.reorder(ctx, ids, func(tx dbx.DBTX) func(context.Context, int64, int) error {
		return s.repomanager.Products(tx).SetPosition
	})
}
