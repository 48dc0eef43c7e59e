// Package services contains the application services of the trophyshop
// CLI: cached public browsing and the admin back-office flows.
package services

import (
	"context"

	"github.com/dmitrijs2005/trophyshop/internal/catalogcache"
	"github.com/dmitrijs2005/trophyshop/internal/client/client"
	"github.com/dmitrijs2005/trophyshop/internal/client/models"
	"github.com/dmitrijs2005/trophyshop/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/trophyshop/internal/common"
)

// CatalogService serves the public catalog. Full listings go through the
// persisted cache; filtered listings and single products always hit the
// server.
type CatalogService interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Product(ctx context.Context, id int64) (*models.Product, error)
	Gallery(ctx context.Context) ([]models.GalleryItem, error)

	CacheStatus(ctx context.Context) ([]metadata.Entry, error)
	ClearCache(ctx context.Context) error
}

type catalogService struct {
	client client.Client
	cache  *catalogcache.Cache
	store  metadata.Repository
}

func NewCatalogService(c client.Client, cache *catalogcache.Cache, store metadata.Repository) CatalogService {
	return &catalogService{client: c, cache: cache, store: store}
}

func (s *catalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return catalogcache.FetchJSON(ctx, s.cache, common.CacheKeyCategories, s.client.ListCategories)
}

func (s *catalogService) Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if !filter.IsZero() {
		return s.client.ListProducts(ctx, filter)
	}
	return catalogcache.FetchJSON(ctx, s.cache, common.CacheKeyProducts, func(ctx context.Context) ([]models.Product, error) {
		return s.client.ListProducts(ctx, models.ProductFilter{})
	})
}

func (s *catalogService) Product(ctx context.Context, id int64) (*models.Product, error) {
	return s.client.GetProduct(ctx, id)
}

func (s *catalogService) Gallery(ctx context.Context) ([]models.GalleryItem, error) {
	return catalogcache.FetchJSON(ctx, s.cache, common.CacheKeyGallery, s.client.ListGallery)
}

func (s *catalogService) CacheStatus(ctx context.Context) ([]metadata.Entry, error) {
	return s.store.List(ctx)
}

func (s *catalogService) ClearCache(ctx context.Context) error {
	return s.store.Clear(ctx)
}
