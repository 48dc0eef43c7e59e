package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/trophyshop/internal/catalogcache"
	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/dbx"
	"github.com/dmitrijs2005/trophyshop/internal/server/models"
)

func (s *CatalogService) ListGallery(ctx context.Context) ([]models.GalleryItem, error) {
	return catalogcache.FetchJSON(ctx, s.cache, common.CacheKeyGallery, func(ctx context.Context) ([]models.GalleryItem, error) {
		return s.repomanager.Gallery(s.db).List(ctx)
	})
}

func validateGalleryItem(it *models.GalleryItem) error {
	it.Title = strings.TrimSpace(it.Title)
	if it.Title == "" {
		return common.NewValidationError("title", "must not be empty")
	}
	if strings.TrimSpace(it.ImageURL) == "" {
		return common.NewValidationError("imageUrl", "a gallery item needs an image")
	}
	return nil
}

func (s *CatalogService) CreateGalleryItem(ctx context.Context, it *models.GalleryItem) (*models.GalleryItem, error) {
	if err := validateGalleryItem(it); err != nil {
		return nil, err
	}
	out, err := s.repomanager.Gallery(s.db).Create(ctx, it)
	if err != nil {
		return nil, err
	}
	s.markWrite(ctx)
	return out, nil
}

func (s *CatalogService) UpdateGalleryItem(ctx context.Context, it *models.GalleryItem) (*models.GalleryItem, error) {
	if err := validateGalleryItem(it); err != nil {
		return nil, err
	}
	var (
		out      *models.GalleryItem
		oldImage string
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Gallery(tx)
		existing, err := repo.Get(ctx, it.ID)
		if err != nil {
			return err
		}
		oldImage = existing.ImageURL
		out, err = repo.Update(ctx, it)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.markWrite(ctx)
	if oldImage != out.ImageURL {
		s.discard(ctx, s.galleryImages, oldImage)
	}
	return out, nil
}

func (s *CatalogService) DeleteGalleryItem(ctx context.Context, id int64) error {
	image, err := s.repomanager.Gallery(s.db).Delete(ctx, id)
	if err != nil {
		return err
	}
	s.markWrite(ctx)
	s.discard(ctx, s.galleryImages, image)
	return nil
}

func (s *CatalogService) ReorderGallery(ctx context.Context, ids []int64) error {
	return s.reorder(ctx, ids, func(tx dbx.DBTX) func(context.Context, int64, int) error {
		return s.repomanager.Gallery(tx).SetPosition
	})
}
