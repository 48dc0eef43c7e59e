package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/trophyshop/internal/catalogcache"
	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/dbx"
	"github.com/dmitrijs2005/trophyshop/internal/logging"
	"github.com/dmitrijs2005/trophyshop/internal/server/repositories/repomanager"
)

// ImageDiscarder removes a permanent image. *staging.Pipeline satisfies it.
type ImageDiscarder interface {
	Discard(ctx context.Context, ref string) error
}

// CatalogService serves the public catalog through the response cache and
// applies admin mutations. Every successful mutation bumps the cache's admin
// write marker.
type CatalogService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	cache         *catalogcache.Cache
	productImages ImageDiscarder
	galleryImages ImageDiscarder
	logger        logging.Logger
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, cache *catalogcache.Cache,
	productImages, galleryImages ImageDiscarder, logger logging.Logger) *CatalogService {
	return &CatalogService{
		db:            db,
		repomanager:   m,
		cache:         cache,
		productImages: productImages,
		galleryImages: galleryImages,
		logger:        logger.With("module", "catalog_service"),
	}
}

// markWrite invalidates cached catalog responses. A failure only delays
// visibility until the freshness window runs out, so it is logged, not
// returned.
func (s *CatalogService) markWrite(ctx context.Context) {
	if err := s.cache.MarkAdminWrite(ctx); err != nil {
		s.logger.Warn(ctx, "write marker not updated", "error", err)
	}
}

// discard removes ref unless another product or gallery item still points
// at it. An image URL can be typed in by hand, so several records may share
// one file.
func (s *CatalogService) discard(ctx context.Context, images ImageDiscarder, ref string) {
	if ref == "" || images == nil {
		return
	}
	refs, err := s.imageRefs(ctx, ref)
	if err != nil {
		s.logger.Warn(ctx, "old image kept: reference check failed", "ref", ref, "error", err)
		return
	}
	if refs > 0 {
		s.logger.Debug(ctx, "old image kept: still referenced", "ref", ref, "refs", refs)
		return
	}
	if err := images.Discard(ctx, ref); err != nil {
		s.logger.Warn(ctx, "old image left behind", "ref", ref, "error", err)
	}
}

func (s *CatalogService) imageRefs(ctx context.Context, ref string) (int, error) {
	np, err := s.repomanager.Products(s.db).CountByImage(ctx, ref)
	if err != nil {
		return 0, err
	}
	ng, err := s.repomanager.Gallery(s.db).CountByImage(ctx, ref)
	if err != nil {
		return 0, err
	}
	return np + ng, nil
}

// reorder assigns positions 0..n-1 in the order of ids inside one
// transaction. Concurrent reorders serialize in the database; the later
// commit wins in full.
func (s *CatalogService) reorder(ctx context.Context, ids []int64, set func(tx dbx.DBTX) func(ctx context.Context, id int64, position int) error) error {
	if err := validateOrder(ids); err != nil {
		return err
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		setPosition := set(tx)
		for i, id := range ids {
			if err := setPosition(ctx, id, i); err != nil {
				return fmt.Errorf("position %d (id %d): %w", i, id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.markWrite(ctx)
	return nil
}

func validateOrder(ids []int64) error {
	if len(ids) == 0 {
		return common.NewValidationError("ids", "must not be empty")
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return common.NewValidationError("ids", fmt.Sprintf("id %d listed twice", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}
