package gallery

import (
	"context"

	"github.com/dmitrijs2005/trophyshop/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.GalleryItem, error)
	Get(ctx context.Context, id int64) (*models.GalleryItem, error)
	Create(ctx context.Context, item *models.GalleryItem) (*models.GalleryItem, error)
	Update(ctx context.Context, item *models.GalleryItem) (*models.GalleryItem, error)
	// Delete removes the item and returns the image URL it referenced.
	Delete(ctx context.Context, id int64) (string, error)
	SetPosition(ctx context.Context, id int64, position int) error
	// CountByImage reports how many rows reference imageURL.
	CountByImage(ctx context.Context, imageURL string) (int, error)
}
