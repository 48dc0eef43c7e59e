package products

import (
	"context"

	"github.com/dmitrijs2005/trophyshop/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
	// Delete removes the product and returns the image URL it referenced.
	Delete(ctx context.Context, id int64) (string, error)
	SetPosition(ctx context.Context, id int64, position int) error
	// CountByImage reports how many rows reference imageURL.
	CountByImage(ctx context.Context, imageURL string) (int, error)
}
