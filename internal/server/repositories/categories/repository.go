package categories

import (
	"context"

	"github.com/dmitrijs2005/trophyshop/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	// Create appends the category after the current last position.
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
	SetPosition(ctx context.Context, id int64, position int) error
}
