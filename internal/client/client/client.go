package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/trophyshop/internal/client/models"
)

// Client is the trophyshop server API as seen by the CLI.
type Client interface {
	Ping(ctx context.Context) error
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	LoggedIn() bool

	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListGallery(ctx context.Context) ([]models.GalleryItem, error)

	SaveCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	SaveProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	SaveGalleryItem(ctx context.Context, it *models.GalleryItem) (*models.GalleryItem, error)
	DeleteGalleryItem(ctx context.Context, id int64) error
	Reorder(ctx context.Context, resource string, ids []int64) error

	UploadImage(ctx context.Context, area, sessionID, fileName, contentType string, body io.Reader) (*models.StagedUpload, error)
	FinalizeUpload(ctx context.Context, area, sessionID string, save bool, path string) (*models.FinalizeResult, error)
	CleanupUploads(ctx context.Context, area string, paths []string) ([]models.CleanupResult, error)
}
