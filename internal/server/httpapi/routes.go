// Package httpapi exposes the catalog, the admin back-office and the image
// upload workflow over HTTP/JSON.
package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/trophyshop/internal/logging"
	"github.com/dmitrijs2005/trophyshop/internal/server/auth"
	"github.com/dmitrijs2005/trophyshop/internal/server/models"
	"github.com/dmitrijs2005/trophyshop/internal/server/services"
	"github.com/dmitrijs2005/trophyshop/internal/server/staging"
)

type UserService interface {
	Login(ctx context.Context, userName, password string) (*services.Session, error)
	Authenticate(token string) (*auth.Identity, error)
}

type CatalogService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ReorderCategories(ctx context.Context, ids []int64) error

	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ReorderProducts(ctx context.Context, ids []int64) error

	ListGallery(ctx context.Context) ([]models.GalleryItem, error)
	CreateGalleryItem(ctx context.Context, it *models.GalleryItem) (*models.GalleryItem, error)
	UpdateGalleryItem(ctx context.Context, it *models.GalleryItem) (*models.GalleryItem, error)
	DeleteGalleryItem(ctx context.Context, id int64) error
	ReorderGallery(ctx context.Context, ids []int64) error
}

// UploadPipeline is the staging workflow of one image area.
type UploadPipeline interface {
	Config() staging.Config
	TooLarge(size int64) error
	Accept(ctx context.Context, f staging.File, sessionID string) (*staging.StagedUpload, error)
	Finalize(ctx context.Context, sessionID string, save bool, ref string) (*staging.FinalizeResult, error)
	Cleanup(ctx context.Context, refs []string) []staging.CleanupResult
}

type Deps struct {
	Users   UserService
	Catalog CatalogService
	// Uploads maps an image area ("products", "gallery") to its pipeline.
	Uploads map[string]UploadPipeline
	// Media serves stored images under MediaPrefix; nil when the store
	// publishes its own URLs.
	Media       http.Handler
	MediaPrefix string
	Logger      logging.Logger
}

type Handler struct {
	users   UserService
	catalog CatalogService
	uploads map[string]UploadPipeline
	logger  logging.Logger
}

// New registers all routes and returns the root http.Handler.
func New(d Deps) http.Handler {
	h := &Handler{
		users:   d.Users,
		catalog: d.Catalog,
		uploads: d.Uploads,
		logger:  d.Logger.With("module", "http_api"),
	}

	mux := http.NewServeMux()
	admin := func(f http.HandlerFunc) http.Handler { return h.requireAdmin(f) }

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.Handle("GET /api/auth/me", admin(h.Me))

	// public catalog
	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("GET /api/categories/{id}", h.GetCategory)
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /api/gallery", h.ListGallery)

	// admin catalog
	mux.Handle("POST /api/admin/categories", admin(h.CreateCategory))
	mux.Handle("PUT /api/admin/categories/order", admin(h.ReorderCategories))
	mux.Handle("PUT /api/admin/categories/{id}", admin(h.UpdateCategory))
	mux.Handle("DELETE /api/admin/categories/{id}", admin(h.DeleteCategory))

	mux.Handle("POST /api/admin/products", admin(h.CreateProduct))
	mux.Handle("PUT /api/admin/products/order", admin(h.ReorderProducts))
	mux.Handle("PUT /api/admin/products/{id}", admin(h.UpdateProduct))
	mux.Handle("DELETE /api/admin/products/{id}", admin(h.DeleteProduct))

	mux.Handle("POST /api/admin/gallery", admin(h.CreateGalleryItem))
	mux.Handle("PUT /api/admin/gallery/order", admin(h.ReorderGallery))
	mux.Handle("PUT /api/admin/gallery/{id}", admin(h.UpdateGalleryItem))
	mux.Handle("DELETE /api/admin/gallery/{id}", admin(h.DeleteGalleryItem))

	// image staging
	mux.Handle("POST /api/admin/uploads/{area}", admin(h.Upload))
	mux.Handle("POST /api/admin/uploads/{area}/finalize", admin(h.Finalize))
	mux.Handle("POST /api/admin/uploads/{area}/cleanup", admin(h.Cleanup))

	if d.Media != nil {
		prefix := strings.TrimRight(d.MediaPrefix, "/")
		if prefix == "" {
			prefix = "/media"
		}
		mux.Handle("GET "+prefix+"/", http.StripPrefix(prefix+"/", d.Media))
	}

	return requestLog(h.logger)(mux)
}
