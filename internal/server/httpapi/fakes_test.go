package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/logging"
	"github.com/dmitrijs2005/trophyshop/internal/server/auth"
	"github.com/dmitrijs2005/trophyshop/internal/server/blob"
	"github.com/dmitrijs2005/trophyshop/internal/server/models"
	"github.com/dmitrijs2005/trophyshop/internal/server/services"
	"github.com/dmitrijs2005/trophyshop/internal/server/staging"
)

// ---- fakes ----

type fakeUsers struct {
	loginErr error
}

func (f *fakeUsers) Login(_ context.Context, user, _ string) (*services.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.Session{
		Token:     "admin",
		ExpiresAt: time.Now().Add(time.Hour),
		Identity:  auth.Identity{UserID: 1, IsAdmin: user == "admin"},
	}, nil
}

// Authenticate treats the token itself as the verdict.
func (f *fakeUsers) Authenticate(token string) (*auth.Identity, error) {
	switch token {
	case "admin":
		return &auth.Identity{UserID: 1, IsAdmin: true}, nil
	case "customer":
		return &auth.Identity{UserID: 2}, nil
	case "expired":
		return nil, common.ErrTokenExpired
	default:
		return nil, common.ErrInvalidToken
	}
}

type fakeCatalog struct {
	err      error
	filters  []models.ProductFilter
	reorders [][]int64
	created  []models.Product
	deleted  []int64
}

func (f *fakeCatalog) ListCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: 1, Name: "Cups"}}, f.err
}
func (f *fakeCatalog) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Category{ID: id, Name: "Cups"}, nil
}
func (f *fakeCatalog) CreateCategory(_ context.Context, c *models.Category) (*models.Category, error) {
	c.ID = 10
	return c, f.err
}
func (f *fakeCatalog) UpdateCategory(_ context.Context, c *models.Category) (*models.Category, error) {
	return c, f.err
}
func (f *fakeCatalog) DeleteCategory(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.err
}
func (f *fakeCatalog) ReorderCategories(_ context.Context, ids []int64) error {
	f.reorders = append(f.reorders, ids)
	return f.err
}
func (f *fakeCatalog) ListProducts(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	f.filters = append(f.filters, filter)
	return []models.Product{{ID: 1, Name: "Cup"}}, f.err
}
func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: id, Name: "Cup"}, nil
}
func (f *fakeCatalog) CreateProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p.ID = 5
	f.created = append(f.created, *p)
	return p, nil
}
func (f *fakeCatalog) UpdateProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	return p, f.err
}
func (f *fakeCatalog) DeleteProduct(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.err
}
func (f *fakeCatalog) ReorderProducts(_ context.Context, ids []int64) error {
	f.reorders = append(f.reorders, ids)
	return f.err
}
func (f *fakeCatalog) ListGallery(context.Context) ([]models.GalleryItem, error) {
	return []models.GalleryItem{}, f.err
}
func (f *fakeCatalog) CreateGalleryItem(_ context.Context, it *models.GalleryItem) (*models.GalleryItem, error) {
	return it, f.err
}
func (f *fakeCatalog) UpdateGalleryItem(_ context.Context, it *models.GalleryItem) (*models.GalleryItem, error) {
	return it, f.err
}
func (f *fakeCatalog) DeleteGalleryItem(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.err
}
func (f *fakeCatalog) ReorderGallery(_ context.Context, ids []int64) error {
	f.reorders = append(f.reorders, ids)
	return f.err
}

type testEnv struct {
	handler http.Handler
	catalog *fakeCatalog
	users   *fakeUsers
	store   *blob.Local
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := blob.NewLocal(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	logger := logging.NewDiscard()
	env := &testEnv{catalog: &fakeCatalog{}, users: &fakeUsers{}, store: store}
	env.handler = New(Deps{
		Users:   env.users,
		Catalog: env.catalog,
		Uploads: map[string]UploadPipeline{
			"products": staging.New(store, staging.Config{TempPrefix: "temp/products/", PermanentPrefix: "products"}, logger),
			"gallery":  staging.New(store, staging.Config{TempPrefix: "temp/gallery/", PermanentPrefix: "gallery"}, logger),
		},
		Media:       http.FileServer(http.Dir(store.Root())),
		MediaPrefix: "/media",
		Logger:      logger,
	})
	return env
}
