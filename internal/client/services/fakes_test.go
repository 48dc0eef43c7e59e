package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/trophyshop/internal/catalogcache"
	"github.com/dmitrijs2005/trophyshop/internal/client/client"
	"github.com/dmitrijs2005/trophyshop/internal/client/models"
	"github.com/dmitrijs2005/trophyshop/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/trophyshop/internal/logging"
)

type memRepo struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemRepo() *memRepo { return &memRepo{data: map[string][]byte{}} }

func (m *memRepo) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memRepo) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memRepo) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memRepo) List(_ context.Context) ([]metadata.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]metadata.Entry, 0, len(m.data))
	for k, v := range m.data {
		out = append(out, metadata.Entry{Key: k, Size: len(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memRepo) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string][]byte{}
	return nil
}

// fakeClient implements the calls the services make and counts them.
// Anything else panics through the nil embedded interface.
type fakeClient struct {
	client.Client

	mu        sync.Mutex
	calls     map[string]int
	filters   []models.ProductFilter
	products  []models.Product
	saved     []models.Product
	savedItem []models.GalleryItem
	finalizes []finalizeCall

	uploadErr   error
	finalizeErr error
	fallback    string
	saveErr     error
}

type finalizeCall struct {
	area, session, path string
	save                bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{calls: map[string]int{}}
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeClient) ListCategories(context.Context) ([]models.Category, error) {
	f.hit("categories")
	return []models.Category{{ID: 1, Name: "Cups"}}, nil
}

func (f *fakeClient) ListProducts(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	f.hit("products")
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	return f.products, nil
}

func (f *fakeClient) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	f.hit("product")
	return &models.Product{ID: id, Name: "Cup"}, nil
}

func (f *fakeClient) ListGallery(context.Context) ([]models.GalleryItem, error) {
	f.hit("gallery")
	return []models.GalleryItem{{ID: 1, Title: "Finals"}}, nil
}

func (f *fakeClient) SaveCategory(_ context.Context, c *models.Category) (*models.Category, error) {
	f.hit("saveCategory")
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	out := *c
	out.ID = 7
	return &out, nil
}

func (f *fakeClient) DeleteCategory(context.Context, int64) error {
	f.hit("deleteCategory")
	return f.saveErr
}

func (f *fakeClient) SaveProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	f.hit("saveProduct")
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.mu.Lock()
	f.saved = append(f.saved, *p)
	f.mu.Unlock()
	out := *p
	out.ID = 11
	return &out, nil
}

func (f *fakeClient) DeleteProduct(context.Context, int64) error {
	f.hit("deleteProduct")
	return f.saveErr
}

func (f *fakeClient) SaveGalleryItem(_ context.Context, it *models.GalleryItem) (*models.GalleryItem, error) {
	f.hit("saveGallery")
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.mu.Lock()
	f.savedItem = append(f.savedItem, *it)
	f.mu.Unlock()
	out := *it
	out.ID = 12
	return &out, nil
}

func (f *fakeClient) DeleteGalleryItem(context.Context, int64) error {
	f.hit("deleteGallery")
	return f.saveErr
}

func (f *fakeClient) Reorder(context.Context, string, []int64) error {
	f.hit("reorder")
	return f.saveErr
}

func (f *fakeClient) UploadImage(_ context.Context, area, sessionID, fileName, contentType string, body io.Reader) (*models.StagedUpload, error) {
	f.hit("upload")
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if _, err := io.ReadAll(body); err != nil {
		return nil, err
	}
	return &models.StagedUpload{
		URL:         "/media/temp/" + area + "/" + sessionID + "-1-" + fileName,
		SessionID:   sessionID,
		FileName:    fileName,
		ContentType: contentType,
	}, nil
}

func (f *fakeClient) FinalizeUpload(_ context.Context, area, sessionID string, save bool, path string) (*models.FinalizeResult, error) {
	f.hit("finalize")
	f.mu.Lock()
	f.finalizes = append(f.finalizes, finalizeCall{area: area, session: sessionID, path: path, save: save})
	f.mu.Unlock()
	if !save {
		return &models.FinalizeResult{Success: true, Deleted: 1}, nil
	}
	if f.finalizeErr != nil {
		if f.fallback != "" {
			return &models.FinalizeResult{FallbackURL: f.fallback}, f.finalizeErr
		}
		return nil, f.finalizeErr
	}
	return &models.FinalizeResult{Success: true, FinalURL: "/media/" + area + "/cup.png"}, nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	client  *fakeClient
	repo    *memRepo
	clock   *clock
	cache   *catalogcache.Cache
	catalog CatalogService
	admin   AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fc := newFakeClient()
	repo := newMemRepo()
	clk := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cache := catalogcache.New(repo,
		catalogcache.WithFreshnessWindow(10*time.Minute),
		catalogcache.WithClock(clk.now),
		catalogcache.WithLogger(logging.NewDiscard()),
	)
	return &fixture{
		client:  fc,
		repo:    repo,
		clock:   clk,
		cache:   cache,
		catalog: NewCatalogService(fc, cache, repo),
		admin:   NewAdminService(fc, cache, logging.NewDiscard()),
	}
}
