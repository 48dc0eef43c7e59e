package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/trophyshop/internal/catalogcache"
	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/dbx"
	"github.com/dmitrijs2005/trophyshop/internal/server/models"
	"github.com/dmitrijs2005/trophyshop/internal/server/repositories/categories"
	"github.com/dmitrijs2005/trophyshop/internal/server/repositories/gallery"
	"github.com/dmitrijs2005/trophyshop/internal/server/repositories/products"
	"github.com/dmitrijs2005/trophyshop/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// tickClock advances one millisecond per reading so cache entries and write
// markers never share a stamp.
type tickClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newTestCache() *catalogcache.Cache {
	clock := &tickClock{t: time.UnixMilli(1_700_000_000_000)}
	return catalogcache.New(catalogcache.NewMemoryStore(time.Hour), catalogcache.WithClock(clock.Now))
}

// --- users ---

type fakeUsersRepo struct {
	byName    map[string]*models.User
	getErr    error
	createErr error
	created   []*models.User
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = int64(len(f.created) + 1)
	f.created = append(f.created, u)
	if f.byName == nil {
		f.byName = map[string]*models.User{}
	}
	f.byName[u.Username] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byName[login]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdatePassword(context.Context, int64, string) error { return nil }

// --- positioned records shared by the catalog fakes ---

type positions struct {
	pos    map[int64]int
	setErr map[int64]error
	sets   int
}

func (p *positions) SetPosition(_ context.Context, id int64, position int) error {
	p.sets++
	if err := p.setErr[id]; err != nil {
		return err
	}
	if _, ok := p.pos[id]; !ok {
		return common.ErrorNotFound
	}
	p.pos[id] = position
	return nil
}

type fakeCategoriesRepo struct {
	positions
	items     map[int64]*models.Category
	listCalls int
	nextID    int64
}

func newFakeCategories(cs ...models.Category) *fakeCategoriesRepo {
	f := &fakeCategoriesRepo{items: map[int64]*models.Category{}, positions: positions{pos: map[int64]int{}}}
	for _, c := range cs {
		c := c
		f.items[c.ID] = &c
		f.pos[c.ID] = c.Position
		f.nextID = max(f.nextID, c.ID)
	}
	return f
}

func (f *fakeCategoriesRepo) List(context.Context) ([]models.Category, error) {
	f.listCalls++
	out := []models.Category{}
	for id, c := range f.items {
		cc := *c
		cc.Position = f.pos[id]
		out = append(out, cc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeCategoriesRepo) Get(_ context.Context, id int64) (*models.Category, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeCategoriesRepo) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	f.nextID++
	c.ID = f.nextID
	c.Position = len(f.items)
	f.items[c.ID] = c
	f.pos[c.ID] = c.Position
	return c, nil
}

func (f *fakeCategoriesRepo) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	if _, ok := f.items[c.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	f.items[c.ID] = c
	return c, nil
}

func (f *fakeCategoriesRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	delete(f.pos, id)
	return nil
}

type fakeProductsRepo struct {
	positions
	items     map[int64]*models.Product
	listCalls int
	filters   []models.ProductFilter
	nextID    int64
	updateErr error
	countErr  error
}

func newFakeProducts(ps ...models.Product) *fakeProductsRepo {
	f := &fakeProductsRepo{items: map[int64]*models.Product{}, positions: positions{pos: map[int64]int{}}}
	for _, p := range ps {
		p := p
		f.items[p.ID] = &p
		f.pos[p.ID] = p.Position
		f.nextID = max(f.nextID, p.ID)
	}
	return f
}

func (f *fakeProductsRepo) List(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	f.listCalls++
	f.filters = append(f.filters, filter)
	out := []models.Product{}
	for id, p := range f.items {
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		pp := *p
		pp.Position = f.pos[id]
		out = append(out, pp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeProductsRepo) Get(_ context.Context, id int64) (*models.Product, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductsRepo) Create(_ context.Context, p *models.Product) (*models.Product, error) {
	f.nextID++
	p.ID = f.nextID
	p.Position = len(f.items)
	f.items[p.ID] = p
	f.pos[p.ID] = p.Position
	return p, nil
}

func (f *fakeProductsRepo) Update(_ context.Context, p *models.Product) (*models.Product, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if _, ok := f.items[p.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProductsRepo) Delete(_ context.Context, id int64) (string, error) {
	p, ok := f.items[id]
	if !ok {
		return "", common.ErrorNotFound
	}
	delete(f.items, id)
	delete(f.pos, id)
	return p.ImageURL, nil
}

func (f *fakeProductsRepo) CountByImage(_ context.Context, imageURL string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, p := range f.items {
		if p.ImageURL == imageURL {
			n++
		}
	}
	return n, nil
}

type fakeGalleryRepo struct {
	positions
	items     map[int64]*models.GalleryItem
	listCalls int
	nextID    int64
}

func newFakeGallery(items ...models.GalleryItem) *fakeGalleryRepo {
	f := &fakeGalleryRepo{items: map[int64]*models.GalleryItem{}, positions: positions{pos: map[int64]int{}}}
	for _, it := range items {
		it := it
		f.items[it.ID] = &it
		f.pos[it.ID] = it.Position
		f.nextID = max(f.nextID, it.ID)
	}
	return f
}

func (f *fakeGalleryRepo) List(context.Context) ([]models.GalleryItem, error) {
	f.listCalls++
	out := []models.GalleryItem{}
	for id, it := range f.items {
		c := *it
		c.Position = f.pos[id]
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeGalleryRepo) Get(_ context.Context, id int64) (*models.GalleryItem, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeGalleryRepo) Create(_ context.Context, it *models.GalleryItem) (*models.GalleryItem, error) {
	f.nextID++
	it.ID = f.nextID
	f.items[it.ID] = it
	f.pos[it.ID] = len(f.items) - 1
	return it, nil
}

func (f *fakeGalleryRepo) Update(_ context.Context, it *models.GalleryItem) (*models.GalleryItem, error) {
	if _, ok := f.items[it.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeGalleryRepo) Delete(_ context.Context, id int64) (string, error) {
	it, ok := f.items[id]
	if !ok {
		return "", common.ErrorNotFound
	}
	delete(f.items, id)
	delete(f.pos, id)
	return it.ImageURL, nil
}

func (f *fakeGalleryRepo) CountByImage(_ context.Context, imageURL string) (int, error) {
	n := 0
	for _, it := range f.items {
		if it.ImageURL == imageURL {
			n++
		}
	}
	return n, nil
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	c *fakeCategoriesRepo
	p *fakeProductsRepo
	g *fakeGalleryRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: &fakeUsersRepo{},
		c: newFakeCategories(),
		p: newFakeProducts(),
		g: newFakeGallery(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Categories(dbx.DBTX) categories.Repository    { return m.c }
func (m *fakeRepoManager) Products(dbx.DBTX) products.Repository        { return m.p }
func (m *fakeRepoManager) Gallery(dbx.DBTX) gallery.Repository          { return m.g }

type fakeImages struct {
	discarded []string
	err       error
}

func (f *fakeImages) Discard(_ context.Context, ref string) error {
	f.discarded = append(f.discarded, ref)
	return f.err
}
