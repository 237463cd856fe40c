package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/dbx"
	"github.com/dmitrijs2005/soncatalog/internal/logging"
	"github.com/dmitrijs2005/soncatalog/internal/server/cache"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/admins"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/categories"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/messages"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/products"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newCoordinator() *cache.Coordinator {
	return cache.NewCoordinator(time.Minute, logging.NewDiscardLogger())
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- fake repositories, in memory ---

type fakeAdmins struct {
	byEmail   map[string]*models.Admin
	getErr    error
	upserted  []string
	upsertErr error
}

func (f *fakeAdmins) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAdmins) Upsert(_ context.Context, email, hash string) (*models.Admin, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserted = append(f.upserted, hash)
	a := &models.Admin{ID: "a-1", Email: email, PasswordHash: hash}
	if f.byEmail == nil {
		f.byEmail = map[string]*models.Admin{}
	}
	f.byEmail[email] = a
	return a, nil
}

type fakeCategories struct {
	mu      sync.Mutex
	items   map[string]models.Category
	listN   int
	err     error
	deleted []string
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listN++
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Category{}
	for _, c := range f.items {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c.ID = "00000000-0000-0000-0000-00000000c0de"
	f.items[c.ID] = *c
	return c, nil
}

func (f *fakeCategories) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.items[c.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	f.items[c.ID] = *c
	return c, nil
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCategories) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), f.err
}

type fakeProducts struct {
	mu         sync.Mutex
	items      []models.Product
	listN      int
	byCategory map[string]int64
	err        error
	created    []*models.Product
}

func (f *fakeProducts) List(_ context.Context, fl products.Filter) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listN++
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Product{}
	for _, p := range f.items {
		if fl.FeaturedOnly && !p.Featured {
			continue
		}
		if fl.CategorySlug != "" && (p.Category == nil || p.Category.Slug != fl.CategorySlug) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p.ID = "00000000-0000-0000-0000-0000000000a1"
	f.items = append(f.items, *p)
	f.created = append(f.created, p)
	return p, nil
}

func (f *fakeProducts) Update(_ context.Context, p *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].ID == p.ID {
			f.items[i] = *p
			return p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeProducts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeProducts) CountByCategory(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byCategory[id], f.err
}

func (f *fakeProducts) Count(_ context.Context, featured bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.items {
		if !featured || p.Featured {
			n++
		}
	}
	return n, f.err
}

type fakeMessages struct {
	mu    sync.Mutex
	items []models.ContactMessage
	listN int
	err   error
	ids   []string
}

func (f *fakeMessages) Create(_ context.Context, m *models.ContactMessage) (*models.ContactMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m.ID = "m-new"
	f.items = append([]models.ContactMessage{*m}, f.items...)
	return m, nil
}

func (f *fakeMessages) List(context.Context) ([]models.ContactMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listN++
	return append([]models.ContactMessage{}, f.items...), f.err
}

func (f *fakeMessages) apply(ids []string, fn func(i int) bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = ids
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, id := range ids {
		for i := 0; i < len(f.items); i++ {
			if f.items[i].ID == id && fn(i) {
				n++
				break
			}
		}
	}
	return n, nil
}

func (f *fakeMessages) MarkHandled(_ context.Context, ids ...string) (int64, error) {
	return f.apply(ids, func(i int) bool { f.items[i].Handled = true; return true })
}

func (f *fakeMessages) Delete(_ context.Context, ids ...string) (int64, error) {
	return f.apply(ids, func(i int) bool { f.items = append(f.items[:i], f.items[i+1:]...); return true })
}

func (f *fakeMessages) CountUnhandled(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.items {
		if !m.Handled {
			n++
		}
	}
	return n, f.err
}

type fakeRepoManager struct {
	a *fakeAdmins
	c *fakeCategories
	p *fakeProducts
	m *fakeMessages
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		a: &fakeAdmins{},
		c: &fakeCategories{items: map[string]models.Category{}},
		p: &fakeProducts{byCategory: map[string]int64{}},
		m: &fakeMessages{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Admins(dbx.DBTX) admins.Repository { return m.a }
func (m *fakeRepoManager) Categories(dbx.DBTX) categories.Repository { return m.c }
func (m *fakeRepoManager) Products(dbx.DBTX) products.Repository { return m.p }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository { return m.m }
