package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/dbx"
	"github.com/dmitrijs2005/soncatalog/internal/logging"
	"github.com/dmitrijs2005/soncatalog/internal/server/auth"
	"github.com/dmitrijs2005/soncatalog/internal/server/cache"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/admins"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/products"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soncatalog/internal/server/services"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@son.az"
	adminPassword = "correctpw"
	testSecret    = "test-secret"
)

// --- admin repository, the only one the real AuthService touches ---

type fakeAdmins struct {
	byEmail map[string]*models.Admin
}

func (f *fakeAdmins) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAdmins) Upsert(context.Context, string, string) (*models.Admin, error) {
	return nil, common.ErrorInternal
}

type adminsOnlyManager struct {
	repomanager.RepositoryManager
	admins *fakeAdmins
}

func (m adminsOnlyManager) Admins(dbx.DBTX) admins.Repository { return m.admins }

// --- catalog services ---

type fakeCategories struct {
	mu    sync.Mutex
	items []models.Category
	listN int
	err   error
	last  services.CategoryInput
	panic bool
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panic {
		panic("list exploded")
	}
	f.listN++
	return f.items, f.err
}

func (f *fakeCategories) Get(_ context.Context, id string) (*models.Category, error) {
	for _, c := range f.items {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeCategories) Create(_ context.Context, in services.CategoryInput) (*models.Category, error) {
	f.last = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Category{ID: "c-new", Name: in.Name}, nil
}

func (f *fakeCategories) Update(_ context.Context, id string, in services.CategoryInput) (*models.Category, error) {
	f.last = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Category{ID: id, Name: in.Name}, nil
}

func (f *fakeCategories) Delete(context.Context, string) error { return f.err }

type fakeProducts struct {
	mu      sync.Mutex
	items   []models.Product
	getN    int
	filters []products.Filter
	last    services.ProductInput
}

func (f *fakeProducts) List(_ context.Context, fl products.Filter) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, fl)
	return f.items, nil
}

func (f *fakeProducts) Featured(context.Context) ([]models.Product, error) {
	return f.items, nil
}

func (f *fakeProducts) Get(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getN++
	for _, p := range f.items {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeProducts) Create(_ context.Context, in services.ProductInput) (*models.Product, error) {
	f.last = in
	return &models.Product{ID: "p-new", Title: in.Title, Featured: in.Featured}, nil
}

func (f *fakeProducts) Update(_ context.Context, id string, in services.ProductInput) (*models.Product, error) {
	f.last = in
	return &models.Product{ID: id, Title: in.Title, Featured: in.Featured}, nil
}

func (f *fakeProducts) Delete(context.Context, string) error { return nil }

type fakeContact struct {
	submitted []services.ContactInput
	bulkIDs   []string
	err       error
}

func (f *fakeContact) Submit(_ context.Context, in services.ContactInput) (*models.ContactMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.submitted = append(f.submitted, in)
	return &models.ContactMessage{ID: "m-1", Name: in.Name, Message: in.Message}, nil
}

func (f *fakeContact) List(context.Context) ([]models.ContactMessage, error) {
	return []models.ContactMessage{}, nil
}

func (f *fakeContact) MarkHandled(context.Context, string) error { return f.err }

func (f *fakeContact) Delete(context.Context, string) error { return f.err }

func (f *fakeContact) BulkMarkHandled(_ context.Context, ids []string) (int64, error) {
	f.bulkIDs = ids
	return int64(len(ids)), f.err
}

func (f *fakeContact) BulkDelete(_ context.Context, ids []string) (int64, error) {
	f.bulkIDs = ids
	return int64(len(ids)), f.err
}

type fakeDashboard struct{}

func (fakeDashboard) Counts(context.Context) (models.DashboardCounts, error) {
	return models.DashboardCounts{Products: 3, Categories: 2, UnhandledMessages: 1}, nil
}

type fakeImages struct {
	got  services.Upload
	body string
	err  error
}

func (f *fakeImages) Upload(_ context.Context, u services.Upload) (*services.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = u
	b, err := io.ReadAll(u.Body)
	if err != nil {
		return nil, err
	}
	f.body = string(b)
	return &services.UploadResult{URL: "https://cdn/x", Filename: "products/1-" + u.Filename, Size: u.Size, Type: u.ContentType}, nil
}

func (f *fakeImages) Presign(_ context.Context, filename, contentType string, size int64) (*services.PresignedUpload, error) {
	if contentType != "image/png" {
		return nil, common.ErrorUnsupportedMedia
	}
	return &services.PresignedUpload{UploadURL: "https://s3/put", URL: "https://cdn/" + filename, Filename: filename}, nil
}

// --- test server ---

type testEnv struct {
	server     *Server
	mr         *miniredis.Miniredis
	coord      *cache.Coordinator
	categories *fakeCategories
	products   *fakeProducts
	contact    *fakeContact
	images     *fakeImages

	mu    sync.Mutex
	clock time.Time
}

func (e *testEnv) now() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock
}

func (e *testEnv) advance(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock = e.clock.Add(d)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		clock:      time.Now(),
		categories: &fakeCategories{},
		products:   &fakeProducts{},
		contact:    &fakeContact{},
		images:     &fakeImages{},
	}

	l := logging.NewDiscardLogger()

	env.mr = miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: env.mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	revocations := auth.NewRedisRevocationStore(rdb, "test:")

	signer, err := auth.NewSigner([]byte(testSecret), 7*24*time.Hour, auth.WithClock(env.now))
	if err != nil {
		t.Fatalf("NewSigner error: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	rm := adminsOnlyManager{admins: &fakeAdmins{byEmail: map[string]*models.Admin{
		adminEmail: {ID: "a-1", Email: adminEmail, PasswordHash: string(hash)},
	}}}

	env.coord = cache.NewCoordinator(time.Minute, l)
	authSvc := services.NewAuthService(nil, rm, signer, revocations, env.coord, l)
	guard := auth.NewGuard(signer, revocations, l)

	env.server = NewServer(":0", false, Services{
		Auth:       authSvc,
		Categories: env.categories,
		Products:   env.products,
		Contact:    env.contact,
		Dashboard:  fakeDashboard{},
		Images:     env.images,
	}, guard, env.coord, l)

	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}
