package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/dbx"
	"github.com/dmitrijs2005/soncatalog/internal/logging"
	"github.com/dmitrijs2005/soncatalog/internal/server/cache"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/products"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soncatalog/internal/shared"
)

// ProductInput is the editable part of a product.
type ProductInput struct {
	Title       string `json:"title" form:"title"`
	CategoryID  string `json:"categoryId" form:"categoryId"`
	Description string `json:"description" form:"description"`
	ImageURL    string `json:"imageUrl" form:"imageUrl"`
	Volume      string `json:"volume" form:"volume"`
	PackSize    string `json:"packSize" form:"packSize"`
	Featured    bool   `json:"featured" form:"featured"`
}

func (in ProductInput) validate() (ProductInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Volume = strings.TrimSpace(in.Volume)
	in.PackSize = strings.TrimSpace(in.PackSize)

	if utf8.RuneCountInString(in.Title) < 2 {
		return in, fmt.Errorf("%w: product title must be at least 2 characters", common.ErrorValidation)
	}
	if in.CategoryID == "" {
		return in, fmt.Errorf("%w: category is required", common.ErrorValidation)
	}
	if !validID(in.CategoryID) {
		return in, fmt.Errorf("%w: category does not exist", common.ErrorValidation)
	}
	if !ValidImageURL(in.ImageURL) {
		return in, fmt.Errorf("%w: image must be a URL or an uploaded file path", common.ErrorValidation)
	}
	return in, nil
}

// ValidImageURL accepts an empty value, an uploaded file path, a relative
// path or an absolute URL.
func ValidImageURL(v string) bool {
	if v == "" {
		return true
	}
	if strings.HasPrefix(v, "/uploads/") || strings.HasPrefix(v, "./") || strings.HasPrefix(v, "../") {
		return true
	}
	u, err := url.Parse(v)
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

func (in ProductInput) model(id, slug string) *models.Product {
	return &models.Product{
		ID:          id,
		Title:       in.Title,
		Slug:        slug,
		CategoryID:  in.CategoryID,
		Description: optional(in.Description),
		ImageURL:    optional(in.ImageURL),
		Volume:      optional(in.Volume),
		PackSize:    optional(in.PackSize),
		Featured:    in.Featured,
	}
}

// productSlug is the transliterated title plus a random suffix, so two
// products may share a title.
func productSlug(title string) (string, error) {
	suffix, err := shared.MakeRandHexString(3)
	if err != nil {
		return "", err
	}
	base := shared.ToSlug(title)
	if base == "" {
		return suffix, nil
	}
	return base + "-" + suffix, nil
}

type ProductService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *cache.Coordinator
	logger      logging.Logger

	list *cache.Query[products.Filter, []models.Product]
	byID *cache.Query[string, *models.Product]
}

func NewProductService(db *sql.DB, m repomanager.RepositoryManager, c *cache.Coordinator, l logging.Logger) *ProductService {
	s := &ProductService{
		db:          db,
		repomanager: m,
		cache:       c,
		logger:      l.With("module", "product_service"),
	}

	s.list = cache.NewQuery(c, "products.list",
		cache.Options{Tags: []string{cache.TagProducts}, TTL: cache.Long},
		func(ctx context.Context, f products.Filter) ([]models.Product, error) {
			return s.repomanager.Products(s.db).List(ctx, f)
		})
	s.byID = cache.NewQuery(c, "products.byID",
		cache.Options{Tags: []string{cache.TagProducts}, TTL: cache.Long},
		func(ctx context.Context, id string) (*models.Product, error) {
			return s.repomanager.Products(s.db).GetByID(ctx, id)
		})

	return s
}

// List returns products newest first. An empty filter lists everything.
func (s *ProductService) List(ctx context.Context, f products.Filter) ([]models.Product, error) {
	items, err := s.list.Get(ctx, f)
	if err != nil {
		s.logger.Error(ctx, "list products failed", "error", err)
		return nil, common.ErrorInternal
	}
	return items, nil
}

func (s *ProductService) Featured(ctx context.Context) ([]models.Product, error) {
	return s.List(ctx, products.Filter{FeaturedOnly: true})
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	p, err := s.byID.Get(ctx, id)
	if err != nil {
		return nil, s.mapError(ctx, "get product", err)
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	slug, err := productSlug(in.Title)
	if err != nil {
		return nil, s.mapError(ctx, "create product", err)
	}

	p, err := s.repomanager.Products(s.db).Create(ctx, in.model("", slug))
	if err != nil {
		return nil, s.mapError(ctx, "create product", err)
	}

	invalidate(ctx, s.cache, s.logger, productWriteTags...)
	return p, nil
}

// Update replaces the product fields. The slug is regenerated from the title.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	slug, err := productSlug(in.Title)
	if err != nil {
		return nil, s.mapError(ctx, "update product", err)
	}

	p, err := s.repomanager.Products(s.db).Update(ctx, in.model(id, slug))
	if err != nil {
		return nil, s.mapError(ctx, "update product", err)
	}

	invalidate(ctx, s.cache, s.logger, productWriteTags...)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Products(s.db).Delete(ctx, id); err != nil {
		return s.mapError(ctx, "delete product", err)
	}

	invalidate(ctx, s.cache, s.logger, productWriteTags...)
	return nil
}

func (s *ProductService) mapError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return err
	case dbx.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: category does not exist", common.ErrorValidation)
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("%w: product slug collision, retry", common.ErrorConflict)
	}
	s.logger.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}
