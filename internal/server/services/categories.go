package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/dbx"
	"github.com/dmitrijs2005/soncatalog/internal/logging"
	"github.com/dmitrijs2005/soncatalog/internal/server/cache"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soncatalog/internal/shared"
)

// CategoryInput is the editable part of a category.
type CategoryInput struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"desc" form:"desc"`
}

func (in CategoryInput) validate() (CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(in.Name) < 2 {
		return in, fmt.Errorf("%w: category name must be at least 2 characters", common.ErrorValidation)
	}
	if shared.ToSlug(in.Name) == "" {
		return in, fmt.Errorf("%w: category name has no letters or digits", common.ErrorValidation)
	}
	return in, nil
}

type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *cache.Coordinator
	logger      logging.Logger

	list *cache.Query[struct{}, []models.Category]
	byID *cache.Query[string, *models.Category]
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager, c *cache.Coordinator, l logging.Logger) *CategoryService {
	s := &CategoryService{
		db:          db,
		repomanager: m,
		cache:       c,
		logger:      l.With("module", "category_service"),
	}

	s.list = cache.NewQuery(c, "categories.list",
		cache.Options{Tags: []string{cache.TagCategories}, TTL: cache.VeryLong},
		func(ctx context.Context, _ struct{}) ([]models.Category, error) {
			return s.repomanager.Categories(s.db).List(ctx)
		})
	s.byID = cache.NewQuery(c, "categories.byID",
		cache.Options{Tags: []string{cache.TagCategories}, TTL: cache.Long},
		func(ctx context.Context, id string) (*models.Category, error) {
			return s.repomanager.Categories(s.db).GetByID(ctx, id)
		})

	return s
}

// List returns all categories by name.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	items, err := s.list.Get(ctx, struct{}{})
	if err != nil {
		s.logger.Error(ctx, "list categories failed", "error", err)
		return nil, common.ErrorInternal
	}
	return items, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	c, err := s.byID.Get(ctx, id)
	if err != nil {
		return nil, s.mapError(ctx, "get category", err)
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	c, err := s.repomanager.Categories(s.db).Create(ctx, &models.Category{
		Name:        in.Name,
		Slug:        shared.ToSlug(in.Name),
		Description: optional(in.Description),
	})
	if err != nil {
		return nil, s.mapError(ctx, "create category", err)
	}

	invalidate(ctx, s.cache, s.logger, categoryWriteTags...)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	c, err := s.repomanager.Categories(s.db).Update(ctx, &models.Category{
		ID:          id,
		Name:        in.Name,
		Slug:        shared.ToSlug(in.Name),
		Description: optional(in.Description),
	})
	if err != nil {
		return nil, s.mapError(ctx, "update category", err)
	}

	invalidate(ctx, s.cache, s.logger, categoryWriteTags...)
	return c, nil
}

// Delete removes a category that no product references. The count and the
// delete run in one transaction.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Products(tx).CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return common.ErrorCategoryNotEmpty
		}
		return s.repomanager.Categories(tx).Delete(ctx, id)
	})
	if err != nil {
		return s.mapError(ctx, "delete category", err)
	}

	invalidate(ctx, s.cache, s.logger, categoryWriteTags...)
	return nil
}

func (s *CategoryService) mapError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorCategoryNotEmpty):
		return err
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("%w: category with this name exists", common.ErrorConflict)
	case dbx.IsForeignKeyViolation(err):
		return common.ErrorCategoryNotEmpty
	}
	s.logger.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}
