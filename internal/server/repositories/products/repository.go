package products

import (
	"context"

	"github.com/dmitrijs2005/soncatalog/internal/server/models"
)

// Filter narrows List. The zero value lists every product.
type Filter struct {
	CategorySlug string `json:"category,omitempty"`
	FeaturedOnly bool   `json:"featured,omitempty"`
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	Count(ctx context.Context, featuredOnly bool) (int64, error)
}
