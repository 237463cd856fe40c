package seed

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
	"github.com/dmitrijs2005/soncatalog/internal/server/services"
)

// DefaultCategories is the starter catalog of a fresh install.
var DefaultCategories = []string{
	"Qabyuyan Maye",
	"Duru Ağardıcı",
	"Toz Ağardıcı",
	"Maye Sabun",
	"Xlor",
}

// CategoryCreator is the part of services.CategoryService used here.
type CategoryCreator interface {
	Create(ctx context.Context, in services.CategoryInput) (*models.Category, error)
}

// Categories creates the named categories and returns the ones it added.
// A name that already exists is left as it is, so reruns are harmless.
func Categories(ctx context.Context, cc CategoryCreator, names []string) ([]string, error) {
	var created []string
	for _, name := range names {
		_, err := cc.Create(ctx, services.CategoryInput{Name: name, Description: name + " məhsulları"})
		switch {
		case err == nil:
			created = append(created, name)
		case errors.Is(err, common.ErrorConflict):
		default:
			return created, err
		}
	}
	return created, nil
}
