package admins

import (
	"context"

	"github.com/dmitrijs2005/soncatalog/internal/server/models"
)

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Upsert(ctx context.Context, email, passwordHash string) (*models.Admin, error)
}
