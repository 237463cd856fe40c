package messages

import (
	"context"

	"github.com/dmitrijs2005/soncatalog/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, m *models.ContactMessage) (*models.ContactMessage, error)
	List(ctx context.Context) ([]models.ContactMessage, error)
	MarkHandled(ctx context.Context, ids ...string) (int64, error)
	Delete(ctx context.Context, ids ...string) (int64, error)
	CountUnhandled(ctx context.Context) (int64, error)
}
