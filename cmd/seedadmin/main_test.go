package main

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
	"github.com/dmitrijs2005/soncatalog/internal/server/seed"
	"github.com/dmitrijs2005/soncatalog/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSeeder struct{ err error }

func (s stubSeeder) SeedAdmin(_ context.Context, email string, _ []byte) (*models.Admin, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Admin{ID: "a-1", Email: email}, nil
}

type stubCategories struct {
	names []string
	err   error
}

func (s *stubCategories) Create(_ context.Context, in services.CategoryInput) (*models.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.names = append(s.names, in.Name)
	return &models.Category{Name: in.Name}, nil
}

func creds() *seed.Credentials {
	return &seed.Credentials{Email: "admin@son.az", Password: []byte("s3cret")}
}

func TestSeedAll_AdminFailureIsReturned(t *testing.T) {
	cats := &stubCategories{}

	err := seedAll(context.Background(), stubSeeder{err: common.ErrorInternal}, cats, creds())
	require.ErrorIs(t, err, common.ErrorInternal)
	assert.Empty(t, cats.names)
}

func TestSeedAll_CategoryFailureIsReturned(t *testing.T) {
	err := seedAll(context.Background(), stubSeeder{}, &stubCategories{err: common.ErrorInternal}, creds())
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestSeedAll(t *testing.T) {
	cats := &stubCategories{}

	require.NoError(t, seedAll(context.Background(), stubSeeder{}, cats, creds()))
	assert.Equal(t, seed.DefaultCategories, cats.names)

	require.NoError(t, seedAll(context.Background(), stubSeeder{}, nil, creds()))
}
