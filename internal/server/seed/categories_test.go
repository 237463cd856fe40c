package seed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
	"github.com/dmitrijs2005/soncatalog/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategories struct {
	existing map[string]bool
	failOn   string
	inputs   []services.CategoryInput
}

func (f *fakeCategories) Create(_ context.Context, in services.CategoryInput) (*models.Category, error) {
	f.inputs = append(f.inputs, in)
	if in.Name == f.failOn {
		return nil, common.ErrorInternal
	}
	if f.existing[in.Name] {
		return nil, fmt.Errorf("%w: category with this name exists", common.ErrorConflict)
	}
	return &models.Category{ID: "id-" + in.Name, Name: in.Name}, nil
}

func TestCategories_SkipsExisting(t *testing.T) {
	f := &fakeCategories{existing: map[string]bool{"Xlor": true}}

	created, err := Categories(context.Background(), f, DefaultCategories)
	require.NoError(t, err)
	assert.Equal(t, []string{"Qabyuyan Maye", "Duru Ağardıcı", "Toz Ağardıcı", "Maye Sabun"}, created)
	require.Len(t, f.inputs, 5)
	assert.Equal(t, "Maye Sabun məhsulları", f.inputs[3].Description)
}

func TestCategories_StopsOnError(t *testing.T) {
	f := &fakeCategories{failOn: "Toz Ağardıcı"}

	created, err := Categories(context.Background(), f, DefaultCategories)
	assert.True(t, errors.Is(err, common.ErrorInternal))
	assert.Equal(t, []string{"Qabyuyan Maye", "Duru Ağardıcı"}, created)
	assert.Len(t, f.inputs, 3)
}
