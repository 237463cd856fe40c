package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		b, err := fs.ReadFile(Migrations, name)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(b), "-- +goose Up"), name)
		assert.Contains(t, string(b), "-- +goose Down", name)
	}
}

func TestInitSchemaTables(t *testing.T) {
	b, err := fs.ReadFile(Migrations, "00001_init.sql")
	require.NoError(t, err)

	for _, table := range []string{"admins", "categories", "products", "contact_messages"} {
		assert.Contains(t, string(b), "CREATE TABLE "+table+" (")
	}
}
