package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/soncatalog/internal/dbx"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/admins"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/categories"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/messages"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/products"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Admins(db dbx.DBTX) admins.Repository
	Categories(db dbx.DBTX) categories.Repository
	Products(db dbx.DBTX) products.Repository
	Messages(db dbx.DBTX) messages.Repository
}
