package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/trophyshop/internal/dbx"
	"github.com/dmitrijs2005/trophyshop/internal/server/repositories/categories"
	"github.com/dmitrijs2005/trophyshop/internal/server/repositories/gallery"
	"github.com/dmitrijs2005/trophyshop/internal/server/repositories/products"
	"github.com/dmitrijs2005/trophyshop/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Categories(db dbx.DBTX) categories.Repository
	Products(db dbx.DBTX) products.Repository
	Gallery(db dbx.DBTX) gallery.Repository
}
