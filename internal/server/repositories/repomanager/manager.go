package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/meshmart/internal/dbx"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/files"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/orders"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/products"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Products(db dbx.DBTX) products.Repository
	Files(db dbx.DBTX) files.Repository
	Orders(db dbx.DBTX) orders.Repository
}
