package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/buildlists"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/cars"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/parts"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs on a plain connection or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Cars(db dbx.DBTX) cars.Repository
	BuildLists(db dbx.DBTX) buildlists.Repository
	Parts(db dbx.DBTX) parts.Repository
}
