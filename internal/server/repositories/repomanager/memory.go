package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/buildlists"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/cars"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/memory"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/parts"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/users"
)

// MemoryRepositoryManager vends repositories backed by one memory.Store.
// The DBTX handles it receives are ignored; pair it with dbx.NopRunner.
type MemoryRepositoryManager struct {
	Store *memory.Store
}

func NewMemoryRepositoryManager(store *memory.Store) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{Store: store}
}

// RunMigrations is a no-op: the store has no schema.
func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.Store.Users() }

func (m *MemoryRepositoryManager) Cars(dbx.DBTX) cars.Repository { return m.Store.Cars() }

func (m *MemoryRepositoryManager) BuildLists(dbx.DBTX) buildlists.Repository {
	return m.Store.BuildLists()
}

func (m *MemoryRepositoryManager) Parts(dbx.DBTX) parts.Repository { return m.Store.Parts() }
