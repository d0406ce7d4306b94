package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/booklib/internal/dbx"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/books"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DB handle or transaction,
// so services can run several repository calls inside one dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Books(db dbx.DBTX) books.Repository
}
