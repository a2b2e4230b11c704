package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/passgate/internal/dbx"
	"github.com/dmitrijs2005/passgate/internal/server/repositories/attempts"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Attempts(db dbx.DBTX) attempts.Repository
}
