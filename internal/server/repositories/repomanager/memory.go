package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/passgate/internal/dbx"
	"github.com/dmitrijs2005/passgate/internal/server/repositories/attempts"
)

// InMemoryRepositoryManager serves process-local repositories. The db
// arguments are ignored.
type InMemoryRepositoryManager struct {
	attempts *attempts.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{attempts: attempts.NewInMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Attempts(db dbx.DBTX) attempts.Repository {
	return m.attempts
}
