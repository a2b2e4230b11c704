// Package unlocks persists the reader's unlock records.
package unlocks

import (
	"context"

	"github.com/dmitrijs2005/passgate/internal/client/models"
)

type Repository interface {
	// Save inserts or replaces the record for r.ResourceKey.
	Save(ctx context.Context, r *models.UnlockRecord) error
	// Get returns common.ErrorNotFound when no record exists.
	Get(ctx context.Context, key string) (*models.UnlockRecord, error)
	// List returns every record ordered by key.
	List(ctx context.Context) ([]models.UnlockRecord, error)
	// Delete removes one record. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every record and reports how many were removed.
	Clear(ctx context.Context) (int64, error)
}
