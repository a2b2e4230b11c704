// Package attempts stores the server's append-only verification audit.
package attempts

import (
	"context"

	"github.com/dmitrijs2005/passgate/internal/server/models"
)

type Repository interface {
	// Record appends one attempt.
	Record(ctx context.Context, a *models.Attempt) error
}
