package attempts

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/passgate/internal/server/models"
)

// InMemoryRepository keeps attempts in process memory. Used when the
// server runs without a database.
type InMemoryRepository struct {
	mu       sync.Mutex
	attempts []models.Attempt
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Record(ctx context.Context, a *models.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, *a)
	return nil
}

// All returns a copy of every recorded attempt, oldest first.
func (r *InMemoryRepository) All() []models.Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Attempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}
