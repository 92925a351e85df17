package matchingRepo

import (
	"context"
	"time"

	"fundihub/models"
)

// MatchingRepository defines the interface for persisted match records.
type MatchingRepository interface {
	Create(match *models.Matching) error
	GetByID(id string) (*models.Matching, error)
	// UpdateStatus moves a match to a new state, optionally recording the
	// selected technician. It refuses to leave a terminal state.
	UpdateStatus(id, status, selectedTechnician string) error
}

func newContext(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
