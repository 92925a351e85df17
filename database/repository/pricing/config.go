package pricingRepo

import (
	"context"
	"errors"
	"time"

	"fundihub/models"
)

// ErrNoActiveConfig is returned when no pricing config is flagged active.
var ErrNoActiveConfig = errors.New("no active pricing configuration")

// PricingConfigRepository defines the interface for the versioned config store.
type PricingConfigRepository interface {
	GetActive() (*models.PricingConfig, error)
	GetByID(id string) (*models.PricingConfig, error)
	List() ([]models.PricingConfig, error)
	// CreateVersion inserts cfg as a new inactive version, assigning the next
	// version number.
	CreateVersion(cfg *models.PricingConfig) error
	// Activate flags the given version active and deactivates the rest in one
	// transaction, so two configs can never both read as active.
	Activate(id string) error
}

func newContext(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
