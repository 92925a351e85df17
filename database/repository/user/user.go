package userRepo

import (
	"context"
	"time"

	"fundihub/models"
)

// TechnicianSearchCriteria is the pre-filter applied before match scoring.
type TechnicianSearchCriteria struct {
	Category      string
	LocationGeo   models.GeoPoint
	MaxDistanceKm float64
}

// UserRepository defines the interface for user directory access.
type UserRepository interface {
	GetByID(id string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	// SearchTechnicians returns active technicians with the given skill that
	// have location coordinates within the search radius.
	SearchTechnicians(criteria TechnicianSearchCriteria) ([]models.User, error)
}

func newContext(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
