package models

import "time"

// Roles recognised by the platform.
const (
	RoleCustomer   = "customer"
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

// Subscription plans and statuses for technicians.
const (
	PlanFree    = "free"
	PlanPro     = "pro"
	PlanPremium = "premium"

	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// Rating aggregates customer reviews for a technician.
type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

// Subscription describes a technician's paid plan.
type Subscription struct {
	Plan     string    `bson:"plan" json:"plan"`         // "free", "pro", "premium"
	Status   string    `bson:"status" json:"status"`     // "active", "expired", "cancelled"
	EndDate  time.Time `bson:"endDate" json:"endDate"`   // zero value means no expiry recorded
	Features []string  `bson:"features,omitempty" json:"features,omitempty"`
}

// ActiveAt reports whether the subscription is active and unexpired at t.
func (s Subscription) ActiveAt(t time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	if !s.EndDate.IsZero() && s.EndDate.Before(t) {
		return false
	}
	return true
}

// Stats tracks a user's booking history counters.
type Stats struct {
	CompletedBookings int `bson:"completedBookings" json:"completedBookings"`
	TotalBookings     int `bson:"totalBookings" json:"totalBookings"`
}

// SearchPreferences holds a customer's saved matching preferences.
type SearchPreferences struct {
	MaxRadiusKm          float64       `bson:"maxRadiusKm,omitempty" json:"maxRadiusKm,omitempty"`
	MinRating            float64       `bson:"minRating,omitempty" json:"minRating,omitempty"`
	Weights              *MatchWeights `bson:"weights,omitempty" json:"weights,omitempty"`
	PreferredTechnicians []string      `bson:"preferredTechnicians,omitempty" json:"preferredTechnicians,omitempty"`
	BlockedTechnicians   []string      `bson:"blockedTechnicians,omitempty" json:"blockedTechnicians,omitempty"`
}

// User represents a platform user (customer or technician).
type User struct {
	ID          string   `bson:"id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	Email       string   `bson:"email" json:"email,omitempty"`
	PhoneNumber string   `bson:"phoneNumber" json:"phoneNumber,omitempty"`
	Role        string   `bson:"role" json:"role"`
	Status      string   `bson:"status" json:"status"` // e.g. "active", "suspended"
	LocationGeo GeoPoint `bson:"locationGeo" json:"locationGeo,omitzero"`

	// Technician fields.
	Skills             []string     `bson:"skills,omitempty" json:"skills,omitempty"` // service categories covered
	ExperienceYears    float64      `bson:"experienceYears,omitempty" json:"experienceYears,omitempty"`
	Rating             Rating       `bson:"rating" json:"rating,omitzero"`
	Subscription       Subscription `bson:"subscription" json:"subscription,omitzero"`
	Stats              Stats        `bson:"stats" json:"stats,omitzero"`
	Available          bool         `bson:"available" json:"available"`
	AvgResponseMinutes float64      `bson:"avgResponseMinutes,omitempty" json:"avgResponseMinutes,omitempty"`

	// Customer fields.
	Preferences SearchPreferences `bson:"preferences,omitzero" json:"preferences,omitzero"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt,omitzero"`
}

// CompletionRate returns the fraction of total bookings the user completed,
// and false when there is no history to rate.
func (u *User) CompletionRate() (float64, bool) {
	if u.Stats.TotalBookings == 0 {
		return 0, false
	}
	return float64(u.Stats.CompletedBookings) / float64(u.Stats.TotalBookings), true
}

// HasSkill reports whether the technician lists the given service category.
func (u *User) HasSkill(category string) bool {
	for _, s := range u.Skills {
		if s == category {
			return true
		}
	}
	return false
}
