package models

import (
	"fmt"
	"time"
)

// Urgency levels, lowest to highest.
const (
	UrgencyLow       = "low"
	UrgencyMedium    = "medium"
	UrgencyHigh      = "high"
	UrgencyEmergency = "emergency"
)

// Platform fee types.
const (
	FeeTypePercentage = "percentage"
	FeeTypeFlat       = "flat"
)

// ServicePrice is one entry in the service catalogue of a pricing config.
type ServicePrice struct {
	Category          string  `bson:"category" json:"category"`                   // e.g. "plumbing"
	Type              string  `bson:"type" json:"type"`                           // e.g. "pipe_repair", "general"
	BasePrice         float64 `bson:"basePrice" json:"basePrice"`                 // per unit
	PriceUnit         string  `bson:"priceUnit" json:"priceUnit"`                 // e.g. "job", "hour"
	EstimatedDuration int     `bson:"estimatedDuration" json:"estimatedDuration"` // minutes
	IsActive          bool    `bson:"isActive" json:"isActive"`
}

// DistanceTier prices a closed-open distance band [MinDistance, MaxDistance).
type DistanceTier struct {
	MinDistance float64 `bson:"minDistance" json:"minDistance"` // km, inclusive
	MaxDistance float64 `bson:"maxDistance" json:"maxDistance"` // km, exclusive; 0 means unbounded
	PricePerKm  float64 `bson:"pricePerKm" json:"pricePerKm"`
	FlatFee     float64 `bson:"flatFee" json:"flatFee"`
}

// DistancePricing controls the travel fee component.
type DistancePricing struct {
	Enabled            bool           `bson:"enabled" json:"enabled"`
	MaxServiceDistance float64        `bson:"maxServiceDistance" json:"maxServiceDistance"` // km
	Tiers              []DistanceTier `bson:"tiers" json:"tiers"`
}

// UrgencyMultipliers maps each urgency level to its price multiplier.
type UrgencyMultipliers struct {
	Low       float64 `bson:"low" json:"low"`
	Medium    float64 `bson:"medium" json:"medium"`
	High      float64 `bson:"high" json:"high"`
	Emergency float64 `bson:"emergency" json:"emergency"`
}

// ForLevel returns the multiplier for a named urgency level, defaulting to 1.
func (u UrgencyMultipliers) ForLevel(level string) float64 {
	switch level {
	case UrgencyLow:
		return u.Low
	case UrgencyMedium:
		return u.Medium
	case UrgencyHigh:
		return u.High
	case UrgencyEmergency:
		return u.Emergency
	}
	return 1
}

// TimeOfDayRule applies a multiplier inside an hour window [StartHour, EndHour).
// Windows wrapping midnight are expressed with StartHour > EndHour.
type TimeOfDayRule struct {
	Name       string  `bson:"name" json:"name"` // e.g. "night", "peak_evening"
	StartHour  int     `bson:"startHour" json:"startHour"`
	EndHour    int     `bson:"endHour" json:"endHour"`
	Multiplier float64 `bson:"multiplier" json:"multiplier"`
}

// Matches reports whether the given hour falls inside the rule's window.
func (r TimeOfDayRule) Matches(hour int) bool {
	if r.StartHour <= r.EndHour {
		return hour >= r.StartHour && hour < r.EndHour
	}
	return hour >= r.StartHour || hour < r.EndHour
}

// TechnicianTier classifies technicians by experience and track record.
type TechnicianTier struct {
	TierName         string  `bson:"tierName" json:"tierName"` // e.g. "Gold"
	MinExperience    float64 `bson:"minExperience" json:"minExperience"`
	MinRating        float64 `bson:"minRating,omitempty" json:"minRating,omitempty"`
	MinCompletedJobs int     `bson:"minCompletedJobs,omitempty" json:"minCompletedJobs,omitempty"`
	Multiplier       float64 `bson:"multiplier" json:"multiplier"`
}

// TechnicianTiers holds the tier ladder; tiers are evaluated from the highest
// MinExperience downward.
type TechnicianTiers struct {
	Enabled bool             `bson:"enabled" json:"enabled"`
	Tiers   []TechnicianTier `bson:"tiers" json:"tiers"`
}

// FirstTimeDiscount applies once, on a customer's first booking.
type FirstTimeDiscount struct {
	Enabled   bool    `bson:"enabled" json:"enabled"`
	Type      string  `bson:"type" json:"type"` // "percentage" or "flat"
	Value     float64 `bson:"value" json:"value"`
	MaxAmount float64 `bson:"maxAmount,omitempty" json:"maxAmount,omitempty"` // cap for percentage discounts, 0 = uncapped
}

// LoyaltyDiscount applies to returning customers past a booking threshold.
type LoyaltyDiscount struct {
	Enabled     bool    `bson:"enabled" json:"enabled"`
	MinBookings int     `bson:"minBookings" json:"minBookings"`
	Type        string  `bson:"type" json:"type"`
	Value       float64 `bson:"value" json:"value"`
	MaxAmount   float64 `bson:"maxAmount,omitempty" json:"maxAmount,omitempty"`
}

// Discounts groups the configured discount rules.
type Discounts struct {
	FirstTimeCustomer FirstTimeDiscount `bson:"firstTimeCustomer" json:"firstTimeCustomer"`
	Loyalty           LoyaltyDiscount   `bson:"loyalty" json:"loyalty"`
}

// PlatformFee is the platform's cut of a booking.
type PlatformFee struct {
	Type  string  `bson:"type" json:"type"` // "percentage" or "flat"
	Value float64 `bson:"value" json:"value"`
}

// Tax is levied on the platform fee, not on the customer total.
type Tax struct {
	Enabled bool    `bson:"enabled" json:"enabled"`
	Name    string  `bson:"name" json:"name"` // e.g. "VAT"
	Rate    float64 `bson:"rate" json:"rate"` // fraction, e.g. 0.16
}

// PricingConfig is a versioned pricing rule set. Exactly one config is active
// at a time; edits create a new version rather than mutating history.
type PricingConfig struct {
	ID                 string             `bson:"id" json:"id"`
	Version            int                `bson:"version" json:"version"`
	IsActive           bool               `bson:"isActive" json:"isActive"`
	Currency           string             `bson:"currency" json:"currency"` // e.g. "KES"
	ServicePrices      []ServicePrice     `bson:"servicePrices" json:"servicePrices"`
	DistancePricing    DistancePricing    `bson:"distancePricing" json:"distancePricing"`
	UrgencyMultipliers UrgencyMultipliers `bson:"urgencyMultipliers" json:"urgencyMultipliers"`
	TimeOfDayRules     []TimeOfDayRule    `bson:"timeOfDayRules" json:"timeOfDayRules"`
	TechnicianTiers    TechnicianTiers    `bson:"technicianTiers" json:"technicianTiers"`
	Discounts          Discounts          `bson:"discounts" json:"discounts"`
	PlatformFee        PlatformFee        `bson:"platformFee" json:"platformFee"`
	Tax                Tax                `bson:"tax" json:"tax"`
	MinBookingPrice    float64            `bson:"minBookingPrice" json:"minBookingPrice"`
	MaxBookingPrice    float64            `bson:"maxBookingPrice" json:"maxBookingPrice"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt,omitzero"`
}

// Validate checks ranges the calculators rely on.
func (c *PricingConfig) Validate() error {
	if c.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if c.MinBookingPrice < 0 || (c.MaxBookingPrice > 0 && c.MaxBookingPrice < c.MinBookingPrice) {
		return fmt.Errorf("booking price bounds are invalid: [%v, %v]", c.MinBookingPrice, c.MaxBookingPrice)
	}
	for _, m := range []float64{
		c.UrgencyMultipliers.Low, c.UrgencyMultipliers.Medium,
		c.UrgencyMultipliers.High, c.UrgencyMultipliers.Emergency,
	} {
		if m < 0 {
			return fmt.Errorf("urgency multipliers must be non-negative")
		}
	}
	for _, r := range c.TimeOfDayRules {
		if r.Multiplier < 0 {
			return fmt.Errorf("time-of-day rule %q has a negative multiplier", r.Name)
		}
		if r.StartHour < 0 || r.StartHour > 23 || r.EndHour < 0 || r.EndHour > 24 {
			return fmt.Errorf("time-of-day rule %q has an invalid hour window", r.Name)
		}
	}
	for _, t := range c.TechnicianTiers.Tiers {
		if t.Multiplier < 0 {
			return fmt.Errorf("technician tier %q has a negative multiplier", t.TierName)
		}
	}
	if c.PlatformFee.Type != FeeTypePercentage && c.PlatformFee.Type != FeeTypeFlat {
		return fmt.Errorf("platform fee type must be %q or %q", FeeTypePercentage, FeeTypeFlat)
	}
	if c.PlatformFee.Value < 0 || c.Tax.Rate < 0 {
		return fmt.Errorf("platform fee and tax rate must be non-negative")
	}
	return nil
}
