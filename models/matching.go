package models

import (
	"fmt"
	"math"
	"time"
)

// Match lifecycle states. Accepted, rejected and expired are terminal.
const (
	MatchSuggested = "suggested"
	MatchViewed    = "viewed"
	MatchAccepted  = "accepted"
	MatchRejected  = "rejected"
	MatchExpired   = "expired"
)

// ServiceRequest is what a customer is searching for.
type ServiceRequest struct {
	CustomerID  string    `bson:"customerId" json:"customerId"`
	Category    string    `bson:"category" json:"category"`
	ServiceType string    `bson:"serviceType" json:"serviceType"`
	LocationGeo GeoPoint  `bson:"locationGeo" json:"locationGeo"`
	Urgency     string    `bson:"urgency,omitempty" json:"urgency,omitempty"`
	Budget      float64   `bson:"budget,omitempty" json:"budget,omitempty"`
	Quantity    int       `bson:"quantity,omitempty" json:"quantity,omitempty"`
	ScheduledAt time.Time `bson:"scheduledAt" json:"scheduledAt"`
}

// CriterionScores holds the per-criterion sub-scores, each in [0, 100].
type CriterionScores struct {
	SkillMatch         float64 `bson:"skillMatch" json:"skillMatch"`
	Proximity          float64 `bson:"proximity" json:"proximity"`
	Availability       float64 `bson:"availability" json:"availability"`
	Rating             float64 `bson:"rating" json:"rating"`
	Experience         float64 `bson:"experience" json:"experience"`
	PriceFit           float64 `bson:"priceFit" json:"priceFit"`
	ResponseTime       float64 `bson:"responseTime" json:"responseTime"`
	CompletionRate     float64 `bson:"completionRate" json:"completionRate"`
	CustomerPreference float64 `bson:"customerPreference" json:"customerPreference"`
}

// MatchWeights mirrors CriterionScores field for field. Keeping this a fixed
// struct rather than an open map means a misspelled weight key cannot be
// silently ignored.
type MatchWeights struct {
	SkillMatch         float64 `bson:"skillMatch" json:"skillMatch"`
	Proximity          float64 `bson:"proximity" json:"proximity"`
	Availability       float64 `bson:"availability" json:"availability"`
	Rating             float64 `bson:"rating" json:"rating"`
	Experience         float64 `bson:"experience" json:"experience"`
	PriceFit           float64 `bson:"priceFit" json:"priceFit"`
	ResponseTime       float64 `bson:"responseTime" json:"responseTime"`
	CompletionRate     float64 `bson:"completionRate" json:"completionRate"`
	CustomerPreference float64 `bson:"customerPreference" json:"customerPreference"`
}

// DefaultMatchWeights returns the platform default weighting.
func DefaultMatchWeights() MatchWeights {
	return MatchWeights{
		SkillMatch:         0.25,
		Proximity:          0.15,
		Availability:       0.10,
		Rating:             0.15,
		Experience:         0.10,
		PriceFit:           0.10,
		ResponseTime:       0.05,
		CompletionRate:     0.05,
		CustomerPreference: 0.05,
	}
}

// Sum returns the total of all weights.
func (w MatchWeights) Sum() float64 {
	return w.SkillMatch + w.Proximity + w.Availability + w.Rating +
		w.Experience + w.PriceFit + w.ResponseTime + w.CompletionRate +
		w.CustomerPreference
}

// Apply combines the sub-scores into a single weighted score.
func (w MatchWeights) Apply(s CriterionScores) float64 {
	return s.SkillMatch*w.SkillMatch + s.Proximity*w.Proximity +
		s.Availability*w.Availability + s.Rating*w.Rating +
		s.Experience*w.Experience + s.PriceFit*w.PriceFit +
		s.ResponseTime*w.ResponseTime + s.CompletionRate*w.CompletionRate +
		s.CustomerPreference*w.CustomerPreference
}

// Validate ensures all weights are non-negative and sum to 1.0.
func (w MatchWeights) Validate() error {
	for _, v := range []float64{
		w.SkillMatch, w.Proximity, w.Availability, w.Rating, w.Experience,
		w.PriceFit, w.ResponseTime, w.CompletionRate, w.CustomerPreference,
	} {
		if v < 0 {
			return fmt.Errorf("match weights must be non-negative")
		}
	}
	if math.Abs(w.Sum()-1.0) > 1e-6 {
		return fmt.Errorf("match weights must sum to 1.0, got %.6f", w.Sum())
	}
	return nil
}

// MatchCandidate is one scored technician in a search result. Candidates are
// computed fresh per search and never reused across requests.
type MatchCandidate struct {
	TechnicianID   string          `bson:"technicianId" json:"technicianId"`
	TechnicianName string          `bson:"technicianName" json:"technicianName"`
	Scores         CriterionScores `bson:"scores" json:"scores"`
	BaseScore      float64         `bson:"baseScore" json:"baseScore"` // weighted sum before boost
	ProBoost       float64         `bson:"proBoost" json:"proBoost"`   // 1.0, 1.5 or 2.0
	Overall        float64         `bson:"overall" json:"overall"`     // BaseScore * ProBoost
	DistanceKm     float64         `bson:"distanceKm" json:"distanceKm"`
	Reasons        []string        `bson:"reasons" json:"reasons"`
}

// Matching is the persisted audit record of one search and its outcome.
type Matching struct {
	ID                 string           `bson:"id" json:"id"`
	CustomerID         string           `bson:"customerId" json:"customerId"`
	Request            ServiceRequest   `bson:"request" json:"request"`
	Candidates         []MatchCandidate `bson:"candidates" json:"candidates"`
	Status             string           `bson:"status" json:"status"`
	SelectedTechnician string           `bson:"selectedTechnician,omitempty" json:"selectedTechnician,omitempty"`
	CreatedAt          time.Time        `bson:"createdAt" json:"createdAt"`
	ExpiresAt          time.Time        `bson:"expiresAt" json:"expiresAt"`
}

// Terminal reports whether the match can no longer change state.
func (m *Matching) Terminal() bool {
	switch m.Status {
	case MatchAccepted, MatchRejected, MatchExpired:
		return true
	}
	return false
}

// Candidate returns the candidate entry for a technician, if present.
func (m *Matching) Candidate(technicianID string) (*MatchCandidate, bool) {
	for i := range m.Candidates {
		if m.Candidates[i].TechnicianID == technicianID {
			return &m.Candidates[i], true
		}
	}
	return nil, false
}
