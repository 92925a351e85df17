package matching

import (
	"context"
	"time"

	"fundihub/models"
	"fundihub/services/pricing"
	"fundihub/utils"
)

// Subscription boost multipliers. The boost is applied to the weighted score
// after it is computed, never blended into the weights.
const (
	BoostFree    = 1.0
	BoostPro     = 1.5
	BoostPremium = 2.0
)

const neutralScore = 50.0

// BoostMultiplier returns the subscription boost for a technician. Expired or
// cancelled subscriptions get no boost regardless of plan.
func BoostMultiplier(sub models.Subscription, now time.Time) float64 {
	if !sub.ActiveAt(now) {
		return BoostFree
	}
	switch sub.Plan {
	case models.PlanPro:
		return BoostPro
	case models.PlanPremium:
		return BoostPremium
	}
	return BoostFree
}

// Scorer computes per-candidate criterion scores. Scoring is a pure function
// of the request, the candidate and the clock; each search scores a fresh
// candidate set.
type Scorer struct {
	Pricing pricing.Service
	Now     func() time.Time
}

func (s *Scorer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Score produces a fully populated candidate for one technician. searchRadius
// bounds the proximity falloff; prefs carries the requesting customer's saved
// preferences.
func (s *Scorer) Score(ctx context.Context, req models.ServiceRequest, tech *models.User,
	prefs models.SearchPreferences, weights models.MatchWeights, searchRadiusKm float64) models.MatchCandidate {

	distanceKm := candidateDistance(req.LocationGeo, tech.LocationGeo)

	scores := models.CriterionScores{
		SkillMatch:         skillMatchScore(tech, req),
		Proximity:          proximityScore(distanceKm, searchRadiusKm),
		Availability:       availabilityScore(tech),
		Rating:             ratingScore(tech.Rating),
		Experience:         experienceScore(tech.ExperienceYears),
		PriceFit:           s.priceFitScore(ctx, req, tech),
		ResponseTime:       responseTimeScore(tech.AvgResponseMinutes),
		CompletionRate:     completionRateScore(tech),
		CustomerPreference: preferenceScore(tech.ID, prefs),
	}

	base := weights.Apply(scores)
	boost := BoostMultiplier(tech.Subscription, s.now())

	return models.MatchCandidate{
		TechnicianID:   tech.ID,
		TechnicianName: tech.Name,
		Scores:         scores,
		BaseScore:      base,
		ProBoost:       boost,
		Overall:        base * boost,
		DistanceKm:     distanceKm,
	}
}

// candidateDistance returns the request-to-technician distance at the matching
// precision of 1 decimal.
func candidateDistance(from, to models.GeoPoint) float64 {
	fLat, fLon, fOK := from.LatLon()
	tLat, tLon, tOK := to.LatLon()
	if !fOK || !tOK {
		return 0
	}
	return utils.RoundTo(utils.Haversine(fLat, fLon, tLat, tLon), 1)
}

func skillMatchScore(tech *models.User, req models.ServiceRequest) float64 {
	if tech.HasSkill(req.Category) {
		return 100
	}
	if tech.HasSkill("general") {
		return 60
	}
	return 0
}

// proximityScore decays linearly from 100 at the customer's door to 0 at the
// edge of the search radius.
func proximityScore(distanceKm, radiusKm float64) float64 {
	if radiusKm <= 0 {
		return neutralScore
	}
	if distanceKm >= radiusKm {
		return 0
	}
	return 100 * (1 - distanceKm/radiusKm)
}

func availabilityScore(tech *models.User) float64 {
	if tech.Available {
		return 100
	}
	return 0
}

// ratingScore scales the average onto 0-100. Unrated technicians score
// neutral so newcomers are neither rewarded nor buried.
func ratingScore(r models.Rating) float64 {
	if r.Count == 0 {
		return neutralScore
	}
	avg := r.Average
	if avg > 5 {
		avg = 5
	}
	return (avg / 5) * 100
}

// experienceScore saturates at ten years.
func experienceScore(years float64) float64 {
	if years >= 10 {
		return 100
	}
	if years < 0 {
		return 0
	}
	return years * 10
}

// priceFitScore compares a full quote for this technician against the
// customer's budget. A failed quote or absent budget scores neutral; price
// fit must never abort a search.
func (s *Scorer) priceFitScore(ctx context.Context, req models.ServiceRequest, tech *models.User) float64 {
	if req.Budget <= 0 || s.Pricing == nil {
		return neutralScore
	}
	quote := s.Pricing.QuoteForTechnician(ctx, pricing.QuoteRequest{
		CustomerID:      req.CustomerID,
		Category:        req.Category,
		ServiceType:     req.ServiceType,
		Quantity:        req.Quantity,
		ServiceLocation: &req.LocationGeo,
		Urgency:         req.Urgency,
		ScheduledAt:     req.ScheduledAt,
	}, tech)
	if !quote.Success {
		return neutralScore
	}
	ratio := quote.Breakdown.TotalAmount / req.Budget
	switch {
	case ratio <= 0.8:
		return 100
	case ratio <= 1.0:
		return 80
	case ratio <= 1.2:
		return 60
	case ratio <= 1.5:
		return 40
	}
	return 20
}

func responseTimeScore(avgMinutes float64) float64 {
	switch {
	case avgMinutes <= 0:
		return neutralScore // no response history yet
	case avgMinutes <= 5:
		return 100
	case avgMinutes <= 15:
		return 80
	case avgMinutes <= 30:
		return 60
	case avgMinutes <= 60:
		return 40
	}
	return 20
}

func completionRateScore(tech *models.User) float64 {
	rate, ok := tech.CompletionRate()
	if !ok {
		return neutralScore
	}
	return rate * 100
}

func preferenceScore(technicianID string, prefs models.SearchPreferences) float64 {
	for _, id := range prefs.PreferredTechnicians {
		if id == technicianID {
			return 100
		}
	}
	return neutralScore
}
