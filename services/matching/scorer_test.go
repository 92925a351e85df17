package matching

import (
	"context"
	"testing"
	"time"

	"fundihub/models"

	"github.com/stretchr/testify/assert"
)

var scoreNow = time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

func activeSub(plan string) models.Subscription {
	return models.Subscription{
		Plan:    plan,
		Status:  models.SubscriptionActive,
		EndDate: scoreNow.Add(30 * 24 * time.Hour),
	}
}

func TestBoostMultiplier(t *testing.T) {
	assert.Equal(t, BoostFree, BoostMultiplier(activeSub(models.PlanFree), scoreNow))
	assert.Equal(t, BoostPro, BoostMultiplier(activeSub(models.PlanPro), scoreNow))
	assert.Equal(t, BoostPremium, BoostMultiplier(activeSub(models.PlanPremium), scoreNow))

	expired := activeSub(models.PlanPremium)
	expired.EndDate = scoreNow.Add(-time.Hour)
	assert.Equal(t, BoostFree, BoostMultiplier(expired, scoreNow),
		"an expired premium plan must not boost")

	cancelled := activeSub(models.PlanPro)
	cancelled.Status = models.SubscriptionCancelled
	assert.Equal(t, BoostFree, BoostMultiplier(cancelled, scoreNow))

	// No expiry recorded means the status alone decides.
	openEnded := models.Subscription{Plan: models.PlanPro, Status: models.SubscriptionActive}
	assert.Equal(t, BoostPro, BoostMultiplier(openEnded, scoreNow))
}

func TestScoreBoostAppliedAfterWeighting(t *testing.T) {
	scorer := &Scorer{Now: func() time.Time { return scoreNow }}
	req := models.ServiceRequest{
		Category:    "plumbing",
		LocationGeo: models.NewGeoPoint(-1.2864, 36.8172),
		ScheduledAt: scoreNow.Add(48 * time.Hour),
	}
	tech := &models.User{
		ID:           "tech-1",
		Skills:       []string{"plumbing"},
		Available:    true,
		Rating:       models.Rating{Average: 4.5, Count: 30},
		LocationGeo:  models.NewGeoPoint(-1.2672, 36.8070),
		Subscription: activeSub(models.PlanPro),
	}

	c := scorer.Score(context.Background(), req, tech, models.SearchPreferences{},
		models.DefaultMatchWeights(), 25)

	assert.Equal(t, BoostPro, c.ProBoost)
	assert.InDelta(t, c.BaseScore*BoostPro, c.Overall, 1e-9,
		"the boost multiplies the weighted score, nothing else")
	assert.Equal(t, 100.0, c.Scores.SkillMatch)
	assert.Equal(t, 100.0, c.Scores.Availability)
	assert.Greater(t, c.DistanceKm, 0.0)
}

func TestSkillMatchScore(t *testing.T) {
	req := models.ServiceRequest{Category: "plumbing"}
	assert.Equal(t, 100.0, skillMatchScore(&models.User{Skills: []string{"plumbing"}}, req))
	assert.Equal(t, 60.0, skillMatchScore(&models.User{Skills: []string{"general"}}, req))
	assert.Equal(t, 0.0, skillMatchScore(&models.User{Skills: []string{"electrical"}}, req))
}

func TestProximityScore(t *testing.T) {
	assert.Equal(t, 100.0, proximityScore(0, 25))
	assert.InDelta(t, 50.0, proximityScore(12.5, 25), 1e-9)
	assert.Equal(t, 0.0, proximityScore(25, 25))
	assert.Equal(t, 0.0, proximityScore(40, 25))
	assert.Equal(t, neutralScore, proximityScore(5, 0))
}

func TestRatingScoreNeutralWhenUnrated(t *testing.T) {
	assert.Equal(t, neutralScore, ratingScore(models.Rating{}))
	assert.Equal(t, 90.0, ratingScore(models.Rating{Average: 4.5, Count: 10}))
	assert.Equal(t, 100.0, ratingScore(models.Rating{Average: 5.7, Count: 3}),
		"averages above 5 clip instead of overflowing the scale")
}

func TestExperienceScore(t *testing.T) {
	assert.Equal(t, 0.0, experienceScore(0))
	assert.Equal(t, 35.0, experienceScore(3.5))
	assert.Equal(t, 100.0, experienceScore(10))
	assert.Equal(t, 100.0, experienceScore(25))
}

func TestResponseTimeScore(t *testing.T) {
	assert.Equal(t, neutralScore, responseTimeScore(0))
	assert.Equal(t, 100.0, responseTimeScore(4))
	assert.Equal(t, 80.0, responseTimeScore(12))
	assert.Equal(t, 60.0, responseTimeScore(25))
	assert.Equal(t, 40.0, responseTimeScore(45))
	assert.Equal(t, 20.0, responseTimeScore(120))
}

func TestCompletionRateScore(t *testing.T) {
	fresh := &models.User{}
	assert.Equal(t, neutralScore, completionRateScore(fresh))

	veteran := &models.User{Stats: models.Stats{CompletedBookings: 45, TotalBookings: 50}}
	assert.InDelta(t, 90.0, completionRateScore(veteran), 1e-9)
}

func TestPreferenceScore(t *testing.T) {
	prefs := models.SearchPreferences{PreferredTechnicians: []string{"tech-7"}}
	assert.Equal(t, 100.0, preferenceScore("tech-7", prefs))
	assert.Equal(t, neutralScore, preferenceScore("tech-9", prefs))
}

func TestPriceFitScoreNeutralWithoutBudget(t *testing.T) {
	scorer := &Scorer{Now: func() time.Time { return scoreNow }}
	req := models.ServiceRequest{Category: "plumbing"}
	tech := &models.User{ID: "tech-1"}
	assert.Equal(t, neutralScore, scorer.priceFitScore(context.Background(), req, tech))
}
