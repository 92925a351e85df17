package matching

import (
	"fmt"

	"fundihub/models"
)

// matchReasons builds the human-readable explanations shown next to a
// candidate. Reasons are threshold-based and purely explanatory; they do not
// feed back into the ranking. A pro/premium badge is always prepended when the
// boost applied.
func matchReasons(c models.MatchCandidate) []string {
	var reasons []string

	switch c.ProBoost {
	case BoostPremium:
		reasons = append(reasons, "Premium partner")
	case BoostPro:
		reasons = append(reasons, "Pro partner")
	}

	if c.Scores.SkillMatch >= 90 {
		reasons = append(reasons, "Expert in required service category")
	}
	if c.Scores.Proximity >= 80 {
		reasons = append(reasons, fmt.Sprintf("Nearby (%.1f km away)", c.DistanceKm))
	}
	if c.Scores.Rating >= 90 {
		reasons = append(reasons, "Top-rated by customers")
	}
	if c.Scores.Experience >= 80 {
		reasons = append(reasons, "Highly experienced")
	}
	if c.Scores.PriceFit >= 90 {
		reasons = append(reasons, "Well within your budget")
	}
	if c.Scores.ResponseTime >= 90 {
		reasons = append(reasons, "Responds in minutes")
	}
	if c.Scores.CompletionRate >= 95 {
		reasons = append(reasons, "Excellent completion record")
	}
	if c.Scores.CustomerPreference >= 100 {
		reasons = append(reasons, "One of your preferred technicians")
	}

	return reasons
}
