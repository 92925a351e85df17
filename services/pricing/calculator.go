package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fundihub/models"
	"fundihub/utils"
)

// StandardTierName is the catch-all technician tier when no configured tier's
// gates pass.
const StandardTierName = "Standard"

// QuoteParams are the inputs to one price calculation. All schedule arithmetic
// is done in UTC; callers supply timestamps, the calculator normalizes them.
type QuoteParams struct {
	CustomerID  string
	Category    string
	ServiceType string
	Quantity    int

	ServiceLocation    *models.GeoPoint
	TechnicianLocation *models.GeoPoint
	Technician         *models.User // nil when quoting without a bound technician

	Urgency     string // empty = auto-derive from ScheduledAt
	ScheduledAt time.Time

	PriorBookings int // customer's prior booking count, drives discounts
}

// QuoteResult is the tagged outcome of a calculation. Callers must branch on
// Success; the calculator never panics on bad pricing input.
type QuoteResult struct {
	Success   bool                   `json:"success"`
	Breakdown *models.PriceBreakdown `json:"breakdown,omitempty"`
	Err       *Error                 `json:"error,omitempty"`
}

func failure(err *Error) QuoteResult {
	return QuoteResult{Success: false, Err: err}
}

// Calculator turns a service request into a full price breakdown. It is a pure
// function of its inputs and the active config; Now is injectable for tests.
type Calculator struct {
	Resolver ConfigResolver
	Now      func() time.Time
}

func (c *Calculator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Quote runs the pricing pipeline. The step order is load-bearing: each step
// feeds the next, the clamp runs before fee and tax derivation, and monetary
// rounding happens once at the end.
func (c *Calculator) Quote(ctx context.Context, p QuoteParams) QuoteResult {
	cfg, err := c.Resolver.ActiveConfig(ctx)
	if err != nil {
		if perr, ok := err.(*Error); ok {
			return failure(perr)
		}
		return failure(newError(CodeConfigNotFound, "pricing configuration unavailable: %v", err))
	}

	b := &models.PriceBreakdown{Currency: cfg.Currency}
	addStep := func(rule, detail string, amount float64) {
		b.Details = append(b.Details, models.CalculationStep{Rule: rule, Detail: detail, Amount: amount})
	}

	// 1. Base price from the service catalogue.
	entry, perr := ResolveServicePrice(cfg, p.Category, p.ServiceType)
	if perr != nil {
		return failure(perr)
	}
	quantity := p.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	b.BasePrice = entry.BasePrice * float64(quantity)
	addStep("base_price", fmt.Sprintf("%s/%s x%d @ %v per %s",
		entry.Category, entry.Type, quantity, entry.BasePrice, entry.PriceUnit), b.BasePrice)

	// 2. Distance fee, only when both locations are known and distance
	// pricing is enabled.
	if cfg.DistancePricing.Enabled && p.ServiceLocation != nil && p.TechnicianLocation != nil {
		sLat, sLon, sOK := p.ServiceLocation.LatLon()
		tLat, tLon, tOK := p.TechnicianLocation.LatLon()
		if sOK && tOK {
			// Pricing uses 2-decimal distance precision.
			distance := utils.RoundTo(utils.Haversine(sLat, sLon, tLat, tLon), 2)
			b.DistanceKm = distance
			if cfg.DistancePricing.MaxServiceDistance > 0 && distance > cfg.DistancePricing.MaxServiceDistance {
				return failure(newError(CodeServiceAreaExceeded,
					"distance %.2f km exceeds service area of %.2f km",
					distance, cfg.DistancePricing.MaxServiceDistance))
			}
			if tier, ok := distanceTierFor(cfg.DistancePricing.Tiers, distance); ok {
				b.DistanceFee = tier.FlatFee + distance*tier.PricePerKm
				addStep("distance_tier", fmt.Sprintf("%.2f km in tier [%.1f, %.1f)",
					distance, tier.MinDistance, tier.MaxDistance), b.DistanceFee)
			} else {
				addStep("distance_tier", fmt.Sprintf("no tier covers %.2f km", distance), 0)
			}
		}
	}

	// 3. Urgency multiplier, auto-derived unless the caller pinned a level.
	urgency := p.Urgency
	if urgency == "" {
		urgency = DeriveUrgency(c.now(), p.ScheduledAt)
	}
	b.Urgency = urgency
	b.UrgencyMultiplier = cfg.UrgencyMultipliers.ForLevel(urgency)
	addStep("urgency", urgency, b.UrgencyMultiplier)

	// 4. Time-of-day multiplier from the scheduled timestamp.
	var todRule string
	b.TimeMultiplier, todRule = timeOfDayMultiplier(cfg.TimeOfDayRules, p.ScheduledAt)
	addStep("time_of_day", todRule, b.TimeMultiplier)

	// 5. Technician tier multiplier.
	b.TechnicianTier = ""
	b.TechnicianMultiplier = 1
	if p.Technician != nil && cfg.TechnicianTiers.Enabled {
		tier := ClassifyTechnicianTier(cfg.TechnicianTiers.Tiers, p.Technician)
		b.TechnicianTier = tier.TierName
		b.TechnicianMultiplier = tier.Multiplier
		addStep("technician_tier", tier.TierName, tier.Multiplier)
	}

	// 6. Subtotal.
	b.Subtotal = (b.BasePrice + b.DistanceFee) * b.UrgencyMultiplier * b.TimeMultiplier * b.TechnicianMultiplier

	// 7. Discount, subtracted from the current subtotal, never a multiplier.
	var discountRule string
	b.Discount, discountRule = discountFor(cfg.Discounts, p.PriorBookings, b.Subtotal)
	if b.Discount > 0 {
		addStep("discount", discountRule, b.Discount)
	}

	// 8. Total before bounds.
	b.TotalAmount = b.Subtotal - b.Discount

	// 9. Clamp into [min, max] before deriving fees, so the platform fee, tax
	// and booking fee always come off the customer-facing bounded price.
	if cfg.MinBookingPrice > 0 && b.TotalAmount < cfg.MinBookingPrice {
		addStep("clamp_min", fmt.Sprintf("raised %.2f to minimum", b.TotalAmount), cfg.MinBookingPrice)
		b.TotalAmount = cfg.MinBookingPrice
	}
	if cfg.MaxBookingPrice > 0 && b.TotalAmount > cfg.MaxBookingPrice {
		addStep("clamp_max", fmt.Sprintf("capped %.2f at maximum", b.TotalAmount), cfg.MaxBookingPrice)
		b.TotalAmount = cfg.MaxBookingPrice
	}

	// 10-14. Fee, tax, payout and booking-fee split, rounded to 2 decimals at
	// the end rather than per step to avoid compounding rounding error.
	b.BasePrice = utils.RoundTo(b.BasePrice, 2)
	b.DistanceFee = utils.RoundTo(b.DistanceFee, 2)
	b.Subtotal = utils.RoundTo(b.Subtotal, 2)
	b.Discount = utils.RoundTo(b.Discount, 2)
	b.TotalAmount = utils.RoundTo(b.TotalAmount, 2)

	switch cfg.PlatformFee.Type {
	case models.FeeTypeFlat:
		b.PlatformFee = cfg.PlatformFee.Value
	default:
		b.PlatformFee = b.TotalAmount * cfg.PlatformFee.Value / 100
	}
	b.PlatformFee = utils.RoundTo(b.PlatformFee, 2)
	addStep("platform_fee", cfg.PlatformFee.Type, b.PlatformFee)

	// Tax is levied on the platform's cut, not on the customer total.
	if cfg.Tax.Enabled {
		b.Tax = utils.RoundTo(b.PlatformFee*cfg.Tax.Rate, 2)
		addStep("tax", cfg.Tax.Name, b.Tax)
	}

	b.TechnicianPayout = utils.RoundTo(b.TotalAmount-b.PlatformFee-b.Tax, 2)

	feeAmount := utils.RoundTo(models.BookingFeePercentage*b.TotalAmount, 2)
	b.BookingFee = models.BreakdownFee{
		Percentage:      models.BookingFeePercentage * 100,
		Amount:          feeAmount,
		RemainingAmount: utils.RoundTo(b.TotalAmount-feeAmount, 2),
	}

	return QuoteResult{Success: true, Breakdown: b}
}

// DeriveUrgency maps time-until-scheduled to an urgency level. Past dates
// degrade to medium rather than emergency. Arithmetic is UTC wall-clock.
func DeriveUrgency(now, scheduledAt time.Time) string {
	until := scheduledAt.UTC().Sub(now.UTC())
	switch {
	case until <= 0:
		return models.UrgencyMedium
	case until <= 4*time.Hour:
		return models.UrgencyEmergency
	case until <= 24*time.Hour:
		return models.UrgencyHigh
	case until <= 72*time.Hour:
		return models.UrgencyMedium
	}
	return models.UrgencyLow
}

// timeOfDayMultiplier finds the first rule covering the scheduled UTC hour.
func timeOfDayMultiplier(rules []models.TimeOfDayRule, scheduledAt time.Time) (float64, string) {
	hour := scheduledAt.UTC().Hour()
	for _, r := range rules {
		if r.Matches(hour) {
			return r.Multiplier, r.Name
		}
	}
	return 1, "off_peak"
}

// ClassifyTechnicianTier picks the highest-experience tier whose gates all
// pass, scanning from the highest MinExperience down regardless of config
// order. Falls back to Standard with multiplier 1.
func ClassifyTechnicianTier(tiers []models.TechnicianTier, tech *models.User) models.TechnicianTier {
	ordered := make([]models.TechnicianTier, len(tiers))
	copy(ordered, tiers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MinExperience > ordered[j].MinExperience
	})
	for _, tier := range ordered {
		if tech.ExperienceYears < tier.MinExperience {
			continue
		}
		if tier.MinRating > 0 && tech.Rating.Average < tier.MinRating {
			continue
		}
		if tier.MinCompletedJobs > 0 && tech.Stats.CompletedBookings < tier.MinCompletedJobs {
			continue
		}
		return tier
	}
	return models.TechnicianTier{TierName: StandardTierName, Multiplier: 1}
}

func distanceTierFor(tiers []models.DistanceTier, distance float64) (models.DistanceTier, bool) {
	for _, t := range tiers {
		if distance < t.MinDistance {
			continue
		}
		if t.MaxDistance > 0 && distance >= t.MaxDistance {
			continue
		}
		return t, true
	}
	return models.DistanceTier{}, false
}

// discountFor applies the first-time discount to customers with no prior
// bookings, otherwise any configured loyalty discount. Returns the amount to
// subtract from the subtotal.
func discountFor(d models.Discounts, priorBookings int, subtotal float64) (float64, string) {
	var amount float64
	var rule string
	switch {
	case priorBookings == 0 && d.FirstTimeCustomer.Enabled:
		amount = discountAmount(d.FirstTimeCustomer.Type, d.FirstTimeCustomer.Value, d.FirstTimeCustomer.MaxAmount, subtotal)
		rule = "first_time_customer"
	case d.Loyalty.Enabled && priorBookings >= d.Loyalty.MinBookings:
		amount = discountAmount(d.Loyalty.Type, d.Loyalty.Value, d.Loyalty.MaxAmount, subtotal)
		rule = "loyalty"
	}
	if amount > subtotal {
		amount = subtotal
	}
	return amount, rule
}

func discountAmount(discountType string, value, maxAmount, subtotal float64) float64 {
	var amount float64
	if discountType == models.FeeTypeFlat {
		amount = value
	} else {
		amount = subtotal * value / 100
	}
	if maxAmount > 0 && amount > maxAmount {
		amount = maxAmount
	}
	return amount
}
