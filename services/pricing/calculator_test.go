package pricing

import (
	"context"
	"testing"
	"time"

	"fundihub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticResolver serves a fixed config without touching Redis or Mongo.
type staticResolver struct {
	cfg *models.PricingConfig
	err error
}

func (r *staticResolver) ActiveConfig(ctx context.Context) (*models.PricingConfig, error) {
	return r.cfg, r.err
}

func testConfig() *models.PricingConfig {
	return &models.PricingConfig{
		ID:       "cfg-1",
		Version:  1,
		IsActive: true,
		Currency: "KES",
		ServicePrices: []models.ServicePrice{
			{Category: "plumbing", Type: "pipe_repair", BasePrice: 1500, PriceUnit: "job", IsActive: true},
			{Category: "plumbing", Type: "general", BasePrice: 1200, PriceUnit: "job", IsActive: true},
			{Category: "electrical", Type: "general", BasePrice: 1000, PriceUnit: "job", IsActive: true},
			{Category: "electrical", Type: "wiring", BasePrice: 2000, PriceUnit: "job", IsActive: false},
		},
		DistancePricing: models.DistancePricing{
			Enabled:            true,
			MaxServiceDistance: 30,
			Tiers: []models.DistanceTier{
				{MinDistance: 0, MaxDistance: 5, PricePerKm: 0, FlatFee: 0},
				{MinDistance: 5, MaxDistance: 15, PricePerKm: 20, FlatFee: 50},
				{MinDistance: 15, MaxDistance: 0, PricePerKm: 30, FlatFee: 100},
			},
		},
		UrgencyMultipliers: models.UrgencyMultipliers{Low: 0.9, Medium: 1.0, High: 1.3, Emergency: 1.5},
		TimeOfDayRules: []models.TimeOfDayRule{
			{Name: "night", StartHour: 22, EndHour: 6, Multiplier: 1.25},
			{Name: "peak_evening", StartHour: 17, EndHour: 20, Multiplier: 1.1},
		},
		TechnicianTiers: models.TechnicianTiers{
			Enabled: true,
			Tiers: []models.TechnicianTier{
				{TierName: "Bronze", MinExperience: 0, Multiplier: 1.0},
				{TierName: "Gold", MinExperience: 5, MinRating: 4.5, MinCompletedJobs: 50, Multiplier: 1.3},
				{TierName: "Silver", MinExperience: 2, MinRating: 4.0, Multiplier: 1.15},
			},
		},
		Discounts: models.Discounts{
			FirstTimeCustomer: models.FirstTimeDiscount{Enabled: true, Type: models.FeeTypePercentage, Value: 10, MaxAmount: 500},
			Loyalty:           models.LoyaltyDiscount{Enabled: true, MinBookings: 10, Type: models.FeeTypeFlat, Value: 200},
		},
		PlatformFee:     models.PlatformFee{Type: models.FeeTypePercentage, Value: 15},
		Tax:             models.Tax{Enabled: true, Name: "VAT", Rate: 0.16},
		MinBookingPrice: 500,
		MaxBookingPrice: 2000,
	}
}

func newTestCalculator(cfg *models.PricingConfig, now time.Time) *Calculator {
	return &Calculator{
		Resolver: &staticResolver{cfg: cfg},
		Now:      func() time.Time { return now },
	}
}

// fixedNow is a Tuesday 10:00 UTC, outside every time-of-day rule window.
var fixedNow = time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

func TestQuoteMoneyInvariants(t *testing.T) {
	calc := newTestCalculator(testConfig(), fixedNow)

	res := calc.Quote(context.Background(), QuoteParams{
		Category:      "plumbing",
		ServiceType:   "pipe_repair",
		Quantity:      1,
		Urgency:       models.UrgencyMedium,
		ScheduledAt:   fixedNow.Add(48 * time.Hour),
		PriorBookings: 3,
	})
	require.True(t, res.Success, "quote failed: %v", res.Err)
	b := res.Breakdown

	assert.Equal(t, "KES", b.Currency)
	assert.InDelta(t, b.TotalAmount, b.TechnicianPayout+b.PlatformFee+b.Tax, 1e-9,
		"payout, platform fee and tax must sum to the total exactly")
	assert.InDelta(t, b.TotalAmount, b.BookingFee.Amount+b.BookingFee.RemainingAmount, 1e-9)
	assert.Equal(t, 20.0, b.BookingFee.Percentage)
	assert.Positive(t, b.BookingFee.Amount)
	assert.NotEmpty(t, b.Details)
}

func TestQuoteClampBeforeFees(t *testing.T) {
	cfg := testConfig()
	// 1500 base x2 = 3000, medium urgency, off-peak, no technician, no discount:
	// total 3000 caps at 2000 and every fee derives from 2000.
	calc := newTestCalculator(cfg, fixedNow)

	res := calc.Quote(context.Background(), QuoteParams{
		Category:      "plumbing",
		ServiceType:   "pipe_repair",
		Quantity:      2,
		Urgency:       models.UrgencyMedium,
		ScheduledAt:   fixedNow.Add(48 * time.Hour),
		PriorBookings: 3,
	})
	require.True(t, res.Success)
	b := res.Breakdown

	assert.Equal(t, 2000.0, b.TotalAmount)
	assert.Equal(t, 300.0, b.PlatformFee, "15 percent of the clamped total, not of 3000")
	assert.Equal(t, 48.0, b.Tax, "16 percent VAT on the platform fee")
	assert.Equal(t, 1652.0, b.TechnicianPayout)
	assert.Equal(t, 400.0, b.BookingFee.Amount, "20 percent of the clamped total")
	assert.Equal(t, 1600.0, b.BookingFee.RemainingAmount)
}

func TestQuoteClampMinimum(t *testing.T) {
	cfg := testConfig()
	cfg.ServicePrices = append(cfg.ServicePrices, models.ServicePrice{
		Category: "plumbing", Type: "tap_washer", BasePrice: 200, PriceUnit: "job", IsActive: true,
	})
	calc := newTestCalculator(cfg, fixedNow)

	res := calc.Quote(context.Background(), QuoteParams{
		Category:      "plumbing",
		ServiceType:   "tap_washer",
		Urgency:       models.UrgencyMedium,
		ScheduledAt:   fixedNow.Add(48 * time.Hour),
		PriorBookings: 3,
	})
	require.True(t, res.Success)
	assert.Equal(t, 500.0, res.Breakdown.TotalAmount)
}

func TestQuoteServiceTypeFallback(t *testing.T) {
	calc := newTestCalculator(testConfig(), fixedNow)

	// "rewiring" has no catalogue entry; the electrical "general" entry prices
	// it. The inactive "wiring" entry must not be picked either.
	res := calc.Quote(context.Background(), QuoteParams{
		Category:      "electrical",
		ServiceType:   "rewiring",
		Urgency:       models.UrgencyMedium,
		ScheduledAt:   fixedNow.Add(48 * time.Hour),
		PriorBookings: 3,
	})
	require.True(t, res.Success)
	assert.Equal(t, 1000.0, res.Breakdown.BasePrice)
}

func TestQuoteUnknownCategory(t *testing.T) {
	calc := newTestCalculator(testConfig(), fixedNow)

	res := calc.Quote(context.Background(), QuoteParams{
		Category:    "masonry",
		ServiceType: "wall_repair",
		ScheduledAt: fixedNow.Add(48 * time.Hour),
	})
	require.False(t, res.Success)
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeUnknownCategory, res.Err.Code)
	assert.True(t, res.Err.UserError())
}

func TestQuoteDistanceFee(t *testing.T) {
	calc := newTestCalculator(testConfig(), fixedNow)

	// Nairobi CBD to Westlands is roughly 3.5 km: inside the free tier.
	service := models.NewGeoPoint(-1.2864, 36.8172)
	nearby := models.NewGeoPoint(-1.2672, 36.8070)

	res := calc.Quote(context.Background(), QuoteParams{
		Category:           "plumbing",
		ServiceType:        "pipe_repair",
		ServiceLocation:    &service,
		TechnicianLocation: &nearby,
		Urgency:            models.UrgencyMedium,
		ScheduledAt:        fixedNow.Add(48 * time.Hour),
		PriorBookings:      3,
	})
	require.True(t, res.Success)
	assert.Equal(t, 0.0, res.Breakdown.DistanceFee)
	assert.Greater(t, res.Breakdown.DistanceKm, 0.0)

	// Ruiru is ~20 km out: flat 100 plus 30/km.
	far := models.NewGeoPoint(-1.1466, 36.9585)
	res = calc.Quote(context.Background(), QuoteParams{
		Category:           "plumbing",
		ServiceType:        "pipe_repair",
		ServiceLocation:    &service,
		TechnicianLocation: &far,
		Urgency:            models.UrgencyMedium,
		ScheduledAt:        fixedNow.Add(48 * time.Hour),
		PriorBookings:      3,
	})
	require.True(t, res.Success)
	b := res.Breakdown
	assert.InDelta(t, 100+b.DistanceKm*30, b.DistanceFee, 0.01)
}

func TestQuoteDistanceFeeSkippedWhenDisabledOrUnknown(t *testing.T) {
	cfg := testConfig()
	cfg.DistancePricing.Enabled = false
	calc := newTestCalculator(cfg, fixedNow)

	service := models.NewGeoPoint(-1.2864, 36.8172)
	far := models.NewGeoPoint(-1.1466, 36.9585)

	res := calc.Quote(context.Background(), QuoteParams{
		Category:           "plumbing",
		ServiceType:        "pipe_repair",
		ServiceLocation:    &service,
		TechnicianLocation: &far,
		Urgency:            models.UrgencyMedium,
		ScheduledAt:        fixedNow.Add(48 * time.Hour),
		PriorBookings:      3,
	})
	require.True(t, res.Success)
	assert.Equal(t, 0.0, res.Breakdown.DistanceFee)

	// Enabled again but the technician location is unknown.
	calc = newTestCalculator(testConfig(), fixedNow)
	res = calc.Quote(context.Background(), QuoteParams{
		Category:        "plumbing",
		ServiceType:     "pipe_repair",
		ServiceLocation: &service,
		Urgency:         models.UrgencyMedium,
		ScheduledAt:     fixedNow.Add(48 * time.Hour),
		PriorBookings:   3,
	})
	require.True(t, res.Success)
	assert.Equal(t, 0.0, res.Breakdown.DistanceFee)
}

func TestQuoteServiceAreaExceeded(t *testing.T) {
	calc := newTestCalculator(testConfig(), fixedNow)

	nairobi := models.NewGeoPoint(-1.2864, 36.8172)
	mombasa := models.NewGeoPoint(-4.0435, 39.6682)

	res := calc.Quote(context.Background(), QuoteParams{
		Category:           "plumbing",
		ServiceType:        "pipe_repair",
		ServiceLocation:    &nairobi,
		TechnicianLocation: &mombasa,
		ScheduledAt:        fixedNow.Add(48 * time.Hour),
	})
	require.False(t, res.Success)
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeServiceAreaExceeded, res.Err.Code)
	assert.True(t, res.Err.UserError())
}

func TestDeriveUrgency(t *testing.T) {
	cases := []struct {
		name  string
		until time.Duration
		want  string
	}{
		{"past date degrades to medium", -2 * time.Hour, models.UrgencyMedium},
		{"two hours out", 2 * time.Hour, models.UrgencyEmergency},
		{"same day", 20 * time.Hour, models.UrgencyHigh},
		{"two days out", 50 * time.Hour, models.UrgencyMedium},
		{"ten days out", 10 * 24 * time.Hour, models.UrgencyLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveUrgency(fixedNow, fixedNow.Add(tc.until)))
		})
	}
}

func TestQuoteAutoDerivesUrgency(t *testing.T) {
	calc := newTestCalculator(testConfig(), fixedNow)

	res := calc.Quote(context.Background(), QuoteParams{
		Category:      "plumbing",
		ServiceType:   "pipe_repair",
		ScheduledAt:   fixedNow.Add(2 * time.Hour),
		PriorBookings: 3,
	})
	require.True(t, res.Success)
	assert.Equal(t, models.UrgencyEmergency, res.Breakdown.Urgency)
	assert.Equal(t, 1.5, res.Breakdown.UrgencyMultiplier)
}

func TestTimeOfDayMultiplier(t *testing.T) {
	rules := testConfig().TimeOfDayRules

	night := time.Date(2026, 3, 3, 23, 30, 0, 0, time.UTC)
	m, name := timeOfDayMultiplier(rules, night)
	assert.Equal(t, 1.25, m)
	assert.Equal(t, "night", name)

	// The night window wraps midnight.
	earlyMorning := time.Date(2026, 3, 4, 3, 0, 0, 0, time.UTC)
	m, _ = timeOfDayMultiplier(rules, earlyMorning)
	assert.Equal(t, 1.25, m)

	midday := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	m, name = timeOfDayMultiplier(rules, midday)
	assert.Equal(t, 1.0, m)
	assert.Equal(t, "off_peak", name)
}

func TestClassifyTechnicianTier(t *testing.T) {
	tiers := testConfig().TechnicianTiers.Tiers

	gold := &models.User{
		ExperienceYears: 8,
		Rating:          models.Rating{Average: 4.8, Count: 120},
		Stats:           models.Stats{CompletedBookings: 200},
	}
	assert.Equal(t, "Gold", ClassifyTechnicianTier(tiers, gold).TierName)

	// Experience qualifies for Gold but the rating gate fails, so the scan
	// drops to Silver.
	silver := &models.User{
		ExperienceYears: 8,
		Rating:          models.Rating{Average: 4.2, Count: 40},
		Stats:           models.Stats{CompletedBookings: 200},
	}
	assert.Equal(t, "Silver", ClassifyTechnicianTier(tiers, silver).TierName)

	rookie := &models.User{ExperienceYears: 1}
	assert.Equal(t, "Bronze", ClassifyTechnicianTier(tiers, rookie).TierName)

	// No configured tier passes at all.
	unknown := &models.User{ExperienceYears: 3, Rating: models.Rating{Average: 2.0, Count: 5}}
	got := ClassifyTechnicianTier([]models.TechnicianTier{
		{TierName: "Gold", MinExperience: 5, Multiplier: 1.3},
		{TierName: "Silver", MinExperience: 2, MinRating: 4.0, Multiplier: 1.15},
	}, unknown)
	assert.Equal(t, StandardTierName, got.TierName)
	assert.Equal(t, 1.0, got.Multiplier)
}

func TestQuoteTechnicianTierMultiplier(t *testing.T) {
	calc := newTestCalculator(testConfig(), fixedNow)

	gold := &models.User{
		ExperienceYears: 8,
		Rating:          models.Rating{Average: 4.8, Count: 120},
		Stats:           models.Stats{CompletedBookings: 200},
	}
	res := calc.Quote(context.Background(), QuoteParams{
		Category:      "electrical",
		ServiceType:   "general",
		Technician:    gold,
		Urgency:       models.UrgencyMedium,
		ScheduledAt:   fixedNow.Add(48 * time.Hour),
		PriorBookings: 3,
	})
	require.True(t, res.Success)
	assert.Equal(t, "Gold", res.Breakdown.TechnicianTier)
	assert.Equal(t, 1.3, res.Breakdown.TechnicianMultiplier)
	assert.Equal(t, 1300.0, res.Breakdown.Subtotal)
}

func TestQuoteDiscounts(t *testing.T) {
	calc := newTestCalculator(testConfig(), fixedNow)
	base := QuoteParams{
		Category:    "plumbing",
		ServiceType: "pipe_repair",
		Urgency:     models.UrgencyMedium,
		ScheduledAt: fixedNow.Add(48 * time.Hour),
	}

	t.Run("first time customer", func(t *testing.T) {
		p := base
		p.PriorBookings = 0
		res := calc.Quote(context.Background(), p)
		require.True(t, res.Success)
		assert.Equal(t, 150.0, res.Breakdown.Discount, "10 percent of 1500")
	})

	t.Run("loyalty threshold", func(t *testing.T) {
		p := base
		p.PriorBookings = 12
		res := calc.Quote(context.Background(), p)
		require.True(t, res.Success)
		assert.Equal(t, 200.0, res.Breakdown.Discount)
	})

	t.Run("between thresholds gets nothing", func(t *testing.T) {
		p := base
		p.PriorBookings = 3
		res := calc.Quote(context.Background(), p)
		require.True(t, res.Success)
		assert.Equal(t, 0.0, res.Breakdown.Discount)
	})

	t.Run("unknown history disables discounts", func(t *testing.T) {
		p := base
		p.PriorBookings = -1
		res := calc.Quote(context.Background(), p)
		require.True(t, res.Success)
		assert.Equal(t, 0.0, res.Breakdown.Discount)
	})

	t.Run("percentage discount is capped", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxBookingPrice = 0
		cfg.ServicePrices = append(cfg.ServicePrices, models.ServicePrice{
			Category: "plumbing", Type: "borehole", BasePrice: 80000, PriceUnit: "job", IsActive: true,
		})
		capped := newTestCalculator(cfg, fixedNow)
		p := base
		p.ServiceType = "borehole"
		p.PriorBookings = 0
		res := capped.Quote(context.Background(), p)
		require.True(t, res.Success)
		assert.Equal(t, 500.0, res.Breakdown.Discount, "capped at MaxAmount, not 8000")
	})
}

func TestQuoteConfigUnavailable(t *testing.T) {
	calc := &Calculator{
		Resolver: &staticResolver{err: newError(CodeConfigNotFound, "no active pricing configuration")},
		Now:      func() time.Time { return fixedNow },
	}
	res := calc.Quote(context.Background(), QuoteParams{Category: "plumbing"})
	require.False(t, res.Success)
	assert.Equal(t, CodeConfigNotFound, res.Err.Code)
	assert.False(t, res.Err.UserError())
}
