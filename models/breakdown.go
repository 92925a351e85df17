package models

// BookingFeePercentage is the fixed refundable deposit share of the total.
const BookingFeePercentage = 0.20

// BreakdownFee is the booking-fee split inside a price breakdown.
type BreakdownFee struct {
	Percentage      float64 `bson:"percentage" json:"percentage"` // always 20
	Amount          float64 `bson:"amount" json:"amount"`
	RemainingAmount float64 `bson:"remainingAmount" json:"remainingAmount"`
}

// CalculationStep records which rule produced which number, for auditability.
type CalculationStep struct {
	Rule   string  `bson:"rule" json:"rule"` // e.g. "base_price", "distance_tier", "clamp_max"
	Detail string  `bson:"detail" json:"detail"`
	Amount float64 `bson:"amount" json:"amount"`
}

// PriceBreakdown is a computed quote. It is never persisted on its own; a
// booking embeds a snapshot of it.
type PriceBreakdown struct {
	BasePrice            float64           `bson:"basePrice" json:"basePrice"`
	DistanceFee          float64           `bson:"distanceFee" json:"distanceFee"`
	DistanceKm           float64           `bson:"distanceKm,omitempty" json:"distanceKm,omitempty"`
	Urgency              string            `bson:"urgency" json:"urgency"`
	UrgencyMultiplier    float64           `bson:"urgencyMultiplier" json:"urgencyMultiplier"`
	TimeMultiplier       float64           `bson:"timeMultiplier" json:"timeMultiplier"`
	TechnicianTier       string            `bson:"technicianTier,omitempty" json:"technicianTier,omitempty"`
	TechnicianMultiplier float64           `bson:"technicianMultiplier" json:"technicianMultiplier"`
	Subtotal             float64           `bson:"subtotal" json:"subtotal"`
	Discount             float64           `bson:"discount" json:"discount"`
	TotalAmount          float64           `bson:"totalAmount" json:"totalAmount"`
	PlatformFee          float64           `bson:"platformFee" json:"platformFee"`
	Tax                  float64           `bson:"tax" json:"tax"`
	TechnicianPayout     float64           `bson:"technicianPayout" json:"technicianPayout"`
	BookingFee           BreakdownFee      `bson:"bookingFee" json:"bookingFee"`
	Currency             string            `bson:"currency" json:"currency"`
	Details              []CalculationStep `bson:"details" json:"details"`
}
