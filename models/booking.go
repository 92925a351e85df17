package models

import "time"

// Booking statuses.
const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
	BookingDisputed   = "disputed"
)

// Booking-fee escrow states.
const (
	FeePending  = "pending"
	FeeHeld     = "held"
	FeeReleased = "released"
	FeeRefunded = "refunded"
)

// EscrowFee tracks the refundable booking deposit held by the platform.
type EscrowFee struct {
	Amount          float64    `bson:"amount" json:"amount"`
	RemainingAmount float64    `bson:"remainingAmount" json:"remainingAmount"`
	Status          string     `bson:"status" json:"status"` // pending -> held -> released | refunded
	PaymentIntentID string     `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	HeldAt          *time.Time `bson:"heldAt,omitempty" json:"heldAt,omitempty"`
	SettledAt       *time.Time `bson:"settledAt,omitempty" json:"settledAt,omitempty"`
}

// Booking is a confirmed service engagement carrying a pricing snapshot.
type Booking struct {
	ID              string         `bson:"id" json:"id"`
	CustomerID      string         `bson:"customerId" json:"customerId"`
	TechnicianID    string         `bson:"technicianId" json:"technicianId,omitempty"`
	TechnicianName  string         `bson:"technicianName" json:"technicianName,omitempty"`
	MatchID         string         `bson:"matchId,omitempty" json:"matchId,omitempty"`
	ServiceCategory string         `bson:"serviceCategory" json:"serviceCategory"`
	ServiceType     string         `bson:"serviceType" json:"serviceType"`
	ScheduledAt     time.Time      `bson:"scheduledAt" json:"scheduledAt"`
	Status          string         `bson:"status" json:"status"`
	Pricing         PriceBreakdown `bson:"pricing" json:"pricing"`
	BookingFee      EscrowFee      `bson:"bookingFee" json:"bookingFee"`
	CreatedAt       time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// CustomerView returns a copy safe to show the customer. The technician is
// never revealed before the booking fee is held in escrow.
func (b Booking) CustomerView() Booking {
	if b.BookingFee.Status == FeePending {
		b.TechnicianID = ""
		b.TechnicianName = ""
	}
	return b
}
