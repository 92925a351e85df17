package booking

import (
	"context"
	"fmt"
	"math"
	"strings"

	"fundihub/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// FeeIntent is the client-facing handle for collecting a booking fee.
type FeeIntent struct {
	IntentID     string  `json:"intentId"`
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

// PaymentHandler collects booking-fee deposits into escrow.
type PaymentHandler interface {
	CreateFeeIntent(ctx context.Context, booking *models.Booking) (*FeeIntent, error)
}

// StripePaymentHandler implements PaymentHandler against Stripe payment
// intents. The package-level stripe.Key is set during startup.
type StripePaymentHandler struct {
	Logger *zap.Logger
}

// NewStripePaymentHandler returns a Stripe-backed payment handler.
func NewStripePaymentHandler(logger *zap.Logger) *StripePaymentHandler {
	return &StripePaymentHandler{Logger: logger}
}

// CreateFeeIntent opens a payment intent for the booking's escrow deposit.
func (h *StripePaymentHandler) CreateFeeIntent(ctx context.Context, booking *models.Booking) (*FeeIntent, error) {
	if booking.BookingFee.Amount <= 0 {
		return nil, fmt.Errorf("booking %s has no positive booking fee", booking.ID)
	}

	// Stripe amounts are in minor units.
	amountMinor := int64(math.Round(booking.BookingFee.Amount * 100))
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(booking.Pricing.Currency)),
	}
	params.AddMetadata("bookingId", booking.ID)
	params.AddMetadata("customerId", booking.CustomerID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent for booking %s: %w", booking.ID, err)
	}

	h.Logger.Info("booking fee intent created",
		zap.String("bookingId", booking.ID),
		zap.String("intentId", pi.ID),
		zap.Float64("amount", booking.BookingFee.Amount))

	return &FeeIntent{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       booking.BookingFee.Amount,
		Currency:     booking.Pricing.Currency,
	}, nil
}
