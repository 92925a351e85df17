package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "fundihub/database/repository/booking"
	matchingRepo "fundihub/database/repository/matching"
	"fundihub/models"
	"fundihub/services/pricing"

	"fundihub/cron"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// feeReleaseDelay is the dispute window between completion and escrow release.
const feeReleaseDelay = 24 * time.Hour

// Service defines the match-acceptance and escrow orchestration interface.
type Service interface {
	// AcceptMatch re-runs pricing with the chosen technician bound and creates
	// a booking. It fails closed: no booking exists without a valid positive
	// booking fee.
	AcceptMatch(ctx context.Context, matchID, technicianID string, scheduledAt time.Time) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	// ListBookings returns a customer's bookings, customer view applied.
	ListBookings(ctx context.Context, customerID string) ([]models.Booking, error)
	// CreateFeeIntent opens payment collection for the escrow deposit.
	CreateFeeIntent(ctx context.Context, bookingID string) (*FeeIntent, error)
	// ConfirmFeeHeld records a successful deposit payment; only then does the
	// technician become visible to the customer.
	ConfirmFeeHeld(ctx context.Context, bookingID, paymentIntentID string) (*models.Booking, error)
	// MarkCompleted closes out the job and schedules the escrow release.
	MarkCompleted(ctx context.Context, bookingID string) error
	// ReleaseFee settles a held fee after verified completion.
	ReleaseFee(ctx context.Context, bookingID string) error
	// RefundFee returns a held fee on cancellation or dispute.
	RefundFee(ctx context.Context, bookingID string) error
}

// DefaultService implements Service.
type DefaultService struct {
	Matches  matchingRepo.MatchingRepository
	Bookings bookingRepo.BookingRepository
	Pricing  pricing.Service
	Payments PaymentHandler
	Tasks    *asynq.Client
	Logger   *zap.Logger
}

// AcceptMatch binds a technician from a ranked match and creates the booking.
// Pricing runs from scratch with the concrete technician so distance and tier
// multipliers are accurate; the estimate's numbers are never reused.
func (s *DefaultService) AcceptMatch(ctx context.Context, matchID, technicianID string, scheduledAt time.Time) (*models.Booking, error) {
	match, err := s.Matches.GetByID(matchID)
	if err != nil {
		return nil, err
	}
	if match.Terminal() {
		return nil, fmt.Errorf("match %s is already %s", matchID, match.Status)
	}
	if time.Now().After(match.ExpiresAt) {
		if err := s.Matches.UpdateStatus(matchID, models.MatchExpired, ""); err != nil {
			s.Logger.Warn("failed to expire stale match", zap.String("matchId", matchID), zap.Error(err))
		}
		return nil, fmt.Errorf("match %s has expired", matchID)
	}
	candidate, ok := match.Candidate(technicianID)
	if !ok {
		return nil, fmt.Errorf("technician %s is not a candidate of match %s", technicianID, matchID)
	}

	if scheduledAt.IsZero() {
		scheduledAt = match.Request.ScheduledAt
	}

	serviceLoc := match.Request.LocationGeo
	result := s.Pricing.CalculatePrice(ctx, pricing.QuoteRequest{
		CustomerID:      match.CustomerID,
		Category:        match.Request.Category,
		ServiceType:     match.Request.ServiceType,
		Quantity:        match.Request.Quantity,
		ServiceLocation: &serviceLoc,
		TechnicianID:    technicianID,
		Urgency:         match.Request.Urgency,
		ScheduledAt:     scheduledAt,
	})
	if !result.Success {
		return nil, fmt.Errorf("match acceptance aborted, pricing failed: %w", result.Err)
	}
	if result.Breakdown.BookingFee.Amount <= 0 {
		return nil, &pricing.Error{
			Code:    pricing.CodeInvalidBookingFee,
			Message: fmt.Sprintf("computed booking fee is not positive for match %s", matchID),
		}
	}

	// Finalize the match first; the status guard in the repository prevents a
	// concurrent double-accept.
	if err := s.Matches.UpdateStatus(matchID, models.MatchAccepted, technicianID); err != nil {
		return nil, fmt.Errorf("failed to accept match %s: %w", matchID, err)
	}

	now := time.Now()
	booking := &models.Booking{
		ID:              uuid.New().String(),
		CustomerID:      match.CustomerID,
		TechnicianID:    candidate.TechnicianID,
		TechnicianName:  candidate.TechnicianName,
		MatchID:         matchID,
		ServiceCategory: match.Request.Category,
		ServiceType:     match.Request.ServiceType,
		ScheduledAt:     scheduledAt,
		Status:          models.BookingPending,
		Pricing:         *result.Breakdown,
		BookingFee: models.EscrowFee{
			Amount:          result.Breakdown.BookingFee.Amount,
			RemainingAmount: result.Breakdown.BookingFee.RemainingAmount,
			Status:          models.FeePending,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Bookings.Create(booking); err != nil {
		s.Logger.Error("match accepted but booking creation failed, needs reconciliation",
			zap.String("matchId", matchID), zap.Error(err))
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.Logger.Info("booking created from match",
		zap.String("bookingId", booking.ID),
		zap.String("matchId", matchID),
		zap.Float64("total", booking.Pricing.TotalAmount),
		zap.Float64("bookingFee", booking.BookingFee.Amount))
	return booking, nil
}

// GetBooking fetches a booking record.
func (s *DefaultService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.Bookings.GetByID(id)
}

// ListBookings returns a customer's bookings with the customer view applied,
// so pending-fee bookings never leak the technician.
func (s *DefaultService) ListBookings(ctx context.Context, customerID string) ([]models.Booking, error) {
	bookings, err := s.Bookings.ListByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		bookings[i] = bookings[i].CustomerView()
	}
	return bookings, nil
}

// CreateFeeIntent opens payment collection for a pending booking fee.
func (s *DefaultService) CreateFeeIntent(ctx context.Context, bookingID string) (*FeeIntent, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookingFee.Status != models.FeePending {
		return nil, fmt.Errorf("booking fee for %s is %s, expected %s",
			bookingID, booking.BookingFee.Status, models.FeePending)
	}
	return s.Payments.CreateFeeIntent(ctx, booking)
}

// ConfirmFeeHeld moves the fee to held and confirms the booking.
func (s *DefaultService) ConfirmFeeHeld(ctx context.Context, bookingID, paymentIntentID string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookingFee.Status != models.FeePending {
		return nil, fmt.Errorf("booking fee for %s is %s, expected %s",
			bookingID, booking.BookingFee.Status, models.FeePending)
	}

	now := time.Now()
	booking.BookingFee.Status = models.FeeHeld
	booking.BookingFee.PaymentIntentID = paymentIntentID
	booking.BookingFee.HeldAt = &now
	booking.Status = models.BookingConfirmed
	if err := s.Bookings.Update(booking); err != nil {
		return nil, err
	}

	s.Logger.Info("booking fee held in escrow",
		zap.String("bookingId", bookingID), zap.Float64("amount", booking.BookingFee.Amount))
	return booking, nil
}

// MarkCompleted closes the job and schedules the escrow release after the
// dispute window.
func (s *DefaultService) MarkCompleted(ctx context.Context, bookingID string) error {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return err
	}
	if booking.BookingFee.Status != models.FeeHeld {
		return fmt.Errorf("cannot complete booking %s: fee is %s", bookingID, booking.BookingFee.Status)
	}
	if booking.Status != models.BookingConfirmed && booking.Status != models.BookingInProgress {
		return fmt.Errorf("cannot complete booking %s in status %s", bookingID, booking.Status)
	}

	booking.Status = models.BookingCompleted
	if err := s.Bookings.Update(booking); err != nil {
		return err
	}

	if s.Tasks != nil {
		task, err := cron.NewFeeReleaseTask(bookingID)
		if err == nil {
			_, err = s.Tasks.Enqueue(task, asynq.ProcessIn(feeReleaseDelay))
		}
		if err != nil {
			s.Logger.Warn("failed to schedule fee release", zap.String("bookingId", bookingID), zap.Error(err))
		}
	}
	return nil
}

// ReleaseFee settles a held fee once the booking completed.
func (s *DefaultService) ReleaseFee(ctx context.Context, bookingID string) error {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return err
	}
	if booking.BookingFee.Status != models.FeeHeld {
		return fmt.Errorf("cannot release fee for booking %s: fee is %s", bookingID, booking.BookingFee.Status)
	}
	if booking.Status == models.BookingDisputed {
		s.Logger.Info("skipping fee release for disputed booking", zap.String("bookingId", bookingID))
		return nil
	}
	if booking.Status != models.BookingCompleted {
		return fmt.Errorf("cannot release fee for booking %s in status %s", bookingID, booking.Status)
	}

	now := time.Now()
	booking.BookingFee.Status = models.FeeReleased
	booking.BookingFee.SettledAt = &now
	if err := s.Bookings.Update(booking); err != nil {
		return err
	}
	s.Logger.Info("booking fee released", zap.String("bookingId", bookingID))
	return nil
}

// RefundFee returns a held fee to the customer on cancellation or dispute.
func (s *DefaultService) RefundFee(ctx context.Context, bookingID string) error {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return err
	}
	if booking.BookingFee.Status != models.FeeHeld {
		return fmt.Errorf("cannot refund fee for booking %s: fee is %s", bookingID, booking.BookingFee.Status)
	}

	now := time.Now()
	booking.BookingFee.Status = models.FeeRefunded
	booking.BookingFee.SettledAt = &now
	if booking.Status != models.BookingDisputed {
		booking.Status = models.BookingCancelled
	}
	if err := s.Bookings.Update(booking); err != nil {
		return err
	}
	s.Logger.Info("booking fee refunded", zap.String("bookingId", bookingID))
	return nil
}
