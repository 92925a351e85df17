package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"fundihub/models"
	"fundihub/services/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMatchRepo struct {
	mock.Mock
}

func (m *mockMatchRepo) Create(match *models.Matching) error {
	return m.Called(match).Error(0)
}

func (m *mockMatchRepo) GetByID(id string) (*models.Matching, error) {
	args := m.Called(id)
	if match := args.Get(0); match != nil {
		return match.(*models.Matching), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMatchRepo) UpdateStatus(id, status, selectedTechnician string) error {
	return m.Called(id, status, selectedTechnician).Error(0)
}

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Create(booking *models.Booking) error {
	return m.Called(booking).Error(0)
}

func (m *mockBookingRepo) GetByID(id string) (*models.Booking, error) {
	args := m.Called(id)
	if b := args.Get(0); b != nil {
		return b.(*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) Update(booking *models.Booking) error {
	return m.Called(booking).Error(0)
}

func (m *mockBookingRepo) ListByCustomer(customerID string) ([]models.Booking, error) {
	args := m.Called(customerID)
	if bs := args.Get(0); bs != nil {
		return bs.([]models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPricingService struct {
	mock.Mock
}

func (m *mockPricingService) CalculatePrice(ctx context.Context, req pricing.QuoteRequest) pricing.QuoteResult {
	return m.Called(ctx, req).Get(0).(pricing.QuoteResult)
}

func (m *mockPricingService) GetEstimate(ctx context.Context, req pricing.QuoteRequest) pricing.QuoteResult {
	return m.Called(ctx, req).Get(0).(pricing.QuoteResult)
}

func (m *mockPricingService) CompareTechnicianPrices(ctx context.Context, req pricing.QuoteRequest, ids []string) (*pricing.Comparison, error) {
	args := m.Called(ctx, req, ids)
	if c := args.Get(0); c != nil {
		return c.(*pricing.Comparison), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPricingService) QuoteForTechnician(ctx context.Context, req pricing.QuoteRequest, tech *models.User) pricing.QuoteResult {
	return m.Called(ctx, req, tech).Get(0).(pricing.QuoteResult)
}

func openMatch() *models.Matching {
	return &models.Matching{
		ID:         "m-1",
		CustomerID: "cust-1",
		Status:     models.MatchViewed,
		Request: models.ServiceRequest{
			CustomerID:  "cust-1",
			Category:    "plumbing",
			ServiceType: "pipe_repair",
			LocationGeo: models.NewGeoPoint(-1.2864, 36.8172),
			ScheduledAt: time.Now().Add(48 * time.Hour),
		},
		Candidates: []models.MatchCandidate{
			{TechnicianID: "tech-1", TechnicianName: "Juma"},
		},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func successfulQuote() pricing.QuoteResult {
	return pricing.QuoteResult{
		Success: true,
		Breakdown: &models.PriceBreakdown{
			Currency:    "KES",
			TotalAmount: 2000,
			BookingFee: models.BreakdownFee{
				Percentage:      20,
				Amount:          400,
				RemainingAmount: 1600,
			},
		},
	}
}

func newTestService(matches *mockMatchRepo, bookings *mockBookingRepo, prices *mockPricingService) *DefaultService {
	return &DefaultService{
		Matches:  matches,
		Bookings: bookings,
		Pricing:  prices,
		Logger:   zap.NewNop(),
	}
}

func TestAcceptMatchCreatesBooking(t *testing.T) {
	matches := new(mockMatchRepo)
	bookings := new(mockBookingRepo)
	prices := new(mockPricingService)
	svc := newTestService(matches, bookings, prices)

	matches.On("GetByID", "m-1").Return(openMatch(), nil)
	prices.On("CalculatePrice", mock.Anything, mock.MatchedBy(func(req pricing.QuoteRequest) bool {
		return req.TechnicianID == "tech-1" && req.Category == "plumbing"
	})).Return(successfulQuote())
	matches.On("UpdateStatus", "m-1", models.MatchAccepted, "tech-1").Return(nil)
	bookings.On("Create", mock.AnythingOfType("*models.Booking")).Return(nil)

	booking, err := svc.AcceptMatch(context.Background(), "m-1", "tech-1", time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "tech-1", booking.TechnicianID)
	assert.Equal(t, models.BookingPending, booking.Status)
	assert.Equal(t, models.FeePending, booking.BookingFee.Status)
	assert.Equal(t, 400.0, booking.BookingFee.Amount)
	assert.Equal(t, 1600.0, booking.BookingFee.RemainingAmount)
	matches.AssertExpectations(t)
	bookings.AssertExpectations(t)
}

func TestAcceptMatchFailsClosedOnPricingFailure(t *testing.T) {
	matches := new(mockMatchRepo)
	bookings := new(mockBookingRepo)
	prices := new(mockPricingService)
	svc := newTestService(matches, bookings, prices)

	matches.On("GetByID", "m-1").Return(openMatch(), nil)
	prices.On("CalculatePrice", mock.Anything, mock.Anything).Return(pricing.QuoteResult{
		Success: false,
		Err:     &pricing.Error{Code: pricing.CodeConfigNotFound, Message: "no active pricing configuration"},
	})

	_, err := svc.AcceptMatch(context.Background(), "m-1", "tech-1", time.Time{})
	require.Error(t, err)
	matches.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	bookings.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAcceptMatchFailsClosedOnNonPositiveFee(t *testing.T) {
	matches := new(mockMatchRepo)
	bookings := new(mockBookingRepo)
	prices := new(mockPricingService)
	svc := newTestService(matches, bookings, prices)

	quote := successfulQuote()
	quote.Breakdown.BookingFee.Amount = 0

	matches.On("GetByID", "m-1").Return(openMatch(), nil)
	prices.On("CalculatePrice", mock.Anything, mock.Anything).Return(quote)

	_, err := svc.AcceptMatch(context.Background(), "m-1", "tech-1", time.Time{})
	require.Error(t, err)

	var perr *pricing.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, pricing.CodeInvalidBookingFee, perr.Code)
	bookings.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAcceptMatchRejectsTerminalAndExpired(t *testing.T) {
	t.Run("terminal match", func(t *testing.T) {
		matches := new(mockMatchRepo)
		svc := newTestService(matches, new(mockBookingRepo), new(mockPricingService))

		done := openMatch()
		done.Status = models.MatchAccepted
		matches.On("GetByID", "m-1").Return(done, nil)

		_, err := svc.AcceptMatch(context.Background(), "m-1", "tech-1", time.Time{})
		assert.Error(t, err)
	})

	t.Run("expired match", func(t *testing.T) {
		matches := new(mockMatchRepo)
		svc := newTestService(matches, new(mockBookingRepo), new(mockPricingService))

		stale := openMatch()
		stale.ExpiresAt = time.Now().Add(-time.Minute)
		matches.On("GetByID", "m-1").Return(stale, nil)
		matches.On("UpdateStatus", "m-1", models.MatchExpired, "").Return(nil)

		_, err := svc.AcceptMatch(context.Background(), "m-1", "tech-1", time.Time{})
		assert.Error(t, err)
		matches.AssertExpectations(t)
	})

	t.Run("unknown technician", func(t *testing.T) {
		matches := new(mockMatchRepo)
		svc := newTestService(matches, new(mockBookingRepo), new(mockPricingService))

		matches.On("GetByID", "m-1").Return(openMatch(), nil)

		_, err := svc.AcceptMatch(context.Background(), "m-1", "tech-imposter", time.Time{})
		assert.Error(t, err)
	})
}

func heldBooking(status string) *models.Booking {
	now := time.Now()
	return &models.Booking{
		ID:           "b-1",
		CustomerID:   "cust-1",
		TechnicianID: "tech-1",
		Status:       status,
		BookingFee: models.EscrowFee{
			Amount:          400,
			RemainingAmount: 1600,
			Status:          models.FeeHeld,
			PaymentIntentID: "pi_123",
			HeldAt:          &now,
		},
	}
}

func TestConfirmFeeHeldTransition(t *testing.T) {
	bookings := new(mockBookingRepo)
	svc := newTestService(new(mockMatchRepo), bookings, new(mockPricingService))

	pending := &models.Booking{
		ID:         "b-1",
		Status:     models.BookingPending,
		BookingFee: models.EscrowFee{Amount: 400, Status: models.FeePending},
	}
	bookings.On("GetByID", "b-1").Return(pending, nil)
	bookings.On("Update", mock.AnythingOfType("*models.Booking")).Return(nil)

	booking, err := svc.ConfirmFeeHeld(context.Background(), "b-1", "pi_123")
	require.NoError(t, err)
	assert.Equal(t, models.FeeHeld, booking.BookingFee.Status)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
	assert.Equal(t, "pi_123", booking.BookingFee.PaymentIntentID)
	require.NotNil(t, booking.BookingFee.HeldAt)

	// Confirming twice is refused: held is not pending.
	bookings2 := new(mockBookingRepo)
	svc = newTestService(new(mockMatchRepo), bookings2, new(mockPricingService))
	bookings2.On("GetByID", "b-1").Return(heldBooking(models.BookingConfirmed), nil)

	_, err = svc.ConfirmFeeHeld(context.Background(), "b-1", "pi_456")
	assert.Error(t, err)
	bookings2.AssertNotCalled(t, "Update", mock.Anything)
}

func TestReleaseFeeGuards(t *testing.T) {
	t.Run("releases a held fee on a completed booking", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		svc := newTestService(new(mockMatchRepo), bookings, new(mockPricingService))

		bookings.On("GetByID", "b-1").Return(heldBooking(models.BookingCompleted), nil)
		bookings.On("Update", mock.MatchedBy(func(b *models.Booking) bool {
			return b.BookingFee.Status == models.FeeReleased && b.BookingFee.SettledAt != nil
		})).Return(nil)

		require.NoError(t, svc.ReleaseFee(context.Background(), "b-1"))
		bookings.AssertExpectations(t)
	})

	t.Run("skips disputed bookings without error", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		svc := newTestService(new(mockMatchRepo), bookings, new(mockPricingService))

		bookings.On("GetByID", "b-1").Return(heldBooking(models.BookingDisputed), nil)

		require.NoError(t, svc.ReleaseFee(context.Background(), "b-1"))
		bookings.AssertNotCalled(t, "Update", mock.Anything)
	})

	t.Run("refuses a fee that is not held", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		svc := newTestService(new(mockMatchRepo), bookings, new(mockPricingService))

		b := heldBooking(models.BookingCompleted)
		b.BookingFee.Status = models.FeeReleased
		bookings.On("GetByID", "b-1").Return(b, nil)

		assert.Error(t, svc.ReleaseFee(context.Background(), "b-1"))
	})
}

func TestRefundFeeCancelsBooking(t *testing.T) {
	bookings := new(mockBookingRepo)
	svc := newTestService(new(mockMatchRepo), bookings, new(mockPricingService))

	bookings.On("GetByID", "b-1").Return(heldBooking(models.BookingConfirmed), nil)
	bookings.On("Update", mock.MatchedBy(func(b *models.Booking) bool {
		return b.BookingFee.Status == models.FeeRefunded && b.Status == models.BookingCancelled
	})).Return(nil)

	require.NoError(t, svc.RefundFee(context.Background(), "b-1"))
	bookings.AssertExpectations(t)
}

func TestMarkCompletedRequiresHeldFee(t *testing.T) {
	bookings := new(mockBookingRepo)
	svc := newTestService(new(mockMatchRepo), bookings, new(mockPricingService))

	pending := &models.Booking{
		ID:         "b-1",
		Status:     models.BookingPending,
		BookingFee: models.EscrowFee{Amount: 400, Status: models.FeePending},
	}
	bookings.On("GetByID", "b-1").Return(pending, nil)

	assert.Error(t, svc.MarkCompleted(context.Background(), "b-1"))
	bookings.AssertNotCalled(t, "Update", mock.Anything)
}

func TestMarkCompletedTransition(t *testing.T) {
	bookings := new(mockBookingRepo)
	svc := newTestService(new(mockMatchRepo), bookings, new(mockPricingService))

	bookings.On("GetByID", "b-1").Return(heldBooking(models.BookingInProgress), nil)
	bookings.On("Update", mock.MatchedBy(func(b *models.Booking) bool {
		return b.Status == models.BookingCompleted
	})).Return(nil)

	require.NoError(t, svc.MarkCompleted(context.Background(), "b-1"))
	bookings.AssertExpectations(t)
}

func TestListBookingsAppliesCustomerView(t *testing.T) {
	bookings := new(mockBookingRepo)
	svc := newTestService(new(mockMatchRepo), bookings, new(mockPricingService))

	bookings.On("ListByCustomer", "cust-1").Return([]models.Booking{
		{
			ID: "b-1", TechnicianID: "tech-1", TechnicianName: "Juma",
			BookingFee: models.EscrowFee{Status: models.FeePending},
		},
		{
			ID: "b-2", TechnicianID: "tech-2", TechnicianName: "Wanjiku",
			BookingFee: models.EscrowFee{Status: models.FeeHeld},
		},
	}, nil)

	list, err := svc.ListBookings(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Empty(t, list[0].TechnicianID, "pending fee hides the technician")
	assert.Equal(t, "tech-2", list[1].TechnicianID)
}

func TestCustomerViewHidesTechnicianUntilFeeHeld(t *testing.T) {
	b := models.Booking{
		TechnicianID:   "tech-1",
		TechnicianName: "Juma",
		BookingFee:     models.EscrowFee{Status: models.FeePending},
	}
	view := b.CustomerView()
	assert.Empty(t, view.TechnicianID)
	assert.Empty(t, view.TechnicianName)

	b.BookingFee.Status = models.FeeHeld
	view = b.CustomerView()
	assert.Equal(t, "tech-1", view.TechnicianID)
	assert.Equal(t, "Juma", view.TechnicianName)
}
