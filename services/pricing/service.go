package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	userRepo "fundihub/database/repository/user"
	"fundihub/models"

	"go.uber.org/zap"
)

// QuoteRequest is the caller-facing input to the pricing operations. The
// service resolves customer and technician records before delegating to the
// Calculator.
type QuoteRequest struct {
	CustomerID      string           `json:"customerId"`
	Category        string           `json:"category"`
	ServiceType     string           `json:"serviceType"`
	Quantity        int              `json:"quantity"`
	ServiceLocation *models.GeoPoint `json:"serviceLocation,omitempty"`
	TechnicianID    string           `json:"technicianId,omitempty"`
	Urgency         string           `json:"urgency,omitempty"`
	ScheduledAt     time.Time        `json:"scheduledAt"`
}

// TechnicianQuote pairs one technician with their full calculation.
type TechnicianQuote struct {
	TechnicianID   string                 `json:"technicianId"`
	TechnicianName string                 `json:"technicianName"`
	Breakdown      *models.PriceBreakdown `json:"breakdown"`
}

// Comparison ranks quotes across candidate technicians, cheapest first.
type Comparison struct {
	Comparisons   []TechnicianQuote `json:"comparisons"`
	Cheapest      *TechnicianQuote  `json:"cheapest,omitempty"`
	MostExpensive *TechnicianQuote  `json:"mostExpensive,omitempty"`
}

// Service exposes the pricing operations to collaborators.
type Service interface {
	// CalculatePrice runs the full pipeline; when req.TechnicianID is set the
	// technician's record and location feed the tier and distance steps.
	CalculatePrice(ctx context.Context, req QuoteRequest) QuoteResult
	// GetEstimate quotes without a bound technician, substituting the
	// customer's own location as a distance stand-in.
	GetEstimate(ctx context.Context, req QuoteRequest) QuoteResult
	// CompareTechnicianPrices runs one full calculation per candidate and
	// sorts ascending by total.
	CompareTechnicianPrices(ctx context.Context, req QuoteRequest, technicianIDs []string) (*Comparison, error)
	// QuoteForTechnician prices the request against an already-loaded
	// technician record (used by matching for the price-fit score).
	QuoteForTechnician(ctx context.Context, req QuoteRequest, tech *models.User) QuoteResult
}

// DefaultService implements Service.
type DefaultService struct {
	Calc   *Calculator
	Users  userRepo.UserRepository
	Logger *zap.Logger
}

func (s *DefaultService) params(req QuoteRequest) QuoteParams {
	return QuoteParams{
		CustomerID:      req.CustomerID,
		Category:        req.Category,
		ServiceType:     req.ServiceType,
		Quantity:        req.Quantity,
		ServiceLocation: req.ServiceLocation,
		Urgency:         req.Urgency,
		ScheduledAt:     req.ScheduledAt,
	}
}

// priorBookings resolves the customer's booking history for discount rules.
// A missing customer record prices as a first-time customer would not --
// unknown history disables discounts rather than failing the quote.
func (s *DefaultService) priorBookings(req QuoteRequest) int {
	if req.CustomerID == "" {
		return -1
	}
	customer, err := s.Users.GetByID(req.CustomerID)
	if err != nil {
		s.Logger.Warn("customer lookup failed, skipping discounts",
			zap.String("customerId", req.CustomerID), zap.Error(err))
		return -1
	}
	return customer.Stats.TotalBookings
}

// CalculatePrice prices the request, binding the technician when provided.
func (s *DefaultService) CalculatePrice(ctx context.Context, req QuoteRequest) QuoteResult {
	p := s.params(req)
	p.PriorBookings = s.priorBookings(req)

	if req.TechnicianID != "" {
		tech, err := s.Users.GetByID(req.TechnicianID)
		if err != nil {
			return failure(newError(CodeTechnicianNotFound, "technician %s not found", req.TechnicianID))
		}
		p.Technician = tech
		if len(tech.LocationGeo.Coordinates) == 2 {
			loc := tech.LocationGeo
			p.TechnicianLocation = &loc
		}
	}
	return s.Calc.Quote(ctx, p)
}

// QuoteForTechnician prices against a technician record the caller already
// holds, avoiding a second directory lookup.
func (s *DefaultService) QuoteForTechnician(ctx context.Context, req QuoteRequest, tech *models.User) QuoteResult {
	p := s.params(req)
	p.PriorBookings = s.priorBookings(req)
	p.Technician = tech
	if tech != nil && len(tech.LocationGeo.Coordinates) == 2 {
		loc := tech.LocationGeo
		p.TechnicianLocation = &loc
	}
	return s.Calc.Quote(ctx, p)
}

// GetEstimate quotes with no technician bound. The customer's own location
// stands in for the technician's so the distance component is representative.
func (s *DefaultService) GetEstimate(ctx context.Context, req QuoteRequest) QuoteResult {
	p := s.params(req)
	p.PriorBookings = s.priorBookings(req)
	p.TechnicianLocation = req.ServiceLocation
	return s.Calc.Quote(ctx, p)
}

// CompareTechnicianPrices quotes every candidate and ranks by total, cheapest
// first. Candidates whose quote fails are skipped rather than failing the
// whole comparison.
func (s *DefaultService) CompareTechnicianPrices(ctx context.Context, req QuoteRequest, technicianIDs []string) (*Comparison, error) {
	if len(technicianIDs) == 0 {
		return nil, fmt.Errorf("no technicians to compare")
	}

	var quotes []TechnicianQuote
	for _, id := range technicianIDs {
		tech, err := s.Users.GetByID(id)
		if err != nil {
			s.Logger.Warn("skipping technician in comparison", zap.String("technicianId", id), zap.Error(err))
			continue
		}
		result := s.QuoteForTechnician(ctx, req, tech)
		if !result.Success {
			s.Logger.Warn("skipping technician with failed quote",
				zap.String("technicianId", id), zap.String("code", result.Err.Code))
			continue
		}
		quotes = append(quotes, TechnicianQuote{
			TechnicianID:   tech.ID,
			TechnicianName: tech.Name,
			Breakdown:      result.Breakdown,
		})
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no comparable quotes for the given technicians")
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Breakdown.TotalAmount < quotes[j].Breakdown.TotalAmount
	})

	return &Comparison{
		Comparisons:   quotes,
		Cheapest:      &quotes[0],
		MostExpensive: &quotes[len(quotes)-1],
	}, nil
}
