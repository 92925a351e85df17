package matching

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	matchingRepo "fundihub/database/repository/matching"
	userRepo "fundihub/database/repository/user"
	"fundihub/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"fundihub/cron"
)

// Service defines the interface for technician matching.
type Service interface {
	// FindTechnicians scores and ranks candidates for a request, persists the
	// result and returns it.
	FindTechnicians(ctx context.Context, req models.ServiceRequest) (*models.Matching, error)
	// ViewMatch transitions a suggested match to viewed and returns it.
	ViewMatch(ctx context.Context, matchID string) (*models.Matching, error)
	// RejectMatch finalizes a match as rejected.
	RejectMatch(ctx context.Context, matchID string) error
	// ExpireMatch finalizes a stale match; invoked by the background worker.
	ExpireMatch(ctx context.Context, matchID string) error
}

// DefaultService implements Service.
type DefaultService struct {
	Users   userRepo.UserRepository
	Matches matchingRepo.MatchingRepository
	Scorer  *Scorer
	Tasks   *asynq.Client
	Logger  *zap.Logger

	DefaultRadiusKm float64
	TopN            int
	MatchTTL        time.Duration
}

func (s *DefaultService) topN() int {
	if s.TopN <= 0 {
		return 10
	}
	return s.TopN
}

func (s *DefaultService) radiusFor(prefs models.SearchPreferences) float64 {
	if prefs.MaxRadiusKm > 0 {
		return prefs.MaxRadiusKm
	}
	if s.DefaultRadiusKm > 0 {
		return s.DefaultRadiusKm
	}
	return 25
}

// FindTechnicians runs the search pipeline: pre-filter the candidate pool,
// score candidates concurrently, rank, truncate and persist.
func (s *DefaultService) FindTechnicians(ctx context.Context, req models.ServiceRequest) (*models.Matching, error) {
	if req.Category == "" {
		return nil, fmt.Errorf("service category is required")
	}

	var prefs models.SearchPreferences
	weights := models.DefaultMatchWeights()
	if req.CustomerID != "" {
		customer, err := s.Users.GetByID(req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load customer %s: %w", req.CustomerID, err)
		}
		prefs = customer.Preferences
		if prefs.Weights != nil {
			if err := prefs.Weights.Validate(); err != nil {
				s.Logger.Warn("ignoring invalid saved match weights",
					zap.String("customerId", req.CustomerID), zap.Error(err))
			} else {
				weights = *prefs.Weights
			}
		}
	}
	radiusKm := s.radiusFor(prefs)

	pool, err := s.Users.SearchTechnicians(userRepo.TechnicianSearchCriteria{
		Category:      req.Category,
		LocationGeo:   req.LocationGeo,
		MaxDistanceKm: radiusKm,
	})
	if err != nil {
		return nil, fmt.Errorf("technician search failed: %w", err)
	}
	pool = filterCandidates(pool, prefs)

	candidates := s.scoreCandidates(ctx, req, pool, prefs, weights, radiusKm)

	// Rank by boosted score; equal boosted scores fall back to the unboosted
	// base score.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Overall != candidates[j].Overall {
			return candidates[i].Overall > candidates[j].Overall
		}
		return candidates[i].BaseScore > candidates[j].BaseScore
	})
	if len(candidates) > s.topN() {
		candidates = candidates[:s.topN()]
	}
	for i := range candidates {
		candidates[i].Reasons = matchReasons(candidates[i])
	}

	ttl := s.MatchTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	match := &models.Matching{
		ID:         uuid.New().String(),
		CustomerID: req.CustomerID,
		Request:    req,
		Candidates: candidates,
		Status:     models.MatchSuggested,
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(ttl),
	}
	if err := s.Matches.Create(match); err != nil {
		return nil, fmt.Errorf("failed to persist match: %w", err)
	}

	if s.Tasks != nil {
		task, err := cron.NewMatchExpiryTask(match.ID)
		if err == nil {
			_, err = s.Tasks.Enqueue(task, asynq.ProcessIn(ttl))
		}
		if err != nil {
			s.Logger.Warn("failed to schedule match expiry", zap.String("matchId", match.ID), zap.Error(err))
		}
	}

	s.Logger.Info("match computed",
		zap.String("matchId", match.ID),
		zap.String("category", req.Category),
		zap.Int("poolSize", len(pool)),
		zap.Int("ranked", len(candidates)))
	return match, nil
}

// filterCandidates applies the customer-level filters the store query cannot
// express: the block-list and the minimum-rating filter. Technicians with zero
// ratings are never excluded by a minimum-rating filter; new technicians must
// remain visible.
func filterCandidates(pool []models.User, prefs models.SearchPreferences) []models.User {
	blocked := make(map[string]bool, len(prefs.BlockedTechnicians))
	for _, id := range prefs.BlockedTechnicians {
		blocked[id] = true
	}

	filtered := pool[:0]
	for _, tech := range pool {
		if blocked[tech.ID] {
			continue
		}
		if prefs.MinRating > 0 && tech.Rating.Count > 0 && tech.Rating.Average < prefs.MinRating {
			continue
		}
		filtered = append(filtered, tech)
	}
	return filtered
}

// scoreCandidates fans scoring out across goroutines, one per candidate. A
// candidate whose scoring panics or fails is skipped rather than aborting the
// search.
func (s *DefaultService) scoreCandidates(ctx context.Context, req models.ServiceRequest,
	pool []models.User, prefs models.SearchPreferences, weights models.MatchWeights,
	radiusKm float64) []models.MatchCandidate {

	resultsCh := make(chan models.MatchCandidate, len(pool))
	var wg sync.WaitGroup

	for _, tech := range pool {
		wg.Add(1)
		go func(tech models.User) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.Logger.Error("candidate scoring panicked, skipping",
						zap.String("technicianId", tech.ID), zap.Any("panic", r))
				}
			}()
			resultsCh <- s.Scorer.Score(ctx, req, &tech, prefs, weights, radiusKm)
		}(tech)
	}

	wg.Wait()
	close(resultsCh)

	candidates := make([]models.MatchCandidate, 0, len(pool))
	for c := range resultsCh {
		candidates = append(candidates, c)
	}
	return candidates
}

// ViewMatch marks a suggested match as viewed. Terminal matches are returned
// unchanged.
func (s *DefaultService) ViewMatch(ctx context.Context, matchID string) (*models.Matching, error) {
	match, err := s.Matches.GetByID(matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchSuggested {
		if err := s.Matches.UpdateStatus(matchID, models.MatchViewed, ""); err != nil {
			return nil, err
		}
		match.Status = models.MatchViewed
	}
	return match, nil
}

// RejectMatch finalizes the match as rejected. Rejection does not re-rank
// anything; it only affects future searches through preference learning.
func (s *DefaultService) RejectMatch(ctx context.Context, matchID string) error {
	match, err := s.Matches.GetByID(matchID)
	if err != nil {
		return err
	}
	if match.Terminal() {
		return fmt.Errorf("match %s is already %s", matchID, match.Status)
	}
	return s.Matches.UpdateStatus(matchID, models.MatchRejected, "")
}

// ExpireMatch finalizes a match that was never accepted. Already-terminal
// matches are left alone.
func (s *DefaultService) ExpireMatch(ctx context.Context, matchID string) error {
	match, err := s.Matches.GetByID(matchID)
	if err != nil {
		return err
	}
	if match.Terminal() {
		return nil
	}
	s.Logger.Info("expiring stale match", zap.String("matchId", matchID))
	return s.Matches.UpdateStatus(matchID, models.MatchExpired, "")
}
