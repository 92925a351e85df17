package matchingRepo

import (
	"encoding/json"
	"time"

	"fundihub/models"

	"github.com/go-redis/redis/v8"
)

const matchKeyPrefix = "match:"

// CachedMatchingRepo wraps a MatchingRepository with a Redis read-through
// cache. Status writes drop the cached copy so every reader sees transitions,
// including the accept performed by the booking flow.
type CachedMatchingRepo struct {
	Inner MatchingRepository
	Cache *redis.Client
	TTL   time.Duration
}

// NewCachedMatchingRepo returns a cached repository over inner.
func NewCachedMatchingRepo(inner MatchingRepository, cache *redis.Client, ttl time.Duration) *CachedMatchingRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedMatchingRepo{Inner: inner, Cache: cache, TTL: ttl}
}

// Create persists the match and primes the cache.
func (r *CachedMatchingRepo) Create(match *models.Matching) error {
	if err := r.Inner.Create(match); err != nil {
		return err
	}
	r.set(match)
	return nil
}

// GetByID serves from the cache when possible, falling back to the store.
func (r *CachedMatchingRepo) GetByID(id string) (*models.Matching, error) {
	if r.Cache != nil {
		ctx, cancel := newContext(2 * time.Second)
		defer cancel()
		if data, err := r.Cache.Get(ctx, matchKeyPrefix+id).Result(); err == nil {
			var match models.Matching
			if err := json.Unmarshal([]byte(data), &match); err == nil {
				return &match, nil
			}
		}
	}

	match, err := r.Inner.GetByID(id)
	if err != nil {
		return nil, err
	}
	r.set(match)
	return match, nil
}

// UpdateStatus writes through and invalidates the cached copy.
func (r *CachedMatchingRepo) UpdateStatus(id, status, selectedTechnician string) error {
	if err := r.Inner.UpdateStatus(id, status, selectedTechnician); err != nil {
		return err
	}
	if r.Cache != nil {
		ctx, cancel := newContext(2 * time.Second)
		defer cancel()
		r.Cache.Del(ctx, matchKeyPrefix+id)
	}
	return nil
}

func (r *CachedMatchingRepo) set(match *models.Matching) {
	if r.Cache == nil || match == nil {
		return
	}
	data, err := json.Marshal(match)
	if err != nil {
		return
	}
	ttl := r.TTL
	if until := time.Until(match.ExpiresAt); until > 0 && until < ttl {
		ttl = until
	}
	ctx, cancel := newContext(2 * time.Second)
	defer cancel()
	r.Cache.Set(ctx, matchKeyPrefix+match.ID, data, ttl)
}
