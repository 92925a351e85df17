package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pricingRepo "fundihub/database/repository/pricing"
	"fundihub/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const activeConfigCacheKey = "pricing:active_config"

// FallbackServiceType is used when the exact (category, type) pair has no
// catalogue entry. The fallback applies to the type only; an unknown category
// always fails.
const FallbackServiceType = "general"

// ConfigResolver supplies the active pricing configuration.
type ConfigResolver interface {
	ActiveConfig(ctx context.Context) (*models.PricingConfig, error)
}

// CachedConfigResolver reads the active config through a Redis cache, falling
// back to the repository on a miss.
type CachedConfigResolver struct {
	Repo   pricingRepo.PricingConfigRepository
	Cache  *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

// ActiveConfig returns the active pricing config. Cache failures degrade to a
// repository read; only a genuinely missing active config is an error.
func (r *CachedConfigResolver) ActiveConfig(ctx context.Context) (*models.PricingConfig, error) {
	if r.Cache != nil {
		if data, err := r.Cache.Get(ctx, activeConfigCacheKey).Result(); err == nil {
			var cfg models.PricingConfig
			if err := json.Unmarshal([]byte(data), &cfg); err == nil {
				return &cfg, nil
			}
			r.Logger.Warn("discarding corrupt cached pricing config")
		}
	}

	cfg, err := r.Repo.GetActive()
	if err != nil {
		if errors.Is(err, pricingRepo.ErrNoActiveConfig) {
			return nil, newError(CodeConfigNotFound, "no active pricing configuration")
		}
		return nil, err
	}

	if r.Cache != nil {
		if data, err := json.Marshal(cfg); err == nil {
			ttl := r.TTL
			if ttl <= 0 {
				ttl = 5 * time.Minute
			}
			if err := r.Cache.Set(ctx, activeConfigCacheKey, data, ttl).Err(); err != nil {
				r.Logger.Warn("failed to cache active pricing config", zap.Error(err))
			}
		}
	}
	return cfg, nil
}

// Invalidate drops the cached active config. Called after a version swap.
func (r *CachedConfigResolver) Invalidate(ctx context.Context) {
	if r.Cache == nil {
		return
	}
	if err := r.Cache.Del(ctx, activeConfigCacheKey).Err(); err != nil {
		r.Logger.Warn("failed to invalidate pricing config cache", zap.Error(err))
	}
}

// ResolveServicePrice looks up the catalogue entry for (category, type). When
// the exact pair is absent it falls back to (category, "general"); service
// catalogs are incomplete and the general entry prices the category. When the
// fallback also misses, the category itself is unknown. The fallback never
// substitutes a different category.
func ResolveServicePrice(cfg *models.PricingConfig, category, serviceType string) (*models.ServicePrice, *Error) {
	if serviceType == "" {
		serviceType = FallbackServiceType
	}

	var fallback *models.ServicePrice
	for i := range cfg.ServicePrices {
		entry := &cfg.ServicePrices[i]
		if !entry.IsActive || entry.Category != category {
			continue
		}
		if entry.Type == serviceType {
			return entry, nil
		}
		if entry.Type == FallbackServiceType {
			fallback = entry
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, newError(CodeUnknownCategory,
		"no price configured for category %q (type %q)", category, serviceType)
}
