package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielvsantos/finance-dashboard/internal/common"
	"github.com/danielvsantos/finance-dashboard/internal/model"
	"github.com/danielvsantos/finance-dashboard/internal/service"
)

// Config holds configuration options for the resolver.
type Config struct {
	// Throttle is the minimum spacing between consecutive provider
	// calls. It never delays storage hits or memoized lookups.
	Throttle time.Duration
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() Config {
	return Config{
		Throttle: time.Second,
	}
}

// Resolver resolves conversion multipliers for (year, month, currency
// pair) tuples. Lookup order: identity short-circuit, local rate store,
// external provider (throttled, with the fetched value persisted). Within
// a single run each pair is fetched at most once; known misses are also
// memoized so a failing pair does not hammer the provider.
type Resolver struct {
	store     service.Storage
	source    service.RateSource
	resolved  map[string]float64
	missing   map[string]struct{}
	lastFetch time.Time
	throttle  time.Duration
}

// NewResolver creates a resolver over the given store and external source.
func NewResolver(store service.Storage, source service.RateSource, config Config) *Resolver {
	return &Resolver{
		store:    store,
		source:   source,
		throttle: config.Throttle,
		resolved: make(map[string]float64),
		missing:  make(map[string]struct{}),
	}
}

// Resolve returns the conversion multiplier for the tuple, or
// common.ErrRateUnavailable when neither the store nor the provider has a
// usable rate. Callers must skip the affected conversion on that error,
// never substitute 1 or 0.
func (r *Resolver) Resolve(ctx context.Context, year, month int, from, to string) (float64, error) {
	if from == to {
		// Identity rates are never looked up or persisted.
		return 1, nil
	}

	key := model.RateKey(year, month, from, to)
	if value, ok := r.resolved[key]; ok {
		return value, nil
	}
	if _, ok := r.missing[key]; ok {
		return 0, fmt.Errorf("%w: %s", common.ErrRateUnavailable, key)
	}

	stored, err := r.store.GetRate(ctx, year, month, from, to)
	if err == nil {
		r.resolved[key] = stored.Value
		return stored.Value, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return 0, fmt.Errorf("rate lookup failed for %s: %w", key, err)
	}

	value, err := r.fetch(ctx, year, month, from, to)
	if err != nil {
		r.missing[key] = struct{}{}
		if errors.Is(err, common.ErrRateUnavailable) || errors.Is(err, common.ErrProviderResponse) {
			return 0, fmt.Errorf("%w: %s", common.ErrRateUnavailable, key)
		}
		// Provider/network failures degrade to a skip as well; the run
		// continues and the gap shows up in the auditor.
		slog.Warn("rate provider call failed, skipping conversion",
			"key", key,
			"error", err)
		return 0, fmt.Errorf("%w: %s", common.ErrRateUnavailable, key)
	}

	rate := &model.CurrencyRate{
		Year:  year,
		Month: month,
		From:  from,
		To:    to,
		Value: value,
	}
	if err := r.store.UpsertRate(ctx, rate); err != nil {
		return 0, fmt.Errorf("failed to persist rate %s: %w", key, err)
	}

	r.resolved[key] = value
	return value, nil
}

// fetch calls the external provider, spacing calls by the configured
// throttle to respect upstream rate limits.
func (r *Resolver) fetch(ctx context.Context, year, month int, from, to string) (float64, error) {
	if r.throttle > 0 && !r.lastFetch.IsZero() {
		wait := r.throttle - time.Since(r.lastFetch)
		if wait > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	r.lastFetch = time.Now()

	return r.source.FetchRate(ctx, year, month, from, to)
}
