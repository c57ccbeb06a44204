// Package analytics implements the multi-currency aggregation engine and
// the query service over the precomputed analytics cache.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielvsantos/finance-dashboard/internal/common"
	"github.com/danielvsantos/finance-dashboard/internal/model"
	"github.com/danielvsantos/finance-dashboard/internal/service"
	"github.com/schollz/progressbar/v3"
)

// DefaultTargetCurrencies are the currencies the cache is recomputed for
// when no explicit set is configured.
var DefaultTargetCurrencies = []string{"USD", "EUR", "BRL"}

// Engine walks every transaction, converts amounts into each target
// currency via the rate resolver, and upserts the aggregated buckets into
// the analytics cache.
type Engine struct {
	store    service.Storage
	resolver service.RateResolver
	config   Config
}

// Config holds configuration options for the aggregation engine.
type Config struct {
	// ShowProgress renders a terminal progress bar over the
	// year x currency passes.
	ShowProgress bool
}

// RunOptions selects the scope of one aggregation run.
type RunOptions struct {
	// Years to aggregate; empty means every year present in the store.
	Years []int
	// TargetCurrencies to normalize into; empty falls back to
	// DefaultTargetCurrencies.
	TargetCurrencies []string
	// Rebuild clears the whole cache before aggregating.
	Rebuild bool
}

// RunStats summarizes a completed aggregation run.
type RunStats struct {
	Gaps          []model.RateGap
	Transactions  int
	Buckets       int
	SkippedNoRate int
	CacheCleared  int64
}

// NewEngine creates an aggregation engine.
func NewEngine(store service.Storage, resolver service.RateResolver, config Config) *Engine {
	return &Engine{
		store:    store,
		resolver: resolver,
		config:   config,
	}
}

// Run executes one aggregation pass. Every bucket write is an idempotent
// keyed upsert, so a crashed run can simply be re-invoked: already-written
// buckets are replaced with identical values and the rest are recomputed.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*RunStats, error) {
	years := opts.Years
	if len(years) == 0 {
		stored, err := e.store.DistinctTransactionYears(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate transaction years: %w", err)
		}
		years = stored
	}

	currencies := opts.TargetCurrencies
	if len(currencies) == 0 {
		currencies = DefaultTargetCurrencies
	}

	stats := &RunStats{}

	if opts.Rebuild {
		deleted, err := e.store.ClearCache(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to clear cache before rebuild: %w", err)
		}
		stats.CacheCleared = deleted
	}

	slog.Info("starting aggregation run",
		"years", years,
		"currencies", currencies,
		"rebuild", opts.Rebuild)

	var bar *progressbar.ProgressBar
	if e.config.ShowProgress {
		bar = progressbar.NewOptions(len(years)*len(currencies),
			progressbar.OptionSetDescription("Aggregating"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowElapsedTimeOnFinish(),
		)
	}

	seenGaps := make(map[string]struct{})

	for _, year := range years {
		transactions, err := e.store.GetTransactionsByYear(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("failed to load transactions for year %d: %w", year, err)
		}

		stats.Transactions += len(transactions)

		for _, currency := range currencies {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			buckets, skipped, gaps, err := e.aggregate(ctx, transactions, currency)
			if err != nil {
				return nil, err
			}
			stats.SkippedNoRate += skipped
			for _, gap := range gaps {
				key := model.RateKey(gap.Year, gap.Month, gap.From, gap.To)
				if _, ok := seenGaps[key]; !ok {
					seenGaps[key] = struct{}{}
					stats.Gaps = append(stats.Gaps, gap)
				}
			}

			for _, bucket := range buckets {
				if err := e.store.UpsertCacheBucket(ctx, bucket); err != nil {
					// Sibling buckets already written stay valid; the
					// failed key is surfaced for a targeted retry.
					return nil, fmt.Errorf("failed to write bucket %s: %w", bucket.Key(), err)
				}
				stats.Buckets++
			}

			if bar != nil {
				_ = bar.Add(1)
			}

			slog.Info("cache updated",
				"year", year,
				"currency", currency,
				"buckets", len(buckets),
				"skipped_no_rate", skipped)
		}
	}

	return stats, nil
}

// aggregate converts one year's transactions into a single target currency
// and groups them into cache buckets. Bucket sums are plain commutative
// additions, so iteration order never affects the stored state.
func (e *Engine) aggregate(ctx context.Context, transactions []model.AggregationRow, targetCurrency string) (map[string]*model.CacheBucket, int, []model.RateGap, error) {
	buckets := make(map[string]*model.CacheBucket)
	var skipped int
	var gaps []model.RateGap
	seenGaps := make(map[string]struct{})

	for i := range transactions {
		txn := &transactions[i]

		multiplier, err := e.resolver.Resolve(ctx, txn.Year, txn.Month, txn.Currency, targetCurrency)
		if err != nil {
			if errors.Is(err, common.ErrRateUnavailable) {
				// The transaction contributes nothing to THIS target
				// currency; other currencies' totals are unaffected.
				skipped++
				key := model.RateKey(txn.Year, txn.Month, txn.Currency, targetCurrency)
				if _, ok := seenGaps[key]; !ok {
					seenGaps[key] = struct{}{}
					gaps = append(gaps, model.RateGap{
						Year:  txn.Year,
						Month: txn.Month,
						From:  txn.Currency,
						To:    targetCurrency,
					})
				}
				continue
			}
			return nil, 0, nil, fmt.Errorf("rate resolution failed for transaction %s: %w", txn.ID, err)
		}

		bucket := e.bucketFor(buckets, txn, targetCurrency)
		amount := txn.Amount() * multiplier

		totals := bucket.Breakdown[txn.Taxonomy.Category]
		if txn.Credit > 0 {
			bucket.Revenue += amount
			bucket.RevenueOriginal += txn.Credit
			totals.Revenue += amount
		}
		if txn.Debit > 0 {
			// Debit rows have a negative signed amount; expenses
			// accumulate as positive magnitudes.
			bucket.Expenses += -amount
			bucket.ExpensesOriginal += txn.Debit
			totals.Expenses += -amount
		}
		bucket.Breakdown[txn.Taxonomy.Category] = totals
	}

	return buckets, skipped, gaps, nil
}

func (e *Engine) bucketFor(buckets map[string]*model.CacheBucket, txn *model.AggregationRow, targetCurrency string) *model.CacheBucket {
	key := fmt.Sprintf("%d-%d-%s-%s-%s", txn.Year, txn.Month, targetCurrency, txn.Country, txn.Taxonomy.Macro)
	bucket, ok := buckets[key]
	if !ok {
		bucket = &model.CacheBucket{
			Year:      txn.Year,
			Month:     txn.Month,
			Currency:  targetCurrency,
			Country:   txn.Country,
			Macro:     txn.Taxonomy.Macro,
			Breakdown: make(map[string]model.CategoryTotals),
		}
		buckets[key] = bucket
	}
	return bucket
}
