package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielvsantos/finance-dashboard/internal/model"
	"github.com/danielvsantos/finance-dashboard/internal/service"
)

// UpsertCacheBucket inserts a bucket or fully replaces the numeric fields
// and breakdown of an existing row with the same grouping tuple. Rerunning
// an aggregation therefore produces the same stored state as a single run.
func (s *SQLiteStorage) UpsertCacheBucket(ctx context.Context, bucket *model.CacheBucket) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBucket(bucket); err != nil {
		return err
	}

	breakdown := bucket.Breakdown
	if breakdown == nil {
		breakdown = map[string]model.CategoryTotals{}
	}
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown for bucket %s: %w", bucket.Key(), err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analytics_cache (
			year, month, currency, country, macro_category,
			revenue, expenses, revenue_original, expenses_original,
			breakdown, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(year, month, currency, country, macro_category) DO UPDATE SET
			revenue = excluded.revenue,
			expenses = excluded.expenses,
			revenue_original = excluded.revenue_original,
			expenses_original = excluded.expenses_original,
			breakdown = excluded.breakdown,
			updated_at = excluded.updated_at`,
		bucket.Year, bucket.Month, bucket.Currency, bucket.Country, bucket.Macro,
		bucket.Revenue, bucket.Expenses, bucket.RevenueOriginal, bucket.ExpensesOriginal,
		string(breakdownJSON), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cache bucket %s: %w", bucket.Key(), err)
	}

	return nil
}

// ClearCache deletes all analytics cache rows and returns the number
// deleted. Safe to call on an empty cache.
func (s *SQLiteStorage) ClearCache(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM analytics_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear analytics cache: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted cache rows: %w", err)
	}

	slog.Info("cleared analytics cache", "deleted", deleted)
	return deleted, nil
}

// QueryCache returns cache buckets matching the filter, ordered by year
// then month for stable output.
func (s *SQLiteStorage) QueryCache(ctx context.Context, filter service.CacheFilter) ([]model.CacheBucket, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCurrencyCode(filter.Currency); err != nil {
		return nil, err
	}

	query := strings.Builder{}
	query.WriteString(`
		SELECT year, month, currency, country, macro_category,
			revenue, expenses, revenue_original, expenses_original,
			breakdown, updated_at
		FROM analytics_cache
		WHERE currency = ?`)
	args := []any{filter.Currency}

	switch {
	case len(filter.Years) > 0:
		query.WriteString(` AND year IN (` + placeholders(len(filter.Years)) + `)`)
		for _, year := range filter.Years {
			args = append(args, year)
		}
	case filter.StartYear != 0 || filter.EndYear != 0:
		query.WriteString(` AND year >= ? AND year <= ?`)
		args = append(args, filter.StartYear, filter.EndYear)
	}

	if len(filter.Countries) > 0 {
		query.WriteString(` AND country IN (` + placeholders(len(filter.Countries)) + `)`)
		for _, country := range filter.Countries {
			args = append(args, country)
		}
	}

	if len(filter.Macros) > 0 {
		query.WriteString(` AND macro_category IN (` + placeholders(len(filter.Macros)) + `)`)
		for _, macro := range filter.Macros {
			args = append(args, macro)
		}
	}

	query.WriteString(` ORDER BY year, month, country, macro_category`)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics cache: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var buckets []model.CacheBucket
	for rows.Next() {
		var bucket model.CacheBucket
		var breakdownJSON string
		err := rows.Scan(
			&bucket.Year, &bucket.Month, &bucket.Currency, &bucket.Country, &bucket.Macro,
			&bucket.Revenue, &bucket.Expenses, &bucket.RevenueOriginal, &bucket.ExpensesOriginal,
			&breakdownJSON, &bucket.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cache bucket: %w", err)
		}

		if err := json.Unmarshal([]byte(breakdownJSON), &bucket.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode breakdown for bucket %s: %w", bucket.Key(), err)
		}

		buckets = append(buckets, bucket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache buckets: %w", err)
	}

	return buckets, nil
}

// placeholders builds a "?, ?, ..." list of the given length.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
