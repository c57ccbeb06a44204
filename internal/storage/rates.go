package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielvsantos/finance-dashboard/internal/common"
	"github.com/danielvsantos/finance-dashboard/internal/model"
)

// GetRate returns the stored rate for the exact (year, month, from, to)
// tuple, or common.ErrNotFound when no row exists.
func (s *SQLiteStorage) GetRate(ctx context.Context, year, month int, from, to string) (*model.CurrencyRate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCurrencyCode(from); err != nil {
		return nil, err
	}
	if err := validateCurrencyCode(to); err != nil {
		return nil, err
	}

	var rate model.CurrencyRate
	err := s.db.QueryRowContext(ctx, `
		SELECT year, month, currency_from, currency_to, value, updated_at
		FROM currency_rates
		WHERE year = ? AND month = ? AND currency_from = ? AND currency_to = ?`,
		year, month, from, to,
	).Scan(&rate.Year, &rate.Month, &rate.From, &rate.To, &rate.Value, &rate.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: rate %s", common.ErrNotFound, model.RateKey(year, month, from, to))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rate: %w", err)
	}

	return &rate, nil
}

// UpsertRate inserts a rate or replaces the value of an existing row with
// the same (year, month, from, to) tuple. Resolving a pair twice never
// creates duplicate rows.
func (s *SQLiteStorage) UpsertRate(ctx context.Context, rate *model.CurrencyRate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRate(rate); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO currency_rates (year, month, currency_from, currency_to, value, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(year, month, currency_from, currency_to) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		rate.Year, rate.Month, rate.From, rate.To, rate.Value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rate %s: %w", rate.Key(), err)
	}

	slog.Debug("saved currency rate",
		"year", rate.Year,
		"month", rate.Month,
		"from", rate.From,
		"to", rate.To,
		"value", rate.Value)
	return nil
}

// GetRatesByYear returns all stored rates for a year.
func (s *SQLiteStorage) GetRatesByYear(ctx context.Context, year int) ([]model.CurrencyRate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryRates(ctx, `
		SELECT year, month, currency_from, currency_to, value, updated_at
		FROM currency_rates
		WHERE year = ?
		ORDER BY month, currency_from, currency_to`, year)
}

// GetAllRates returns every stored rate.
func (s *SQLiteStorage) GetAllRates(ctx context.Context) ([]model.CurrencyRate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryRates(ctx, `
		SELECT year, month, currency_from, currency_to, value, updated_at
		FROM currency_rates
		ORDER BY year, month, currency_from, currency_to`)
}

func (s *SQLiteStorage) queryRates(ctx context.Context, query string, args ...any) ([]model.CurrencyRate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rates []model.CurrencyRate
	for rows.Next() {
		var rate model.CurrencyRate
		if err := rows.Scan(&rate.Year, &rate.Month, &rate.From, &rate.To, &rate.Value, &rate.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rate: %w", err)
		}
		rates = append(rates, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rates: %w", err)
	}

	return rates, nil
}
