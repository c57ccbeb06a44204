// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/danielvsantos/finance-dashboard/internal/model"
)

// CacheFilter defines filtering options for analytics cache queries. Years
// and the StartYear/EndYear range are mutually exclusive: a non-empty Years
// list wins.
type CacheFilter struct {
	Currency  string
	Countries []string
	Macros    []string
	Years     []int
	StartYear int
	EndYear   int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactionsByYear(ctx context.Context, year int) ([]model.AggregationRow, error)
	DistinctTransactionYears(ctx context.Context) ([]int, error)
	DistinctCurrencyMonths(ctx context.Context) ([]model.CurrencyMonth, error)

	// Account and category operations
	SaveAccounts(ctx context.Context, accounts []model.Account) error
	GetAccounts(ctx context.Context) ([]model.Account, error)
	SaveCategories(ctx context.Context, categories []model.Category) error
	GetCategories(ctx context.Context) ([]model.Category, error)

	// Currency rate operations
	GetRate(ctx context.Context, year, month int, from, to string) (*model.CurrencyRate, error)
	UpsertRate(ctx context.Context, rate *model.CurrencyRate) error
	GetRatesByYear(ctx context.Context, year int) ([]model.CurrencyRate, error)
	GetAllRates(ctx context.Context) ([]model.CurrencyRate, error)

	// Analytics cache operations
	UpsertCacheBucket(ctx context.Context, bucket *model.CacheBucket) error
	ClearCache(ctx context.Context) (int64, error)
	QueryCache(ctx context.Context, filter CacheFilter) ([]model.CacheBucket, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RateSource fetches a historical conversion rate from an external
// provider for the first day of the given (year, month). Implementations
// return common.ErrRateUnavailable when the provider has no usable quote.
type RateSource interface {
	FetchRate(ctx context.Context, year, month int, from, to string) (float64, error)
}

// RateResolver resolves a conversion multiplier for a (year, month,
// currency pair) tuple, consulting local storage before the external
// source. A miss is reported as common.ErrRateUnavailable, never as a
// defaulted multiplier.
type RateResolver interface {
	Resolve(ctx context.Context, year, month int, from, to string) (float64, error)
}

// ReportWriter exports an analytics report to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, report *Report) error
}

// Report is the exportable shape of a query-service result: one row per
// period, ordered chronologically.
type Report struct {
	Currency string
	View     model.View
	Rows     []ReportRow
}

// ReportRow is one period line of a report.
type ReportRow struct {
	Period     string
	ByCategory map[string]float64
	Revenue    float64
	Expenses   float64
}

// RetryOptions configures retry behavior for external calls.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
