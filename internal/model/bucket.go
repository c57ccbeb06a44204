package model

import (
	"fmt"
	"time"
)

// CategoryTotals is the per-category breakdown entry inside a cache bucket.
type CategoryTotals struct {
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
}

// CacheBucket is one precomputed analytics row: all transactions for a
// (year, month, country, macro category) converted into a single target
// currency. Entirely derived from transactions + rates; safe to delete and
// rebuild at any time.
type CacheBucket struct {
	UpdatedAt time.Time
	Breakdown map[string]CategoryTotals
	Currency  string // Target currency the amounts are converted into
	Country   string
	Macro     string
	Year      int
	Month     int

	Revenue  float64
	Expenses float64

	// Unconverted totals in the transactions' original currencies, kept
	// as an audit shadow of the converted figures.
	RevenueOriginal  float64
	ExpensesOriginal float64
}

// Key returns the bucket's unique grouping tuple as a string.
func (b *CacheBucket) Key() string {
	return fmt.Sprintf("%d-%d-%s-%s-%s", b.Year, b.Month, b.Currency, b.Country, b.Macro)
}
