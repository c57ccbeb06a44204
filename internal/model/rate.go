package model

import (
	"fmt"
	"time"
)

// CurrencyRate is a historical conversion multiplier for a currency pair,
// stored at month granularity. Unique per (Year, Month, From, To); value
// is always positive and From never equals To for a persisted row.
type CurrencyRate struct {
	UpdatedAt time.Time
	From      string
	To        string
	Year      int
	Month     int
	Value     float64
}

// Key returns the canonical lookup key for the rate's tuple.
func (r *CurrencyRate) Key() string {
	return RateKey(r.Year, r.Month, r.From, r.To)
}

// RateKey builds the canonical "year-month-from-to" key used for in-memory
// rate lookups and diagnostics.
func RateKey(year, month int, from, to string) string {
	return fmt.Sprintf("%d-%d-%s-%s", year, month, from, to)
}

// RateGap identifies a (year, month, currency pair) combination required
// by existing transactions but absent from the rate store.
type RateGap struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
}

// CurrencyMonth is a distinct (year, month, currency) triple observed in
// transaction data, used by the rate-gap auditor.
type CurrencyMonth struct {
	Currency string
	Year     int
	Month    int
}
