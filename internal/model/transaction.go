// Package model defines the core domain types shared across the application.
package model

import (
	"time"
)

// Transaction represents a single financial transaction as recorded by the
// user. Amounts are stored as separate credit/debit fields; at most one of
// the two is populated on any valid row.
type Transaction struct {
	Date        time.Time
	ID          string
	Description string
	Currency    string // Uppercase ISO-4217 code (e.g. "USD")
	AccountID   string
	CategoryID  string
	Card        string

	Year    int
	Quarter int
	Month   int
	Day     int

	Credit float64 // Positive revenue amount, 0 if this is a debit row
	Debit  float64 // Positive expense amount, 0 if this is a credit row

	// Investment rows only
	Ticker string
	Shares float64
	Price  float64
}

// Amount returns the signed amount of the transaction: positive for
// revenue (credit), negative for expenses (debit).
func (t *Transaction) Amount() float64 {
	return t.Credit - t.Debit
}

// NormalizeDate derives the year/quarter/month/day fields from Date.
func (t *Transaction) NormalizeDate() {
	t.Year = t.Date.Year()
	t.Month = int(t.Date.Month())
	t.Quarter = QuarterOf(t.Month)
	t.Day = t.Date.Day()
}

// QuarterOf returns the calendar quarter (1-4) a month belongs to.
func QuarterOf(month int) int {
	return (month + 2) / 3
}

// AggregationRow is a transaction joined with the dimensions the
// aggregation engine groups by: the account's country and the category's
// normalized taxonomy.
type AggregationRow struct {
	Transaction
	Country  string
	Taxonomy Taxonomy
}
