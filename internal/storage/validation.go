// Package storage provides the data persistence layer for the finance dashboard.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/danielvsantos/finance-dashboard/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidRate        = errors.New("invalid currency rate")
	ErrInvalidBucket      = errors.New("invalid cache bucket")
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateCurrencyCode ensures a currency is an uppercase 3-letter ISO code.
func validateCurrencyCode(code string) error {
	if !currencyCodePattern.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return nil
}

// validateMonth ensures a month number is in the calendar range.
func validateMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if err := validateCurrencyCode(txn.Currency); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	if txn.Credit < 0 {
		return fmt.Errorf("%w: credit amount must be positive", ErrInvalidTransaction)
	}
	if txn.Debit < 0 {
		return fmt.Errorf("%w: debit amount must be positive", ErrInvalidTransaction)
	}
	// A row is either revenue or expense, never both at once.
	if txn.Credit > 0 && txn.Debit > 0 {
		return fmt.Errorf("%w: credit and debit cannot both be set", ErrInvalidTransaction)
	}
	return nil
}

// validateRate validates a currency rate before persistence.
func validateRate(rate *model.CurrencyRate) error {
	if rate == nil {
		return fmt.Errorf("%w: rate", ErrNilParameter)
	}
	if err := validateCurrencyCode(rate.From); err != nil {
		return fmt.Errorf("%w: from: %v", ErrInvalidRate, err)
	}
	if err := validateCurrencyCode(rate.To); err != nil {
		return fmt.Errorf("%w: to: %v", ErrInvalidRate, err)
	}
	if rate.From == rate.To {
		return fmt.Errorf("%w: identity rates are never persisted", ErrInvalidRate)
	}
	if err := validateMonth(rate.Month); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRate, err)
	}
	if rate.Value <= 0 {
		return fmt.Errorf("%w: value must be positive, got %v", ErrInvalidRate, rate.Value)
	}
	return nil
}

// validateBucket validates a cache bucket before persistence.
func validateBucket(bucket *model.CacheBucket) error {
	if bucket == nil {
		return fmt.Errorf("%w: bucket", ErrNilParameter)
	}
	if err := validateCurrencyCode(bucket.Currency); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBucket, err)
	}
	if err := validateMonth(bucket.Month); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBucket, err)
	}
	if bucket.Country == "" {
		return fmt.Errorf("%w: missing country", ErrInvalidBucket)
	}
	if bucket.Macro == "" {
		return fmt.Errorf("%w: missing macro category", ErrInvalidBucket)
	}
	return nil
}
