package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/danielvsantos/finance-dashboard/internal/model"
	"github.com/google/uuid"
)

// SaveTransactions saves multiple transactions, assigning IDs and deriving
// the year/quarter/month/day columns from the transaction date.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			id, date, year, quarter, month, day, description,
			credit, debit, currency, account_id, category_id, card,
			ticker, shares, price
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		if txn.ID == "" {
			txn.ID = uuid.NewString()
		}
		txn.NormalizeDate()

		_, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.Date,
			txn.Year,
			txn.Quarter,
			txn.Month,
			txn.Day,
			txn.Description,
			txn.Credit,
			txn.Debit,
			txn.Currency,
			txn.AccountID,
			nullable(txn.CategoryID),
			nullable(txn.Card),
			nullable(txn.Ticker),
			txn.Shares,
			txn.Price,
		)
		if err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}

	slog.Debug("saved transactions", "count", len(transactions))
	return nil
}

// GetTransactionsByYear returns all transactions for a year joined with
// the grouping dimensions the aggregation engine needs: the account's
// country and the category's taxonomy labels. Transactions without an
// account fall back to "Unknown" country; missing categories normalize to
// Uncategorized.
func (s *SQLiteStorage) GetTransactionsByYear(ctx context.Context, year int) ([]model.AggregationRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			t.id, t.date, t.year, t.quarter, t.month, t.day,
			t.description, t.credit, t.debit, t.currency,
			t.account_id, t.category_id,
			COALESCE(a.country, 'Unknown'),
			c.pl_macro_category, c.pl_category, c.type, c.category_group
		FROM transactions t
		LEFT JOIN accounts a ON a.id = t.account_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.year = ?
		ORDER BY t.date, t.id`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for year %d: %w", year, err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.AggregationRow
	for rows.Next() {
		var row model.AggregationRow
		var description, categoryID sql.NullString
		var macro, pl, typ, group sql.NullString
		err := rows.Scan(
			&row.ID, &row.Date, &row.Year, &row.Quarter, &row.Month, &row.Day,
			&description, &row.Credit, &row.Debit, &row.Currency,
			&row.AccountID, &categoryID,
			&row.Country,
			&macro, &pl, &typ, &group,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		row.Description = description.String
		row.CategoryID = categoryID.String

		cat := model.Category{
			PLMacroCategory: macro.String,
			PLCategory:      pl.String,
			Type:            typ.String,
			Group:           group.String,
		}
		row.Taxonomy = cat.Taxonomy()

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return result, nil
}

// DistinctTransactionYears returns the years that have at least one
// transaction, ascending.
func (s *SQLiteStorage) DistinctTransactionYears(ctx context.Context) ([]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT year FROM transactions ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction years: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		years = append(years, year)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating years: %w", err)
	}

	return years, nil
}

// DistinctCurrencyMonths returns the distinct (year, month, currency)
// triples present in transaction data, ordered for stable output.
func (s *SQLiteStorage) DistinctCurrencyMonths(ctx context.Context) ([]model.CurrencyMonth, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT year, month, currency
		FROM transactions
		ORDER BY year, month, currency`)
	if err != nil {
		return nil, fmt.Errorf("failed to query currency months: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var triples []model.CurrencyMonth
	for rows.Next() {
		var cm model.CurrencyMonth
		if err := rows.Scan(&cm.Year, &cm.Month, &cm.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan currency month: %w", err)
		}
		triples = append(triples, cm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currency months: %w", err)
	}

	return triples, nil
}
