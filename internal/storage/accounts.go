package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danielvsantos/finance-dashboard/internal/model"
)

// SaveAccounts inserts or updates the given accounts.
func (s *SQLiteStorage) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(accounts) == 0 {
		return fmt.Errorf("%w: accounts", ErrEmptySlice)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO accounts (id, name, country, currency)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			country = excluded.country,
			currency = excluded.currency
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, acct := range accounts {
		if err := validateString(acct.ID, "account ID"); err != nil {
			return err
		}
		if err := validateCurrencyCode(acct.Currency); err != nil {
			return fmt.Errorf("account %s: %w", acct.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, acct.ID, acct.Name, acct.Country, acct.Currency); err != nil {
			return fmt.Errorf("failed to save account %s: %w", acct.ID, err)
		}
	}

	return tx.Commit()
}

// GetAccounts returns all accounts ordered by name.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, country, currency
		FROM accounts
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var acct model.Account
		if err := rows.Scan(&acct.ID, &acct.Name, &acct.Country, &acct.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	slog.Debug("retrieved accounts", "count", len(accounts))
	return accounts, nil
}
