package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/danielvsantos/finance-dashboard/internal/model"
)

// SaveCategories inserts or updates the given categories. Both taxonomy
// schemas are persisted as-is; normalization happens at read time via
// model.Category.Taxonomy.
func (s *SQLiteStorage) SaveCategories(ctx context.Context, categories []model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(categories) == 0 {
		return fmt.Errorf("%w: categories", ErrEmptySlice)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO categories (id, name, pl_macro_category, pl_category, type, category_group)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			pl_macro_category = excluded.pl_macro_category,
			pl_category = excluded.pl_category,
			type = excluded.type,
			category_group = excluded.category_group
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, cat := range categories {
		if err := validateString(cat.ID, "category ID"); err != nil {
			return err
		}
		if err := validateString(cat.Name, "category name"); err != nil {
			return err
		}
		_, err := stmt.ExecContext(ctx,
			cat.ID,
			cat.Name,
			nullable(cat.PLMacroCategory),
			nullable(cat.PLCategory),
			nullable(cat.Type),
			nullable(cat.Group),
		)
		if err != nil {
			return fmt.Errorf("failed to save category %s: %w", cat.ID, err)
		}
	}

	return tx.Commit()
}

// GetCategories returns all categories ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, pl_macro_category, pl_category, type, category_group
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var macro, pl, typ, group sql.NullString
		if err := rows.Scan(&cat.ID, &cat.Name, &macro, &pl, &typ, &group); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.PLMacroCategory = macro.String
		cat.PLCategory = pl.String
		cat.Type = typ.String
		cat.Group = group.String
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// nullable maps an empty string to NULL so absent taxonomy labels stay
// distinguishable from empty ones.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
