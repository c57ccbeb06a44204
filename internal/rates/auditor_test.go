package rates

import (
	"context"
	"testing"
	"time"

	"github.com/danielvsantos/finance-dashboard/internal/model"
)

func TestFindGaps(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := []model.Transaction{
		{ID: "t1", Date: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), Currency: "EUR", AccountID: "a", Credit: 10},
		{ID: "t2", Date: time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC), Currency: "USD", AccountID: "a", Debit: 5},
	}
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("Failed to save transactions: %v", err)
	}

	// One of the EUR requirements is satisfied; the rest are gaps.
	seeded := &model.CurrencyRate{Year: 2023, Month: 7, From: "EUR", To: "USD", Value: 1.08}
	if err := store.UpsertRate(ctx, seeded); err != nil {
		t.Fatalf("Failed to seed rate: %v", err)
	}

	gaps, err := FindGaps(ctx, store, []string{"USD", "EUR"})
	if err != nil {
		t.Fatalf("FindGaps failed: %v", err)
	}

	// 2023-07 EUR: EUR->USD covered, EUR->EUR skipped (identity).
	// 2023-08 USD: USD->USD skipped, USD->EUR missing.
	want := []model.RateGap{
		{Year: 2023, Month: 8, From: "USD", To: "EUR"},
	}
	if len(gaps) != len(want) {
		t.Fatalf("Expected %d gaps, got %d: %v", len(want), len(gaps), gaps)
	}
	for i := range want {
		if gaps[i] != want[i] {
			t.Errorf("Gap %d = %+v, want %+v", i, gaps[i], want[i])
		}
	}
}

func TestFindGaps_EmptyDatabase(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	gaps, err := FindGaps(context.Background(), store, []string{"USD", "EUR", "BRL"})
	if err != nil {
		t.Fatalf("FindGaps failed: %v", err)
	}
	if len(gaps) != 0 {
		t.Errorf("Expected no gaps without transactions, got %d", len(gaps))
	}
}

func TestFindGaps_Ordering(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := []model.Transaction{
		{ID: "t1", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Currency: "GBP", AccountID: "a", Credit: 10},
		{ID: "t2", Date: time.Date(2022, 11, 1, 0, 0, 0, 0, time.UTC), Currency: "CHF", AccountID: "a", Debit: 5},
		{ID: "t3", Date: time.Date(2022, 11, 1, 0, 0, 0, 0, time.UTC), Currency: "AUD", AccountID: "a", Debit: 5},
	}
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("Failed to save transactions: %v", err)
	}

	gaps, err := FindGaps(ctx, store, []string{"USD"})
	if err != nil {
		t.Fatalf("FindGaps failed: %v", err)
	}

	want := []model.RateGap{
		{Year: 2022, Month: 11, From: "AUD", To: "USD"},
		{Year: 2022, Month: 11, From: "CHF", To: "USD"},
		{Year: 2024, Month: 2, From: "GBP", To: "USD"},
	}
	if len(gaps) != len(want) {
		t.Fatalf("Expected %d gaps, got %d: %v", len(want), len(gaps), gaps)
	}
	for i := range want {
		if gaps[i] != want[i] {
			t.Errorf("Gap %d = %+v, want %+v", i, gaps[i], want[i])
		}
	}
}
