package rates

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/danielvsantos/finance-dashboard/internal/common"
	"github.com/danielvsantos/finance-dashboard/internal/model"
	"github.com/danielvsantos/finance-dashboard/internal/storage"
)

func createTestStorage(t *testing.T) (*storage.SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// Throttling is disabled in tests; its only observable effect is timing.
func testResolver(store *storage.SQLiteStorage, source *MockSource) *Resolver {
	return NewResolver(store, source, Config{Throttle: 0})
}

func TestResolver_IdentityNeverCallsAnything(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	source := NewMockSource(nil)
	resolver := testResolver(store, source)

	value, err := resolver.Resolve(context.Background(), 2023, 7, "USD", "USD")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if value != 1 {
		t.Errorf("Expected identity multiplier 1, got %v", value)
	}
	if source.CallCount() != 0 {
		t.Errorf("Expected no provider calls, got %d", source.CallCount())
	}

	rates, err := store.GetAllRates(context.Background())
	if err != nil {
		t.Fatalf("Failed to read rates: %v", err)
	}
	if len(rates) != 0 {
		t.Errorf("Identity rates must never be persisted, found %d rows", len(rates))
	}
}

func TestResolver_StoreHitSkipsProvider(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	stored := &model.CurrencyRate{Year: 2023, Month: 7, From: "EUR", To: "USD", Value: 1.10}
	if err := store.UpsertRate(ctx, stored); err != nil {
		t.Fatalf("Failed to seed rate: %v", err)
	}

	source := NewMockSource(nil)
	resolver := testResolver(store, source)

	value, err := resolver.Resolve(ctx, 2023, 7, "EUR", "USD")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if value != 1.10 {
		t.Errorf("Expected stored rate 1.10, got %v", value)
	}
	if source.CallCount() != 0 {
		t.Errorf("Expected no provider calls for a store hit, got %d", source.CallCount())
	}
}

func TestResolver_FetchPersistsAndMemoizes(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	key := model.RateKey(2023, 7, "EUR", "USD")
	source := NewMockSource(map[string]float64{key: 1.0842})
	resolver := testResolver(store, source)

	value, err := resolver.Resolve(ctx, 2023, 7, "EUR", "USD")
	if err != nil {
		t.Fatalf("First resolve failed: %v", err)
	}
	if value != 1.0842 {
		t.Errorf("Expected fetched rate 1.0842, got %v", value)
	}

	// The fetched rate must be persisted for the next run.
	persisted, err := store.GetRate(ctx, 2023, 7, "EUR", "USD")
	if err != nil {
		t.Fatalf("Fetched rate was not persisted: %v", err)
	}
	if persisted.Value != 1.0842 {
		t.Errorf("Persisted value = %v, want 1.0842", persisted.Value)
	}

	// Resolving the same pair again hits the memo, not the provider.
	for i := 0; i < 5; i++ {
		if _, err := resolver.Resolve(ctx, 2023, 7, "EUR", "USD"); err != nil {
			t.Fatalf("Repeat resolve failed: %v", err)
		}
	}
	if source.CallCount() != 1 {
		t.Errorf("Expected exactly 1 provider call, got %d", source.CallCount())
	}
}

func TestResolver_MissIsMemoized(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	source := NewMockSource(nil) // no rates: every fetch misses
	resolver := testResolver(store, source)

	for i := 0; i < 3; i++ {
		_, err := resolver.Resolve(ctx, 2023, 7, "XYZ", "USD")
		if !errors.Is(err, common.ErrRateUnavailable) {
			t.Fatalf("Expected ErrRateUnavailable, got %v", err)
		}
	}

	if source.CallCount() != 1 {
		t.Errorf("Expected 1 provider call for a memoized miss, got %d", source.CallCount())
	}
}

func TestResolver_ProviderFailureDegradesToUnavailable(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	source := NewMockSource(nil)
	source.Err = errors.New("connection refused")
	resolver := testResolver(store, source)

	_, err := resolver.Resolve(context.Background(), 2023, 7, "EUR", "USD")
	if !errors.Is(err, common.ErrRateUnavailable) {
		t.Errorf("Expected provider failure to degrade to ErrRateUnavailable, got %v", err)
	}
}

func TestResolver_DistinctPairsResolvedIndependently(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	source := NewMockSource(map[string]float64{
		model.RateKey(2023, 7, "EUR", "USD"): 1.08,
		model.RateKey(2023, 8, "EUR", "USD"): 1.09,
		model.RateKey(2023, 7, "BRL", "USD"): 0.21,
	})
	resolver := testResolver(store, source)

	cases := []struct {
		from, to    string
		year, month int
		want        float64
	}{
		{year: 2023, month: 7, from: "EUR", to: "USD", want: 1.08},
		{year: 2023, month: 8, from: "EUR", to: "USD", want: 1.09},
		{year: 2023, month: 7, from: "BRL", to: "USD", want: 0.21},
	}
	for _, tc := range cases {
		value, err := resolver.Resolve(ctx, tc.year, tc.month, tc.from, tc.to)
		if err != nil {
			t.Fatalf("Resolve(%d, %d, %s, %s) failed: %v", tc.year, tc.month, tc.from, tc.to, err)
		}
		if value != tc.want {
			t.Errorf("Resolve(%d, %d, %s, %s) = %v, want %v", tc.year, tc.month, tc.from, tc.to, value, tc.want)
		}
	}
	if source.CallCount() != 3 {
		t.Errorf("Expected 3 provider calls, got %d", source.CallCount())
	}
}
