package analytics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielvsantos/finance-dashboard/internal/model"
	"github.com/danielvsantos/finance-dashboard/internal/rates"
	"github.com/danielvsantos/finance-dashboard/internal/service"
	"github.com/danielvsantos/finance-dashboard/internal/storage"
)

func setupEngineTest(t *testing.T, providerRates map[string]float64) (*Engine, *storage.SQLiteStorage, *rates.MockSource) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	require.NoError(t, store.SaveAccounts(ctx, []model.Account{
		{ID: "acc-us", Name: "US Checking", Country: "USA", Currency: "USD"},
		{ID: "acc-br", Name: "BR Checking", Country: "Brazil", Currency: "BRL"},
	}))
	require.NoError(t, store.SaveCategories(ctx, []model.Category{
		{ID: "cat-salary", Name: "Salary", PLMacroCategory: "Revenue", PLCategory: "Salary"},
		{ID: "cat-food", Name: "Food", PLMacroCategory: "Operating Expenses", PLCategory: "Groceries"},
	}))

	source := rates.NewMockSource(providerRates)
	resolver := rates.NewResolver(store, source, rates.Config{Throttle: 0})
	engine := NewEngine(store, resolver, Config{})

	return engine, store, source
}

func queryBuckets(t *testing.T, store *storage.SQLiteStorage, currency string, years ...int) []model.CacheBucket {
	t.Helper()
	buckets, err := store.QueryCache(context.Background(), service.CacheFilter{Currency: currency, Years: years})
	require.NoError(t, err)
	return buckets
}

func TestEngine_Run_ConvertsAndAggregates(t *testing.T) {
	engine, store, _ := setupEngineTest(t, map[string]float64{
		model.RateKey(2023, 7, "EUR", "USD"): 1.1,
	})
	ctx := context.Background()

	txns := []model.Transaction{
		{ID: "t1", Date: time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC), Currency: "EUR",
			AccountID: "acc-us", CategoryID: "cat-salary", Credit: 100},
		{ID: "t2", Date: time.Date(2023, 7, 10, 0, 0, 0, 0, time.UTC), Currency: "EUR",
			AccountID: "acc-us", CategoryID: "cat-food", Debit: 50},
		{ID: "t3", Date: time.Date(2023, 7, 21, 0, 0, 0, 0, time.UTC), Currency: "USD",
			AccountID: "acc-us", CategoryID: "cat-salary", Credit: 200},
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	stats, err := engine.Run(ctx, RunOptions{TargetCurrencies: []string{"USD"}})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Transactions)
	assert.Equal(t, 2, stats.Buckets)
	assert.Equal(t, 0, stats.SkippedNoRate)
	assert.Empty(t, stats.Gaps)

	buckets := queryBuckets(t, store, "USD", 2023)
	require.Len(t, buckets, 2)

	byMacro := make(map[string]model.CacheBucket)
	for _, bucket := range buckets {
		byMacro[bucket.Macro] = bucket
	}

	revenue := byMacro["Revenue"]
	// 100 EUR at 1.1 plus 200 USD at identity.
	assert.InDelta(t, 310, revenue.Revenue, 1e-9)
	assert.InDelta(t, 300, revenue.RevenueOriginal, 1e-9)
	assert.InDelta(t, 0, revenue.Expenses, 1e-9)
	assert.InDelta(t, 310, revenue.Breakdown["Salary"].Revenue, 1e-9)

	expenses := byMacro["Operating Expenses"]
	// Expenses accumulate as positive magnitudes.
	assert.InDelta(t, 55, expenses.Expenses, 1e-9)
	assert.InDelta(t, 50, expenses.ExpensesOriginal, 1e-9)
	assert.InDelta(t, 0, expenses.Revenue, 1e-9)
	assert.InDelta(t, 55, expenses.Breakdown["Groceries"].Expenses, 1e-9)
}

func TestEngine_Run_Idempotent(t *testing.T) {
	engine, store, source := setupEngineTest(t, map[string]float64{
		model.RateKey(2023, 7, "EUR", "USD"): 1.1,
	})
	ctx := context.Background()

	txns := []model.Transaction{
		{ID: "t1", Date: time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC), Currency: "EUR",
			AccountID: "acc-us", CategoryID: "cat-salary", Credit: 100},
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	opts := RunOptions{TargetCurrencies: []string{"USD"}}
	_, err := engine.Run(ctx, opts)
	require.NoError(t, err)
	_, err = engine.Run(ctx, opts)
	require.NoError(t, err)

	buckets := queryBuckets(t, store, "USD", 2023)
	require.Len(t, buckets, 1)
	// A rerun replaces the bucket instead of doubling it.
	assert.InDelta(t, 110, buckets[0].Revenue, 1e-9)

	// The second run resolves from storage; the provider is called once.
	assert.Equal(t, 1, source.CallCount())
}

func TestEngine_Run_MissingRateSkipsOnlyAffectedConversions(t *testing.T) {
	engine, store, _ := setupEngineTest(t, map[string]float64{
		model.RateKey(2023, 7, "EUR", "USD"): 1.1,
		// GBP has no rate to USD.
	})
	ctx := context.Background()

	txns := []model.Transaction{
		{ID: "t1", Date: time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC), Currency: "EUR",
			AccountID: "acc-us", CategoryID: "cat-salary", Credit: 100},
		{ID: "t2", Date: time.Date(2023, 7, 5, 0, 0, 0, 0, time.UTC), Currency: "GBP",
			AccountID: "acc-us", CategoryID: "cat-salary", Credit: 40},
		{ID: "t3", Date: time.Date(2023, 7, 9, 0, 0, 0, 0, time.UTC), Currency: "GBP",
			AccountID: "acc-us", CategoryID: "cat-food", Debit: 15},
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	stats, err := engine.Run(ctx, RunOptions{TargetCurrencies: []string{"USD"}})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.SkippedNoRate)
	require.Len(t, stats.Gaps, 1)
	assert.Equal(t, model.RateGap{Year: 2023, Month: 7, From: "GBP", To: "USD"}, stats.Gaps[0])

	// The EUR transaction still lands; nothing defaults to rate 1.
	buckets := queryBuckets(t, store, "USD", 2023)
	require.Len(t, buckets, 1)
	assert.Equal(t, "Revenue", buckets[0].Macro)
	assert.InDelta(t, 110, buckets[0].Revenue, 1e-9)
}

func TestEngine_Run_RebuildClearsStaleBuckets(t *testing.T) {
	engine, store, _ := setupEngineTest(t, nil)
	ctx := context.Background()

	// A stale bucket from a previous run over since-deleted data.
	stale := &model.CacheBucket{
		Year: 2019, Month: 1, Currency: "USD", Country: "USA", Macro: "Revenue",
		Revenue: 999, Breakdown: map[string]model.CategoryTotals{},
	}
	require.NoError(t, store.UpsertCacheBucket(ctx, stale))

	txns := []model.Transaction{
		{ID: "t1", Date: time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC), Currency: "USD",
			AccountID: "acc-us", CategoryID: "cat-salary", Credit: 100},
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	stats, err := engine.Run(ctx, RunOptions{TargetCurrencies: []string{"USD"}, Rebuild: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.CacheCleared)

	assert.Empty(t, queryBuckets(t, store, "USD", 2019))
	assert.Len(t, queryBuckets(t, store, "USD", 2023), 1)
}

func TestEngine_Run_MultiCurrencyTargets(t *testing.T) {
	engine, store, _ := setupEngineTest(t, map[string]float64{
		model.RateKey(2023, 7, "USD", "EUR"): 0.9,
		model.RateKey(2023, 7, "USD", "BRL"): 5.0,
	})
	ctx := context.Background()

	txns := []model.Transaction{
		{ID: "t1", Date: time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC), Currency: "USD",
			AccountID: "acc-us", CategoryID: "cat-salary", Credit: 100},
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	stats, err := engine.Run(ctx, RunOptions{})
	require.NoError(t, err)
	// One bucket per default target currency.
	assert.Equal(t, 3, stats.Buckets)

	usd := queryBuckets(t, store, "USD", 2023)
	require.Len(t, usd, 1)
	assert.InDelta(t, 100, usd[0].Revenue, 1e-9)

	eur := queryBuckets(t, store, "EUR", 2023)
	require.Len(t, eur, 1)
	assert.InDelta(t, 90, eur[0].Revenue, 1e-9)

	brl := queryBuckets(t, store, "BRL", 2023)
	require.Len(t, brl, 1)
	assert.InDelta(t, 500, brl[0].Revenue, 1e-9)
}

func TestEngine_Run_YearScope(t *testing.T) {
	engine, store, _ := setupEngineTest(t, nil)
	ctx := context.Background()

	txns := []model.Transaction{
		{ID: "t1", Date: time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC), Currency: "USD",
			AccountID: "acc-us", CategoryID: "cat-salary", Credit: 100},
		{ID: "t2", Date: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), Currency: "USD",
			AccountID: "acc-us", CategoryID: "cat-salary", Credit: 200},
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	stats, err := engine.Run(ctx, RunOptions{Years: []int{2023}, TargetCurrencies: []string{"USD"}})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Transactions)
	assert.Empty(t, queryBuckets(t, store, "USD", 2022))
	assert.Len(t, queryBuckets(t, store, "USD", 2023), 1)
}
