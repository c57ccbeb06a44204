package rates

import (
	"context"
	"fmt"
	"sort"

	"github.com/danielvsantos/finance-dashboard/internal/model"
	"github.com/danielvsantos/finance-dashboard/internal/service"
)

// FindGaps reports the (year, month, currency pair) combinations required
// by existing transactions for which no rate row is stored. It is a pure
// read-only diagnostic: no external calls, no writes. Same-currency pairs
// are never required and are skipped.
func FindGaps(ctx context.Context, store service.Storage, targetCurrencies []string) ([]model.RateGap, error) {
	triples, err := store.DistinctCurrencyMonths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate transaction currency months: %w", err)
	}

	stored, err := store.GetAllRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored rates: %w", err)
	}

	existing := make(map[string]struct{}, len(stored))
	for _, rate := range stored {
		existing[rate.Key()] = struct{}{}
	}

	var gaps []model.RateGap
	for _, triple := range triples {
		for _, target := range targetCurrencies {
			if triple.Currency == target {
				continue
			}
			key := model.RateKey(triple.Year, triple.Month, triple.Currency, target)
			if _, ok := existing[key]; ok {
				continue
			}
			gaps = append(gaps, model.RateGap{
				Year:  triple.Year,
				Month: triple.Month,
				From:  triple.Currency,
				To:    target,
			})
		}
	}

	sort.Slice(gaps, func(i, j int) bool {
		a, b := gaps[i], gaps[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})

	return gaps, nil
}
