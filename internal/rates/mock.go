package rates

import (
	"context"
	"fmt"
	"sync"

	"github.com/danielvsantos/finance-dashboard/internal/common"
	"github.com/danielvsantos/finance-dashboard/internal/model"
)

// MockSource is a test double for service.RateSource. Rates are keyed by
// model.RateKey; pairs without an entry report ErrRateUnavailable.
type MockSource struct {
	mu    sync.Mutex
	Rates map[string]float64
	Err   error
	Calls []string
}

// NewMockSource creates a mock with the given rate table.
func NewMockSource(rates map[string]float64) *MockSource {
	if rates == nil {
		rates = make(map[string]float64)
	}
	return &MockSource{Rates: rates}
}

// FetchRate implements service.RateSource.
func (m *MockSource) FetchRate(_ context.Context, year, month int, from, to string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := model.RateKey(year, month, from, to)
	m.Calls = append(m.Calls, key)

	if m.Err != nil {
		return 0, m.Err
	}
	rate, ok := m.Rates[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", common.ErrRateUnavailable, key)
	}
	return rate, nil
}

// CallCount returns how many provider calls were made.
func (m *MockSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
