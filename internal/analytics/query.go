package analytics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danielvsantos/finance-dashboard/internal/model"
	"github.com/danielvsantos/finance-dashboard/internal/service"
)

// ErrInvalidRequest marks query parameter validation failures. They are
// raised synchronously, before any store access.
var ErrInvalidRequest = errors.New("invalid analytics request")

// Request describes one analytics query. The time range is expressed per
// view: an explicit year list for ViewYear, a StartMonth/EndMonth span
// ("YYYY-MM") for ViewMonth, or a StartQuarter/EndQuarter span ("YYYY-Qn")
// for ViewQuarter.
type Request struct {
	View         model.View
	Currency     string
	Countries    []string
	Macros       []string
	Years        []int
	StartMonth   string
	EndMonth     string
	StartQuarter string
	EndQuarter   string
}

// RowDetail is one cache row reshaped for the per-period row response: the
// tabular shape that preserves country and category detail.
type RowDetail struct {
	Breakdown        map[string]model.CategoryTotals `json:"breakdown"`
	Country          string                          `json:"country"`
	Macro            string                          `json:"macroCategory"`
	Revenue          float64                         `json:"revenue"`
	Expenses         float64                         `json:"expenses"`
	RevenueOriginal  float64                         `json:"revenueOriginal"`
	ExpensesOriginal float64                         `json:"expensesOriginal"`
}

// PeriodSummary is the flat-summed response shape: one accumulator per
// period for a single time series.
type PeriodSummary struct {
	ByCategory map[string]float64 `json:"byCategory"`
	Revenue    float64            `json:"revenue"`
	Expenses   float64            `json:"expenses"`
}

// Service answers analytics queries from the precomputed cache. It is
// stateless and safe for concurrent use.
type Service struct {
	store service.Storage
}

// NewService creates a query service over the given store.
func NewService(store service.Storage) *Service {
	return &Service{store: store}
}

// Validate rejects malformed requests with a descriptive error.
func (r *Request) Validate() error {
	if !r.View.Valid() {
		return fmt.Errorf("%w: unknown view %q", ErrInvalidRequest, r.View)
	}
	if r.Currency == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidRequest)
	}

	switch r.View {
	case model.ViewYear:
		if len(r.Years) == 0 {
			return fmt.Errorf("%w: years are required for view=year", ErrInvalidRequest)
		}
	case model.ViewMonth:
		start, err := parseMonthLabel(r.StartMonth)
		if err != nil {
			return fmt.Errorf("%w: startMonth: %v", ErrInvalidRequest, err)
		}
		end, err := parseMonthLabel(r.EndMonth)
		if err != nil {
			return fmt.Errorf("%w: endMonth: %v", ErrInvalidRequest, err)
		}
		if end.before(start) {
			return fmt.Errorf("%w: endMonth precedes startMonth", ErrInvalidRequest)
		}
	case model.ViewQuarter:
		start, err := parseQuarterLabel(r.StartQuarter)
		if err != nil {
			return fmt.Errorf("%w: startQuarter: %v", ErrInvalidRequest, err)
		}
		end, err := parseQuarterLabel(r.EndQuarter)
		if err != nil {
			return fmt.Errorf("%w: endQuarter: %v", ErrInvalidRequest, err)
		}
		if end.before(start) {
			return fmt.Errorf("%w: endQuarter precedes startQuarter", ErrInvalidRequest)
		}
	}

	return nil
}

// Rows answers a query with the per-period row-list shape.
func (s *Service) Rows(ctx context.Context, req Request) (map[string][]RowDetail, error) {
	buckets, err := s.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]RowDetail)
	for i := range buckets {
		bucket := &buckets[i]
		label := model.FormatPeriod(req.View, bucket.Year, bucket.Month)
		grouped[label] = append(grouped[label], RowDetail{
			Country:          bucket.Country,
			Macro:            bucket.Macro,
			Revenue:          bucket.Revenue,
			Expenses:         bucket.Expenses,
			RevenueOriginal:  bucket.RevenueOriginal,
			ExpensesOriginal: bucket.ExpensesOriginal,
			Breakdown:        bucket.Breakdown,
		})
	}

	return grouped, nil
}

// Summary answers a query with the flat-summed shape: revenue, expenses
// and a per-category net accumulated across all matched rows per period.
func (s *Service) Summary(ctx context.Context, req Request) (map[string]*PeriodSummary, error) {
	buckets, err := s.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]*PeriodSummary)
	for i := range buckets {
		bucket := &buckets[i]
		label := model.FormatPeriod(req.View, bucket.Year, bucket.Month)

		summary, ok := grouped[label]
		if !ok {
			summary = &PeriodSummary{ByCategory: make(map[string]float64)}
			grouped[label] = summary
		}

		summary.Revenue += bucket.Revenue
		summary.Expenses += bucket.Expenses
		for category, totals := range bucket.Breakdown {
			summary.ByCategory[category] += totals.Revenue - totals.Expenses
		}
	}

	return grouped, nil
}

// Report runs a Summary query and flattens it into a chronologically
// ordered report for export.
func (s *Service) Report(ctx context.Context, req Request) (*service.Report, error) {
	grouped, err := s.Summary(ctx, req)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(grouped))
	for label := range grouped {
		labels = append(labels, label)
	}
	model.SortPeriods(labels)

	report := &service.Report{
		Currency: req.Currency,
		View:     req.View,
		Rows:     make([]service.ReportRow, 0, len(labels)),
	}
	for _, label := range labels {
		summary := grouped[label]
		report.Rows = append(report.Rows, service.ReportRow{
			Period:     label,
			Revenue:    summary.Revenue,
			Expenses:   summary.Expenses,
			ByCategory: summary.ByCategory,
		})
	}

	return report, nil
}

// fetch validates the request, scans the cache with the widest-possible
// year filter, and trims month/quarter spans to their edge-year bounds.
func (s *Service) fetch(ctx context.Context, req Request) ([]model.CacheBucket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	filter := service.CacheFilter{
		Currency:  strings.ToUpper(req.Currency),
		Countries: req.Countries,
		Macros:    req.Macros,
	}

	var inRange func(year, month int) bool

	switch req.View {
	case model.ViewYear:
		filter.Years = req.Years
		inRange = func(int, int) bool { return true }

	case model.ViewMonth:
		start, _ := parseMonthLabel(req.StartMonth)
		end, _ := parseMonthLabel(req.EndMonth)
		filter.StartYear, filter.EndYear = start.year, end.year
		// Interior years cover months 1..12; the span's first and last
		// year clamp to the explicit start/end month.
		inRange = func(year, month int) bool {
			if year == start.year && month < start.sub {
				return false
			}
			if year == end.year && month > end.sub {
				return false
			}
			return true
		}

	case model.ViewQuarter:
		start, _ := parseQuarterLabel(req.StartQuarter)
		end, _ := parseQuarterLabel(req.EndQuarter)
		filter.StartYear, filter.EndYear = start.year, end.year
		inRange = func(year, month int) bool {
			quarter := model.QuarterOf(month)
			if year == start.year && quarter < start.sub {
				return false
			}
			if year == end.year && quarter > end.sub {
				return false
			}
			return true
		}
	}

	buckets, err := s.store.QueryCache(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics cache: %w", err)
	}

	matched := buckets[:0]
	for _, bucket := range buckets {
		if inRange(bucket.Year, bucket.Month) {
			matched = append(matched, bucket)
		}
	}

	return matched, nil
}

// periodBound is a (year, month-or-quarter) pair parsed from a span label.
type periodBound struct {
	year int
	sub  int
}

func (p periodBound) before(other periodBound) bool {
	if p.year != other.year {
		return p.year < other.year
	}
	return p.sub < other.sub
}

// parseMonthLabel parses "YYYY-MM".
func parseMonthLabel(label string) (periodBound, error) {
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return periodBound{}, fmt.Errorf("expected YYYY-MM, got %q", label)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return periodBound{}, fmt.Errorf("invalid year in %q", label)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return periodBound{}, fmt.Errorf("invalid month in %q", label)
	}
	return periodBound{year: year, sub: month}, nil
}

// parseQuarterLabel parses "YYYY-Qn".
func parseQuarterLabel(label string) (periodBound, error) {
	parts := strings.SplitN(label, "-Q", 2)
	if len(parts) != 2 {
		return periodBound{}, fmt.Errorf("expected YYYY-Qn, got %q", label)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return periodBound{}, fmt.Errorf("invalid year in %q", label)
	}
	quarter, err := strconv.Atoi(parts[1])
	if err != nil || quarter < 1 || quarter > 4 {
		return periodBound{}, fmt.Errorf("invalid quarter in %q", label)
	}
	return periodBound{year: year, sub: quarter}, nil
}

// SortedLabels returns the period labels of a grouped result in
// chronological order.
func SortedLabels[V any](grouped map[string]V) []string {
	labels := make([]string, 0, len(grouped))
	for label := range grouped {
		labels = append(labels, label)
	}
	model.SortPeriods(labels)
	return labels
}
