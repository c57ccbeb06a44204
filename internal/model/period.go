package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// View is the time-bucketing granularity of an analytics query.
type View string

// Supported views.
const (
	ViewYear    View = "year"
	ViewQuarter View = "quarter"
	ViewMonth   View = "month"
)

// Valid reports whether v is a supported view.
func (v View) Valid() bool {
	switch v {
	case ViewYear, ViewQuarter, ViewMonth:
		return true
	}
	return false
}

// FormatPeriod renders the period label for a cache row under the given
// view: "2023", "2023-Q3" or "2023-07".
func FormatPeriod(view View, year, month int) string {
	switch view {
	case ViewQuarter:
		return fmt.Sprintf("%d-Q%d", year, QuarterOf(month))
	case ViewMonth:
		return fmt.Sprintf("%d-%02d", year, month)
	default:
		return strconv.Itoa(year)
	}
}

// ParsePeriod parses a period label back into (year, subdivision). For
// year labels the subdivision is 0; for quarter labels it is the quarter
// number; for month labels the month number. Used by callers to order
// period-keyed maps chronologically.
func ParsePeriod(label string) (year, sub int, err error) {
	if q := strings.Index(label, "-Q"); q >= 0 {
		year, err = strconv.Atoi(label[:q])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid period label %q: %w", label, err)
		}
		sub, err = strconv.Atoi(label[q+2:])
		if err != nil || sub < 1 || sub > 4 {
			return 0, 0, fmt.Errorf("invalid quarter in period label %q", label)
		}
		return year, sub, nil
	}
	if d := strings.Index(label, "-"); d >= 0 {
		year, err = strconv.Atoi(label[:d])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid period label %q: %w", label, err)
		}
		sub, err = strconv.Atoi(label[d+1:])
		if err != nil || sub < 1 || sub > 12 {
			return 0, 0, fmt.Errorf("invalid month in period label %q", label)
		}
		return year, sub, nil
	}
	year, err = strconv.Atoi(label)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid period label %q: %w", label, err)
	}
	return year, 0, nil
}

// SortPeriods orders period labels chronologically (year, then
// quarter/month number). Labels that fail to parse sort last.
func SortPeriods(labels []string) {
	sort.Slice(labels, func(i, j int) bool {
		ay, as, aerr := ParsePeriod(labels[i])
		by, bs, berr := ParsePeriod(labels[j])
		if aerr != nil || berr != nil {
			return aerr == nil
		}
		if ay != by {
			return ay < by
		}
		return as < bs
	})
}
