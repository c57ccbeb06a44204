package model

import (
	"testing"
)

func TestFormatPeriod(t *testing.T) {
	tests := []struct {
		name  string
		view  View
		want  string
		year  int
		month int
	}{
		{name: "year view", view: ViewYear, year: 2023, month: 7, want: "2023"},
		{name: "quarter view Q1 boundary", view: ViewQuarter, year: 2023, month: 3, want: "2023-Q1"},
		{name: "quarter view Q3", view: ViewQuarter, year: 2023, month: 7, want: "2023-Q3"},
		{name: "quarter view Q4", view: ViewQuarter, year: 2023, month: 12, want: "2023-Q4"},
		{name: "month view pads single digit", view: ViewMonth, year: 2023, month: 7, want: "2023-07"},
		{name: "month view double digit", view: ViewMonth, year: 2024, month: 11, want: "2024-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatPeriod(tt.view, tt.year, tt.month)
			if got != tt.want {
				t.Errorf("FormatPeriod(%s, %d, %d) = %q, want %q", tt.view, tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		wantYear int
		wantSub  int
		wantErr  bool
	}{
		{name: "plain year", label: "2023", wantYear: 2023, wantSub: 0},
		{name: "quarter label", label: "2023-Q3", wantYear: 2023, wantSub: 3},
		{name: "month label", label: "2023-07", wantYear: 2023, wantSub: 7},
		{name: "quarter out of range", label: "2023-Q5", wantErr: true},
		{name: "month out of range", label: "2023-13", wantErr: true},
		{name: "month zero", label: "2023-00", wantErr: true},
		{name: "garbage", label: "abc", wantErr: true},
		{name: "garbage year in quarter", label: "abcd-Q2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, sub, err := ParsePeriod(tt.label)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePeriod(%q) expected error, got (%d, %d)", tt.label, year, sub)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePeriod(%q) unexpected error: %v", tt.label, err)
			}
			if year != tt.wantYear || sub != tt.wantSub {
				t.Errorf("ParsePeriod(%q) = (%d, %d), want (%d, %d)", tt.label, year, sub, tt.wantYear, tt.wantSub)
			}
		})
	}
}

func TestParsePeriod_RoundTrip(t *testing.T) {
	for month := 1; month <= 12; month++ {
		label := FormatPeriod(ViewMonth, 2024, month)
		year, sub, err := ParsePeriod(label)
		if err != nil {
			t.Fatalf("ParsePeriod(%q) unexpected error: %v", label, err)
		}
		if year != 2024 || sub != month {
			t.Errorf("round trip of month %d gave (%d, %d)", month, year, sub)
		}
	}
}

func TestSortPeriods(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   []string
	}{
		{
			name:   "years",
			labels: []string{"2024", "2022", "2023"},
			want:   []string{"2022", "2023", "2024"},
		},
		{
			name:   "quarters across years",
			labels: []string{"2024-Q1", "2023-Q4", "2023-Q2"},
			want:   []string{"2023-Q2", "2023-Q4", "2024-Q1"},
		},
		{
			name:   "months sort numerically not lexically",
			labels: []string{"2023-10", "2023-02", "2023-09"},
			want:   []string{"2023-02", "2023-09", "2023-10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := append([]string(nil), tt.labels...)
			SortPeriods(labels)
			for i := range tt.want {
				if labels[i] != tt.want[i] {
					t.Fatalf("SortPeriods(%v) = %v, want %v", tt.labels, labels, tt.want)
				}
			}
		})
	}
}

func TestViewValid(t *testing.T) {
	for _, view := range []View{ViewYear, ViewQuarter, ViewMonth} {
		if !view.Valid() {
			t.Errorf("View(%q).Valid() = false, want true", view)
		}
	}
	for _, view := range []View{"", "week", "YEAR"} {
		if view.Valid() {
			t.Errorf("View(%q).Valid() = true, want false", view)
		}
	}
}
