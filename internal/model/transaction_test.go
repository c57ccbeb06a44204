package model

import (
	"testing"
	"time"
)

func TestTransactionAmount(t *testing.T) {
	tests := []struct {
		name string
		txn  Transaction
		want float64
	}{
		{name: "credit is positive", txn: Transaction{Credit: 150.25}, want: 150.25},
		{name: "debit is negative", txn: Transaction{Debit: 42.10}, want: -42.10},
		{name: "empty row is zero", txn: Transaction{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.txn.Amount(); got != tt.want {
				t.Errorf("Amount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	txn := Transaction{Date: time.Date(2023, time.August, 17, 10, 30, 0, 0, time.UTC)}
	txn.NormalizeDate()

	if txn.Year != 2023 {
		t.Errorf("Year = %d, want 2023", txn.Year)
	}
	if txn.Month != 8 {
		t.Errorf("Month = %d, want 8", txn.Month)
	}
	if txn.Quarter != 3 {
		t.Errorf("Quarter = %d, want 3", txn.Quarter)
	}
	if txn.Day != 17 {
		t.Errorf("Day = %d, want 17", txn.Day)
	}
}

func TestQuarterOf(t *testing.T) {
	wantByMonth := map[int]int{
		1: 1, 2: 1, 3: 1,
		4: 2, 5: 2, 6: 2,
		7: 3, 8: 3, 9: 3,
		10: 4, 11: 4, 12: 4,
	}
	for month, want := range wantByMonth {
		if got := QuarterOf(month); got != want {
			t.Errorf("QuarterOf(%d) = %d, want %d", month, got, want)
		}
	}
}
