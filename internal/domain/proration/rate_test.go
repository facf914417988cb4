package proration

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDailyRate(t *testing.T) {
	tests := []struct {
		name      string
		price     decimal.Decimal
		totalDays int
		expected  decimal.Decimal
	}{
		{
			name:      "even_division",
			price:     decimal.NewFromInt(150000),
			totalDays: 30,
			expected:  decimal.NewFromInt(5000),
		},
		{
			name:      "uneven_division_keeps_full_precision",
			price:     decimal.NewFromInt(160000),
			totalDays: 31,
			expected:  decimal.NewFromInt(160000).Div(decimal.NewFromInt(31)),
		},
		{
			name:      "zero_days_guards_to_zero",
			price:     decimal.NewFromInt(160000),
			totalDays: 0,
			expected:  decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DailyRate(tt.price, tt.totalDays)
			assert.True(t, got.Equal(tt.expected), "expected %s got %s", tt.expected, got)
		})
	}
}

// Round-trip law: splitting a price into a daily rate and multiplying back
// over the full period must round to the original price.
func TestRateRoundTrip(t *testing.T) {
	price := decimal.NewFromInt(235000)
	totalDays := 30

	got := RoundAmount(AmountForDuration(DailyRate(price, totalDays), totalDays))
	assert.True(t, got.Equal(price), "expected %s got %s", price, got)

	// Also for a day count that does not divide evenly
	price = decimal.NewFromInt(160000)
	totalDays = 31
	got = RoundAmount(AmountForDuration(DailyRate(price, totalDays), totalDays))
	assert.True(t, got.Equal(price), "expected %s got %s", price, got)
}

func TestRoundAmountHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{name: "round_down", amount: "80161.29", expected: "80161"},
		{name: "round_up", amount: "80161.51", expected: "80162"},
		{name: "half_rounds_up", amount: "80161.5", expected: "80162"},
		{name: "negative_half_rounds_away", amount: "-80161.5", expected: "-80162"},
		{name: "whole_unchanged", amount: "235000", expected: "235000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			expected := decimal.RequireFromString(tt.expected)
			got := RoundAmount(amount)
			assert.True(t, got.Equal(expected), "expected %s got %s", expected, got)
		})
	}
}
