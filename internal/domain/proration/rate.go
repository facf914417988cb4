package proration

import (
	"github.com/shopspring/decimal"
)

// DailyRate converts a period's fixed price into a per-day rate at full
// precision. The result must not be rounded before multiplication; rounding
// happens once, at the surfaced amount.
func DailyRate(price decimal.Decimal, totalDays int) decimal.Decimal {
	if totalDays <= 0 {
		return decimal.Zero
	}
	return price.Div(decimal.NewFromInt(int64(totalDays)))
}

// AmountForDuration converts a daily rate back into a monetary amount for the
// given number of days, at full precision.
func AmountForDuration(dailyRate decimal.Decimal, days int) decimal.Decimal {
	return dailyRate.Mul(decimal.NewFromInt(int64(days)))
}

// RoundAmount rounds a monetary amount to whole currency units, half away
// from zero. This is the single rounding point in any proration call chain:
// intermediate values stay at full precision so that subtracting two rounded
// values cannot drift from the rounded difference.
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(0)
}
