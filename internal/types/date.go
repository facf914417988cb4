package types

import (
	"fmt"
	"time"
)

// NextPeriodEnd calculates the next billing period boundary from the given
// start instant and billing interval:
// - MONTHLY lands on the same calendar day next month, clamped to the last
//   valid day of the target month (Jan 31 -> Feb 28/29).
// - ANNUAL lands on the same calendar day next year.
// Clamping is done by hand instead of time.AddDate because AddDate normalizes
// overflow days into the following month (Jan 31 + 1 month = Mar 2/3).
func NextPeriodEnd(start time.Time, interval BillingInterval) (time.Time, error) {
	switch interval {
	case BILLING_INTERVAL_MONTHLY:
		return AddClampedDate(start, 0, 1, 0), nil
	case BILLING_INTERVAL_ANNUAL:
		return AddClampedDate(start, 1, 0, 0), nil
	default:
		return start, fmt.Errorf("invalid billing interval: %s", interval)
	}
}

func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	// Calculate the proposed year and month
	newY := y + years
	newM := time.Month(int(m) + months)

	// If we move beyond December, it adjusts correctly,
	// for example adding 2 months to November will land on January next year.
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the new month
	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.Add(-24 * time.Hour).Day()

	newD := d + days
	if newD > lastDay {
		// Clamp to last valid day
		newD = lastDay
	}

	return time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location())
}
