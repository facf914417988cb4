package proration

import (
	"time"

	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
)

// Whole-day granularity with a consistent ceiling is used throughout: a day is
// the smallest chargeable unit, and ceiling on both elapsed and remaining
// sides keeps the two symmetric. Mixing floor and ceil between call sites is
// the classic source of off-by-one disagreements in period math.

const day = 24 * time.Hour

func ceilDays(d time.Duration) int {
	days := int(d / day)
	if d%day > 0 {
		days++
	}
	return days
}

// TotalDays returns the whole-day length of a billing period,
// ceil((end-start)/1d). Fails when the period is malformed.
func TotalDays(periodStart, periodEnd time.Time) (int, error) {
	if !periodEnd.After(periodStart) {
		return 0, ierr.NewError("invalid billing period").
			WithHintf("period end %s must be after period start %s", periodEnd, periodStart).
			Mark(ierr.ErrValidation)
	}
	return ceilDays(periodEnd.Sub(periodStart)), nil
}

// ElapsedDays returns ceil((now-start)/1d) clamped to [0, totalDays].
// A `now` before the period start is treated as zero elapsed days (clock
// skew clamp), not an error.
func ElapsedDays(periodStart, now time.Time, totalDays int) int {
	if !now.After(periodStart) {
		return 0
	}
	elapsed := ceilDays(now.Sub(periodStart))
	if elapsed > totalDays {
		return totalDays
	}
	return elapsed
}

// RemainingDays returns ceil((end-now)/1d) clamped to >= 0. When now is at or
// past the period end the period has lapsed and zero days remain; callers must
// renew before prorating.
func RemainingDays(periodEnd, now time.Time) int {
	if !periodEnd.After(now) {
		return 0
	}
	return ceilDays(periodEnd.Sub(now))
}

// NextPeriodEnd returns the next period boundary after start for the given
// interval, with month-length clamping (Jan 31 -> Feb 28/29).
func NextPeriodEnd(start time.Time, interval types.BillingInterval) (time.Time, error) {
	end, err := types.NextPeriodEnd(start, interval)
	if err != nil {
		return start, ierr.WithError(err).
			WithHint("Invalid billing interval").
			Mark(ierr.ErrValidation)
	}
	return end, nil
}
