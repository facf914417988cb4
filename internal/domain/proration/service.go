// Package proration is the single source of truth for subscription plan-change
// arithmetic: period day counts, daily rates and the credit/charge resolution
// for mid-cycle upgrades and downgrades. It performs no I/O; all inputs are
// passed in and all outputs are returned values.
package proration

import (
	"context"
	"time"

	"github.com/kopikita/roastery/internal/domain/plan"
	"github.com/kopikita/roastery/internal/domain/subscription"
)

// Calculator resolves a plan-change request into a billing outcome.
// It's kept behind an interface to allow different calculation strategies
// and easier testing.
type Calculator interface {
	Calculate(ctx context.Context, params ProrationParams) (*ProrationResult, error)
}

// NewCalculator creates the day-based proration calculator with the given
// nominal-day policy.
func NewCalculator(policy NominalDayPolicy) Calculator {
	return &dayBasedCalculator{nominalDays: policy}
}

// ActivatePendingUpgrade applies a due end-of-period plan change to a
// subscription snapshot and returns the new period state. It is pure: the
// caller persists the result, and the storage layer enforces the conditional
// guard that makes concurrent activation attempts safe.
func ActivatePendingUpgrade(sub *subscription.Subscription, target *plan.Plan, now time.Time) (*subscription.Subscription, error) {
	return activatePendingUpgrade(sub, target, now)
}
