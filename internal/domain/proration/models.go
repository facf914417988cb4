package proration

import (
	"time"

	"github.com/kopikita/roastery/internal/domain/plan"
	"github.com/kopikita/roastery/internal/domain/subscription"
	"github.com/kopikita/roastery/internal/types"
	"github.com/shopspring/decimal"
)

// ProrationParams holds all necessary input for resolving a plan change.
type ProrationParams struct {
	// Subscription is the current billing-period snapshot
	Subscription *subscription.Subscription

	// CurrentPlan is the plan in effect for the current period
	CurrentPlan *plan.Plan

	// TargetPlan is the plan the tenant is changing to
	TargetPlan *plan.Plan

	// Mode determines when the change takes effect
	Mode types.ProrationMode

	// ProrationDate is the effective instant of the change ("now")
	ProrationDate time.Time
}

// ProrationResult holds the output of a plan-change resolution. Amounts are
// rounded to whole currency units at this boundary and nowhere earlier; all
// intermediate math chains full-precision decimals.
type ProrationResult struct {
	// UnusedValue is the credit for the unused remainder of the current plan,
	// priced at the current plan's daily rate
	UnusedValue decimal.Decimal `json:"unused_value"`

	// TargetProratedCost is the cost of the target plan for the remaining
	// duration (or the full price for end-of-period changes)
	TargetProratedCost decimal.Decimal `json:"target_prorated_cost"`

	// NetAmountDue is TargetProratedCost minus UnusedValue, returned signed.
	// A negative value means the tenant is owed more credit than the new
	// plan costs for the remaining days; whether to waive, carry forward or
	// clamp that is the caller's policy decision, not enforced here.
	NetAmountDue decimal.Decimal `json:"net_amount_due"`

	// EffectiveAt is when the plan change takes effect
	EffectiveAt time.Time `json:"effective_at"`

	// NewPeriodStart and NewPeriodEnd are the period boundaries the caller
	// should persist once the change is applied
	NewPeriodStart time.Time `json:"new_period_start"`
	NewPeriodEnd   time.Time `json:"new_period_end"`

	// RemainingDays is the whole-day count left in the current period
	RemainingDays int `json:"remaining_days"`

	// TotalDays is the whole-day length of the current period
	TotalDays int `json:"total_days"`

	// Mode echoes the requested transition mode
	Mode types.ProrationMode `json:"mode"`
}

// NominalDayPolicy assigns each billing interval its canonical day count for
// rate purposes, independent of actual calendar variation. A fixed nominal
// length keeps daily rates auditable; the values are configuration.
type NominalDayPolicy struct {
	Monthly int
	Annual  int
}

// DefaultNominalDayPolicy returns the standard 30/365 policy
func DefaultNominalDayPolicy() NominalDayPolicy {
	return NominalDayPolicy{Monthly: 30, Annual: 365}
}

// DaysFor returns the nominal day count for one period of the given interval
func (p NominalDayPolicy) DaysFor(interval types.BillingInterval) (int, error) {
	switch interval {
	case types.BILLING_INTERVAL_MONTHLY:
		return p.Monthly, nil
	case types.BILLING_INTERVAL_ANNUAL:
		return p.Annual, nil
	default:
		return 0, interval.Validate()
	}
}
