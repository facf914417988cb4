package proration

import (
	"context"

	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
	"github.com/shopspring/decimal"
)

// dayBasedCalculator implements the whole-day proration logic.
type dayBasedCalculator struct {
	nominalDays NominalDayPolicy
}

func (c *dayBasedCalculator) Calculate(ctx context.Context, params ProrationParams) (*ProrationResult, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	sub := params.Subscription
	if !sub.SubscriptionStatus.IsProrationEligible() {
		return nil, ierr.NewError("subscription is not eligible for proration").
			WithHintf("subscription %s has status %s; cancelled or expired subscriptions must renew before changing plans",
				sub.ID, sub.SubscriptionStatus).
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"status":          sub.SubscriptionStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	totalDays, err := TotalDays(sub.CurrentPeriodStart, sub.CurrentPeriodEnd)
	if err != nil {
		return nil, err
	}

	switch params.Mode {
	case types.ProrationModeImmediate:
		return c.calculateImmediate(params, totalDays)
	case types.ProrationModeEndOfPeriod:
		return c.calculateEndOfPeriod(params, totalDays)
	default:
		return nil, params.Mode.Validate()
	}
}

// calculateImmediate resolves an "apply now" plan change. The unused remainder
// of the current period is credited at the current plan's daily rate (not the
// full plan price), and the target plan is charged at its own nominal daily
// rate for the same remaining days.
func (c *dayBasedCalculator) calculateImmediate(params ProrationParams, totalDays int) (*ProrationResult, error) {
	sub := params.Subscription
	now := params.ProrationDate

	remaining := RemainingDays(sub.CurrentPeriodEnd, now)

	currentRate := DailyRate(params.CurrentPlan.Price, totalDays)
	unusedValue := AmountForDuration(currentRate, remaining)

	// The target plan has no period defined yet, so its rate comes from the
	// interval's nominal length rather than the old period's remaining days.
	nominal, err := c.nominalDays.DaysFor(params.TargetPlan.Interval)
	if err != nil {
		return nil, err
	}
	targetRate := DailyRate(params.TargetPlan.Price, nominal)
	targetCost := AmountForDuration(targetRate, remaining)

	// Net is computed on the unrounded components; all three amounts are
	// rounded independently only as they are surfaced.
	netAmountDue := targetCost.Sub(unusedValue)

	newPeriodEnd, err := NextPeriodEnd(now, params.TargetPlan.Interval)
	if err != nil {
		return nil, err
	}

	return &ProrationResult{
		UnusedValue:        RoundAmount(unusedValue),
		TargetProratedCost: RoundAmount(targetCost),
		NetAmountDue:       RoundAmount(netAmountDue),
		EffectiveAt:        now,
		NewPeriodStart:     now,
		NewPeriodEnd:       newPeriodEnd,
		RemainingDays:      remaining,
		TotalDays:          totalDays,
		Mode:               types.ProrationModeImmediate,
	}, nil
}

// calculateEndOfPeriod resolves a change queued for the next period boundary:
// no immediate monetary movement, full target price due at activation.
func (c *dayBasedCalculator) calculateEndOfPeriod(params ProrationParams, totalDays int) (*ProrationResult, error) {
	sub := params.Subscription

	if sub.HasPendingPlanChange() {
		return nil, ierr.NewError("a plan change is already scheduled").
			WithHintf("subscription %s already has plan %s queued for the next period; cancel or await it first",
				sub.ID, *sub.IntendedPlanID).
			WithReportableDetails(map[string]any{
				"subscription_id":  sub.ID,
				"intended_plan_id": *sub.IntendedPlanID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	newPeriodEnd, err := NextPeriodEnd(sub.CurrentPeriodEnd, params.TargetPlan.Interval)
	if err != nil {
		return nil, err
	}

	return &ProrationResult{
		UnusedValue:        decimal.Zero,
		TargetProratedCost: RoundAmount(params.TargetPlan.Price),
		NetAmountDue:       RoundAmount(params.TargetPlan.Price),
		EffectiveAt:        sub.CurrentPeriodEnd,
		NewPeriodStart:     sub.CurrentPeriodEnd,
		NewPeriodEnd:       newPeriodEnd,
		RemainingDays:      RemainingDays(sub.CurrentPeriodEnd, params.ProrationDate),
		TotalDays:          totalDays,
		Mode:               types.ProrationModeEndOfPeriod,
	}, nil
}

// validateParams checks that essential parameters are provided.
func validateParams(params ProrationParams) error {
	if params.Subscription == nil || params.CurrentPlan == nil || params.TargetPlan == nil {
		return ierr.NewError("subscription, current plan and target plan are required").
			WithHint("Missing proration inputs").
			Mark(ierr.ErrValidation)
	}
	if params.ProrationDate.IsZero() {
		return ierr.NewError("proration date is required").
			WithHint("Missing proration date").
			Mark(ierr.ErrValidation)
	}
	if params.Subscription.PlanID != params.CurrentPlan.ID {
		return ierr.NewError("current plan does not match subscription").
			WithHintf("subscription %s is on plan %s, got plan %s",
				params.Subscription.ID, params.Subscription.PlanID, params.CurrentPlan.ID).
			Mark(ierr.ErrValidation)
	}
	if params.CurrentPlan.Price.IsNegative() || params.TargetPlan.Price.IsNegative() {
		return ierr.NewError("plan prices must be non-negative").
			WithHint("Invalid plan price").
			Mark(ierr.ErrValidation)
	}
	return params.Mode.Validate()
}
