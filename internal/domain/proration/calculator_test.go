package proration

import (
	"context"
	"testing"
	"time"

	"github.com/kopikita/roastery/internal/domain/plan"
	"github.com/kopikita/roastery/internal/domain/subscription"
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlan(id string, price int64, interval types.BillingInterval) *plan.Plan {
	return &plan.Plan{
		ID:       id,
		Name:     id,
		Price:    decimal.NewFromInt(price),
		Currency: "IDR",
		Interval: interval,
	}
}

func testSubscription(planID string, start, end time.Time) *subscription.Subscription {
	return &subscription.Subscription{
		ID:                 "subs_test",
		PlanID:             planID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   end,
		Version:            1,
	}
}

func TestCalculator_ImmediateUpgrade(t *testing.T) {
	// Worked scenario: 160000 plan over a 31-day period, change on day 1
	// (30 days remaining) to a 235000 monthly plan with 30 nominal days.
	// currentDailyRate = 160000/31, unusedValue = that * 30 = 154839 rounded,
	// targetProratedCost = 235000/30 * 30 = 235000,
	// netAmountDue = 235000 - 154838.70... = 80161 rounded.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	currentPlan := testPlan("plan_basic", 160000, types.BILLING_INTERVAL_MONTHLY)
	targetPlan := testPlan("plan_pro", 235000, types.BILLING_INTERVAL_MONTHLY)
	sub := testSubscription(currentPlan.ID, start, end)

	calc := NewCalculator(DefaultNominalDayPolicy())
	result, err := calc.Calculate(context.Background(), ProrationParams{
		Subscription:  sub,
		CurrentPlan:   currentPlan,
		TargetPlan:    targetPlan,
		Mode:          types.ProrationModeImmediate,
		ProrationDate: now,
	})
	require.NoError(t, err)

	assert.Equal(t, 31, result.TotalDays)
	assert.Equal(t, 30, result.RemainingDays)
	assert.True(t, result.UnusedValue.Equal(decimal.NewFromInt(154839)),
		"unused value: %s", result.UnusedValue)
	assert.True(t, result.TargetProratedCost.Equal(decimal.NewFromInt(235000)),
		"target prorated cost: %s", result.TargetProratedCost)
	assert.True(t, result.NetAmountDue.Equal(decimal.NewFromInt(80161)),
		"net amount due: %s", result.NetAmountDue)
	assert.True(t, result.EffectiveAt.Equal(now))
	assert.True(t, result.NewPeriodStart.Equal(now))
	assert.True(t, result.NewPeriodEnd.Equal(time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)))
}

func TestCalculator_ImmediateDowngradeKeepsSignedNet(t *testing.T) {
	// Downgrading from an expensive plan mid-period leaves the tenant owed
	// more credit than the cheap plan costs; the net must stay negative and
	// is never clamped here.
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)

	currentPlan := testPlan("plan_pro", 235000, types.BILLING_INTERVAL_MONTHLY)
	targetPlan := testPlan("plan_basic", 90000, types.BILLING_INTERVAL_MONTHLY)
	sub := testSubscription(currentPlan.ID, start, end)

	calc := NewCalculator(DefaultNominalDayPolicy())
	result, err := calc.Calculate(context.Background(), ProrationParams{
		Subscription:  sub,
		CurrentPlan:   currentPlan,
		TargetPlan:    targetPlan,
		Mode:          types.ProrationModeImmediate,
		ProrationDate: now,
	})
	require.NoError(t, err)

	assert.True(t, result.NetAmountDue.IsNegative(),
		"net amount due should be negative, got %s", result.NetAmountDue)
	// Components must reconcile with the net up to independent rounding
	diff := result.TargetProratedCost.Sub(result.UnusedValue).Sub(result.NetAmountDue).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.NewFromInt(1)),
		"components drift from net by %s", diff)
}

func TestCalculator_ImmediateAfterPeriodEndYieldsZero(t *testing.T) {
	// A lapsed period has zero remaining days, so every amount is zero. The
	// caller must treat this as "renew first", not as a free upgrade; the
	// eligibility check on status is the actual guard.
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	now := end.AddDate(0, 0, 3)

	currentPlan := testPlan("plan_basic", 160000, types.BILLING_INTERVAL_MONTHLY)
	targetPlan := testPlan("plan_pro", 235000, types.BILLING_INTERVAL_MONTHLY)
	sub := testSubscription(currentPlan.ID, start, end)

	calc := NewCalculator(DefaultNominalDayPolicy())
	result, err := calc.Calculate(context.Background(), ProrationParams{
		Subscription:  sub,
		CurrentPlan:   currentPlan,
		TargetPlan:    targetPlan,
		Mode:          types.ProrationModeImmediate,
		ProrationDate: now,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.RemainingDays)
	assert.True(t, result.UnusedValue.IsZero())
	assert.True(t, result.TargetProratedCost.IsZero())
	assert.True(t, result.NetAmountDue.IsZero())
}

func TestCalculator_EndOfPeriod(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	currentPlan := testPlan("plan_basic", 160000, types.BILLING_INTERVAL_MONTHLY)
	targetPlan := testPlan("plan_pro", 235000, types.BILLING_INTERVAL_MONTHLY)
	sub := testSubscription(currentPlan.ID, start, end)

	calc := NewCalculator(DefaultNominalDayPolicy())
	result, err := calc.Calculate(context.Background(), ProrationParams{
		Subscription:  sub,
		CurrentPlan:   currentPlan,
		TargetPlan:    targetPlan,
		Mode:          types.ProrationModeEndOfPeriod,
		ProrationDate: now,
	})
	require.NoError(t, err)

	assert.True(t, result.UnusedValue.IsZero())
	assert.True(t, result.TargetProratedCost.Equal(targetPlan.Price))
	assert.True(t, result.NetAmountDue.Equal(targetPlan.Price))
	assert.True(t, result.EffectiveAt.Equal(end))
	assert.True(t, result.NewPeriodStart.Equal(end))
	assert.True(t, result.NewPeriodEnd.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCalculator_EndOfPeriodAlreadyScheduled(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	currentPlan := testPlan("plan_basic", 160000, types.BILLING_INTERVAL_MONTHLY)
	targetPlan := testPlan("plan_pro", 235000, types.BILLING_INTERVAL_MONTHLY)
	sub := testSubscription(currentPlan.ID, start, end)
	sub.IntendedPlanID = lo.ToPtr("plan_other")

	calc := NewCalculator(DefaultNominalDayPolicy())
	_, err := calc.Calculate(context.Background(), ProrationParams{
		Subscription:  sub,
		CurrentPlan:   currentPlan,
		TargetPlan:    targetPlan,
		Mode:          types.ProrationModeEndOfPeriod,
		ProrationDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.True(t, ierr.IsAlreadyExists(err))
}

func TestCalculator_IneligibleStatuses(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	currentPlan := testPlan("plan_basic", 160000, types.BILLING_INTERVAL_MONTHLY)
	targetPlan := testPlan("plan_pro", 235000, types.BILLING_INTERVAL_MONTHLY)

	calc := NewCalculator(DefaultNominalDayPolicy())

	for _, status := range []types.SubscriptionStatus{
		types.SubscriptionStatusPendingCheckout,
		types.SubscriptionStatusCancelled,
		types.SubscriptionStatusExpired,
	} {
		t.Run(status.String(), func(t *testing.T) {
			sub := testSubscription(currentPlan.ID, start, end)
			sub.SubscriptionStatus = status

			_, err := calc.Calculate(context.Background(), ProrationParams{
				Subscription:  sub,
				CurrentPlan:   currentPlan,
				TargetPlan:    targetPlan,
				Mode:          types.ProrationModeImmediate,
				ProrationDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			})
			require.Error(t, err)
			assert.True(t, ierr.IsInvalidOperation(err))
		})
	}

	// Trialing subscriptions stay eligible
	sub := testSubscription(currentPlan.ID, start, end)
	sub.SubscriptionStatus = types.SubscriptionStatusTrialing
	_, err := calc.Calculate(context.Background(), ProrationParams{
		Subscription:  sub,
		CurrentPlan:   currentPlan,
		TargetPlan:    targetPlan,
		Mode:          types.ProrationModeImmediate,
		ProrationDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)
}

func TestCalculator_InvalidInputs(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	currentPlan := testPlan("plan_basic", 160000, types.BILLING_INTERVAL_MONTHLY)
	targetPlan := testPlan("plan_pro", 235000, types.BILLING_INTERVAL_MONTHLY)
	calc := NewCalculator(DefaultNominalDayPolicy())

	t.Run("malformed_period", func(t *testing.T) {
		sub := testSubscription(currentPlan.ID, start, start)
		_, err := calc.Calculate(context.Background(), ProrationParams{
			Subscription:  sub,
			CurrentPlan:   currentPlan,
			TargetPlan:    targetPlan,
			Mode:          types.ProrationModeImmediate,
			ProrationDate: start,
		})
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("plan_mismatch", func(t *testing.T) {
		sub := testSubscription("plan_other", start, start.AddDate(0, 1, 0))
		_, err := calc.Calculate(context.Background(), ProrationParams{
			Subscription:  sub,
			CurrentPlan:   currentPlan,
			TargetPlan:    targetPlan,
			Mode:          types.ProrationModeImmediate,
			ProrationDate: start,
		})
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("missing_proration_date", func(t *testing.T) {
		sub := testSubscription(currentPlan.ID, start, start.AddDate(0, 1, 0))
		_, err := calc.Calculate(context.Background(), ProrationParams{
			Subscription: sub,
			CurrentPlan:  currentPlan,
			TargetPlan:   targetPlan,
			Mode:         types.ProrationModeImmediate,
		})
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("invalid_mode", func(t *testing.T) {
		sub := testSubscription(currentPlan.ID, start, start.AddDate(0, 1, 0))
		_, err := calc.Calculate(context.Background(), ProrationParams{
			Subscription:  sub,
			CurrentPlan:   currentPlan,
			TargetPlan:    targetPlan,
			Mode:          types.ProrationMode("whenever"),
			ProrationDate: start,
		})
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})
}
