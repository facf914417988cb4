package proration

import (
	"testing"
	"time"

	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivatePendingUpgrade(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	target := testPlan("plan_pro", 235000, types.BILLING_INTERVAL_MONTHLY)

	t.Run("due_activation", func(t *testing.T) {
		sub := testSubscription("plan_basic", start, end)
		sub.IntendedPlanID = lo.ToPtr(target.ID)
		now := end.Add(2 * time.Hour) // sweep running slightly late

		activated, err := ActivatePendingUpgrade(sub, target, now)
		require.NoError(t, err)

		assert.Equal(t, target.ID, activated.PlanID)
		assert.Nil(t, activated.IntendedPlanID)
		assert.Equal(t, types.SubscriptionStatusActive, activated.SubscriptionStatus)
		// New period starts exactly at the old boundary, not at sweep time
		assert.True(t, activated.CurrentPeriodStart.Equal(end))
		assert.True(t, activated.CurrentPeriodEnd.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))

		// Input snapshot is untouched
		assert.NotNil(t, sub.IntendedPlanID)
		assert.Equal(t, "plan_basic", sub.PlanID)
	})

	t.Run("second_activation_fails", func(t *testing.T) {
		sub := testSubscription("plan_basic", start, end)
		sub.IntendedPlanID = lo.ToPtr(target.ID)
		now := end.Add(time.Hour)

		activated, err := ActivatePendingUpgrade(sub, target, now)
		require.NoError(t, err)

		// Re-running against the already-activated state must fail clearly,
		// never re-activate or double-charge
		_, err = ActivatePendingUpgrade(activated, target, now)
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidOperation(err))
	})

	t.Run("not_due_yet", func(t *testing.T) {
		sub := testSubscription("plan_basic", start, end)
		sub.IntendedPlanID = lo.ToPtr(target.ID)

		_, err := ActivatePendingUpgrade(sub, target, end.Add(-time.Hour))
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidOperation(err))
	})

	t.Run("plan_mismatch", func(t *testing.T) {
		sub := testSubscription("plan_basic", start, end)
		sub.IntendedPlanID = lo.ToPtr("plan_other")

		_, err := ActivatePendingUpgrade(sub, target, end.Add(time.Hour))
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("nothing_pending", func(t *testing.T) {
		sub := testSubscription("plan_basic", start, end)

		_, err := ActivatePendingUpgrade(sub, target, end.Add(time.Hour))
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidOperation(err))
	})
}
