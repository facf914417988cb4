package proration

import (
	"time"

	"github.com/kopikita/roastery/internal/domain/plan"
	"github.com/kopikita/roastery/internal/domain/subscription"
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
)

// activatePendingUpgrade turns a due intended plan into the active plan. The
// new period starts exactly at the old period end so that back-to-back
// activations never leave gaps, even when the sweep runs late.
//
// Calling this again after activation (intended plan already cleared) fails
// rather than silently re-activating; the storage layer's conditional update
// provides the same guarantee under concurrency.
func activatePendingUpgrade(sub *subscription.Subscription, target *plan.Plan, now time.Time) (*subscription.Subscription, error) {
	if sub == nil || target == nil {
		return nil, ierr.NewError("subscription and target plan are required").
			WithHint("Missing activation inputs").
			Mark(ierr.ErrValidation)
	}

	if !sub.HasPendingPlanChange() {
		return nil, ierr.NewError("no pending plan change to activate").
			WithHintf("subscription %s has no intended plan; it may already have been activated", sub.ID).
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	if *sub.IntendedPlanID != target.ID {
		return nil, ierr.NewError("target plan does not match the scheduled plan").
			WithHintf("subscription %s has plan %s scheduled, got plan %s",
				sub.ID, *sub.IntendedPlanID, target.ID).
			Mark(ierr.ErrValidation)
	}

	if now.Before(sub.CurrentPeriodEnd) {
		return nil, ierr.NewError("scheduled plan change is not due yet").
			WithHintf("subscription %s period runs until %s", sub.ID, sub.CurrentPeriodEnd).
			WithReportableDetails(map[string]any{
				"subscription_id":    sub.ID,
				"current_period_end": sub.CurrentPeriodEnd,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	newPeriodStart := sub.CurrentPeriodEnd
	newPeriodEnd, err := NextPeriodEnd(newPeriodStart, target.Interval)
	if err != nil {
		return nil, err
	}

	activated := *sub
	activated.PlanID = target.ID
	activated.SubscriptionStatus = types.SubscriptionStatusActive
	activated.CurrentPeriodStart = newPeriodStart
	activated.CurrentPeriodEnd = newPeriodEnd
	activated.IntendedPlanID = nil
	activated.UpdatedAt = now

	return &activated, nil
}
