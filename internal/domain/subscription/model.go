package subscription

import (
	"time"

	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
)

// Subscription is the mutable billing-period state for one tenant. It is
// created on first subscribe, mutated on every renewal, upgrade, downgrade or
// administrative correction, and never deleted (superseded in place).
type Subscription struct {
	// ID is the unique identifier for the subscription
	ID string `db:"id" json:"id"`

	// PlanID is the plan currently in effect
	PlanID string `db:"plan_id" json:"plan_id"`

	// SubscriptionStatus is the lifecycle status of the subscription
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`

	// CurrentPeriodStart is the start of the period the tenant has been
	// billed for. Invariant: CurrentPeriodEnd is strictly after it.
	CurrentPeriodStart time.Time `db:"current_period_start" json:"current_period_start"`

	// CurrentPeriodEnd is the end of the period the tenant has been billed for
	CurrentPeriodEnd time.Time `db:"current_period_end" json:"current_period_end"`

	// IntendedPlanID is a plan queued to take effect at the next period
	// boundary. At most one may be pending; activation clears it.
	IntendedPlanID *string `db:"intended_plan_id" json:"intended_plan_id"`

	// TrialEnd is the end date of the trial period, if any
	TrialEnd *time.Time `db:"trial_end" json:"trial_end"`

	// Version guards read-modify-write cycles against concurrent renewals
	Version int `db:"version" json:"version"`

	types.BaseModel
}

// Validate checks the period invariants
func (s *Subscription) Validate() error {
	if err := s.SubscriptionStatus.Validate(); err != nil {
		return err
	}
	if !s.CurrentPeriodEnd.After(s.CurrentPeriodStart) {
		return ierr.NewError("invalid billing period").
			WithHintf("period end %s must be after period start %s",
				s.CurrentPeriodEnd, s.CurrentPeriodStart).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// HasPendingPlanChange reports whether a plan change is queued for the next
// period boundary
func (s *Subscription) HasPendingPlanChange() bool {
	return s.IntendedPlanID != nil && *s.IntendedPlanID != ""
}
