package subscription

import (
	"context"
	"time"

	"github.com/kopikita/roastery/internal/types"
)

// Repository defines the interface for subscription persistence
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)

	// Update persists the subscription with an optimistic version bump and
	// fails with a version conflict when a concurrent write advanced it
	Update(ctx context.Context, sub *Subscription) error

	List(ctx context.Context, filter types.Filter) ([]*Subscription, error)

	// ListDueForActivation returns subscriptions whose intended plan is due:
	// intended_plan_id set and current_period_end <= now
	ListDueForActivation(ctx context.Context, now time.Time, limit int) ([]*Subscription, error)

	// ActivatePending applies a due plan change as a single conditional
	// update guarded on `intended_plan_id IS NOT NULL AND current_period_end
	// <= now` so that a racing page load and scheduled sweep cannot both
	// activate the same pending change. Returns a version conflict error when
	// the guard does not match (already activated or period advanced).
	ActivatePending(ctx context.Context, sub *Subscription, now time.Time) error
}
