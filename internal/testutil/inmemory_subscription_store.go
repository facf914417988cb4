package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/kopikita/roastery/internal/domain/subscription"
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository with the same
// optimistic-version and conditional-activation semantics as the database
// repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

// NewInMemorySubscriptionStore creates a new in-memory subscription store
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func subscriptionFilterFn(ctx context.Context, sub *subscription.Subscription) bool {
	if sub == nil {
		return false
	}
	if tenantID, ok := ctx.Value(types.CtxTenantID).(string); ok {
		if sub.TenantID != tenantID {
			return false
		}
	}
	return true
}

func subscriptionSortFn(i, j *subscription.Subscription) bool {
	if i == nil || j == nil {
		return false
	}
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}
	cp := *sub
	return s.InMemoryStore.Create(ctx, sub.ID, &cp)
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || sub == nil || sub.TenantID != types.GetTenantID(ctx) {
		return nil, ierr.NewError("subscription not found").
			WithHintf("subscription %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	cp := *sub
	return &cp, nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.items[sub.ID]
	if !exists {
		return ierr.NewError("subscription not found").
			WithHintf("subscription %s does not exist", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	if current.Version != sub.Version {
		return ierr.NewError("subscription was modified concurrently").
			WithHintf("subscription %s version %d is stale", sub.ID, sub.Version).
			Mark(ierr.ErrVersionConflict)
	}

	cp := *sub
	cp.Version++
	s.items[sub.ID] = &cp
	sub.Version++
	return nil
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter types.Filter) ([]*subscription.Subscription, error) {
	return s.InMemoryStore.List(ctx, filter, subscriptionFilterFn, subscriptionSortFn)
}

func (s *InMemorySubscriptionStore) ListDueForActivation(ctx context.Context, now time.Time, limit int) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*subscription.Subscription
	for _, sub := range s.items {
		if sub.IntendedPlanID != nil && !sub.CurrentPeriodEnd.After(now) {
			cp := *sub
			due = append(due, &cp)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].CurrentPeriodEnd.Before(due[j].CurrentPeriodEnd)
	})
	if len(due) > limit {
		due = due[:limit]
	}

	return due, nil
}

func (s *InMemorySubscriptionStore) ActivatePending(ctx context.Context, sub *subscription.Subscription, now time.Time) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.items[sub.ID]
	if !exists || current.IntendedPlanID == nil || current.CurrentPeriodEnd.After(now) {
		return ierr.NewError("scheduled plan change already activated or not due").
			WithHintf("subscription %s has no due pending plan change", sub.ID).
			Mark(ierr.ErrVersionConflict)
	}

	cp := *current
	cp.PlanID = sub.PlanID
	cp.SubscriptionStatus = sub.SubscriptionStatus
	cp.CurrentPeriodStart = sub.CurrentPeriodStart
	cp.CurrentPeriodEnd = sub.CurrentPeriodEnd
	cp.IntendedPlanID = nil
	cp.Version++
	cp.UpdatedAt = sub.UpdatedAt
	cp.UpdatedBy = sub.UpdatedBy
	s.items[sub.ID] = &cp
	return nil
}

// countReferencing counts non-terminated subscriptions on or moving to a plan
func (s *InMemorySubscriptionStore) countReferencing(ctx context.Context, planID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenantID := types.GetTenantID(ctx)
	count := 0
	for _, sub := range s.items {
		if sub.TenantID != tenantID {
			continue
		}
		switch sub.SubscriptionStatus {
		case types.SubscriptionStatusActive,
			types.SubscriptionStatusTrialing,
			types.SubscriptionStatusPendingCheckout:
		default:
			continue
		}
		if sub.PlanID == planID {
			count++
			continue
		}
		if sub.IntendedPlanID != nil && *sub.IntendedPlanID == planID {
			count++
		}
	}
	return count
}
