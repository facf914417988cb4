package testutil

import (
	"context"

	"github.com/kopikita/roastery/internal/domain/plan"
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]

	// subscriptions backs CountSubscriptionsReferencing
	subscriptions *InMemorySubscriptionStore
}

// NewInMemoryPlanStore creates a new in-memory plan store. The subscription
// store is consulted when counting references to a plan.
func NewInMemoryPlanStore(subscriptions *InMemorySubscriptionStore) *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore[*plan.Plan](),
		subscriptions: subscriptions,
	}
}

func planFilterFn(ctx context.Context, p *plan.Plan) bool {
	if p == nil {
		return false
	}
	if tenantID, ok := ctx.Value(types.CtxTenantID).(string); ok {
		if p.TenantID != tenantID {
			return false
		}
	}
	return p.Status == types.StatusPublished
}

func planSortFn(i, j *plan.Plan) bool {
	if i == nil || j == nil {
		return false
	}
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").Mark(ierr.ErrValidation)
	}
	cp := *p
	return s.InMemoryStore.Create(ctx, p.ID, &cp)
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || p == nil {
		return nil, ierr.NewError("plan not found").
			WithHintf("plan %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	if p.Status == types.StatusDeleted || p.TenantID != types.GetTenantID(ctx) {
		return nil, ierr.NewError("plan not found").
			WithHintf("plan %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryPlanStore) GetByLookupKey(ctx context.Context, lookupKey string) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.items {
		if p.LookupKey == lookupKey && planFilterFn(ctx, p) {
			cp := *p
			return &cp, nil
		}
	}

	return nil, ierr.NewError("plan not found").
		WithHintf("no plan with lookup key %s", lookupKey).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPlanStore) List(ctx context.Context, filter types.Filter) ([]*plan.Plan, error) {
	return s.InMemoryStore.List(ctx, filter, planFilterFn, planSortFn)
}

func (s *InMemoryPlanStore) Update(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").Mark(ierr.ErrValidation)
	}
	cp := *p
	return s.InMemoryStore.Update(ctx, p.ID, &cp)
}

// Delete soft deletes the plan, matching the database repository
func (s *InMemoryPlanStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.items[id]
	if !exists {
		return ierr.NewError("plan not found").
			WithHintf("plan %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}

	cp := *p
	cp.Status = types.StatusDeleted
	s.items[id] = &cp
	return nil
}

func (s *InMemoryPlanStore) CountSubscriptionsReferencing(ctx context.Context, planID string) (int, error) {
	return s.subscriptions.countReferencing(ctx, planID), nil
}
