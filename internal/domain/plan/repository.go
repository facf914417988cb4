package plan

import (
	"context"

	"github.com/kopikita/roastery/internal/types"
)

// Repository defines the interface for plan persistence
type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
	GetByLookupKey(ctx context.Context, lookupKey string) (*Plan, error)
	List(ctx context.Context, filter types.Filter) ([]*Plan, error)
	Update(ctx context.Context, plan *Plan) error
	Delete(ctx context.Context, id string) error
	// CountSubscriptionsReferencing returns the number of non-terminated
	// subscriptions currently on the given plan
	CountSubscriptionsReferencing(ctx context.Context, planID string) (int, error)
}
