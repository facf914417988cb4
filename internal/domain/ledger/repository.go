package ledger

import (
	"context"

	"github.com/kopikita/roastery/internal/types"
)

// Repository defines the interface for the append-only transaction ledger
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	Get(ctx context.Context, id string) (*Transaction, error)
	ListBySubscription(ctx context.Context, subscriptionID string, filter types.Filter) ([]*Transaction, error)
}
