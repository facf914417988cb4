package testutil

import (
	"context"

	"github.com/kopikita/roastery/internal/domain/ledger"
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
)

// InMemoryLedgerStore implements ledger.Repository
type InMemoryLedgerStore struct {
	*InMemoryStore[*ledger.Transaction]
}

// NewInMemoryLedgerStore creates a new in-memory ledger store
func NewInMemoryLedgerStore() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{
		InMemoryStore: NewInMemoryStore[*ledger.Transaction](),
	}
}

func ledgerSortFn(i, j *ledger.Transaction) bool {
	if i == nil || j == nil {
		return false
	}
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryLedgerStore) Create(ctx context.Context, txn *ledger.Transaction) error {
	if txn == nil {
		return ierr.NewError("transaction cannot be nil").Mark(ierr.ErrValidation)
	}
	cp := *txn
	return s.InMemoryStore.Create(ctx, txn.ID, &cp)
}

func (s *InMemoryLedgerStore) Get(ctx context.Context, id string) (*ledger.Transaction, error) {
	txn, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || txn == nil || txn.TenantID != types.GetTenantID(ctx) {
		return nil, ierr.NewError("billing transaction not found").
			WithHintf("transaction %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	cp := *txn
	return &cp, nil
}

func (s *InMemoryLedgerStore) ListBySubscription(ctx context.Context, subscriptionID string, filter types.Filter) ([]*ledger.Transaction, error) {
	filterFn := func(ctx context.Context, txn *ledger.Transaction) bool {
		if txn == nil || txn.SubscriptionID != subscriptionID {
			return false
		}
		return txn.TenantID == types.GetTenantID(ctx)
	}
	return s.InMemoryStore.List(ctx, filter, filterFn, ledgerSortFn)
}
