package postgres

import (
	"context"

	"github.com/kopikita/roastery/internal/domain/ledger"
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/logger"
	"github.com/kopikita/roastery/internal/postgres"
	"github.com/kopikita/roastery/internal/types"
)

type ledgerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewLedgerRepository(db *postgres.DB, logger *logger.Logger) ledger.Repository {
	return &ledgerRepository{db: db, logger: logger}
}

func (r *ledgerRepository) Create(ctx context.Context, txn *ledger.Transaction) error {
	query := `
		INSERT INTO billing_transactions (
			id,
			tenant_id,
			subscription_id,
			reference_id,
			amount,
			currency,
			reason,
			metadata,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:tenant_id,
			:subscription_id,
			:reference_id,
			:amount,
			:currency,
			:reason,
			:metadata,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("recording billing transaction",
		"transaction_id", txn.ID,
		"subscription_id", txn.SubscriptionID,
		"amount", txn.Amount,
		"reason", txn.Reason,
	)

	_, err := r.db.NamedExecContext(ctx, query, txn)
	if err != nil {
		r.logger.Errorw("failed to record billing transaction", "error", err)
		return ierr.WithError(err).
			WithHint("Failed to record billing transaction").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *ledgerRepository) Get(ctx context.Context, id string) (*ledger.Transaction, error) {
	query := `
		SELECT * FROM billing_transactions
		WHERE id = :id
		AND tenant_id = :tenant_id
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get billing transaction").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("billing transaction not found").
			WithHintf("transaction %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}

	var txn ledger.Transaction
	if err := rows.StructScan(&txn); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read billing transaction").
			Mark(ierr.ErrDatabase)
	}

	return &txn, nil
}

func (r *ledgerRepository) ListBySubscription(ctx context.Context, subscriptionID string, filter types.Filter) ([]*ledger.Transaction, error) {
	query := `
		SELECT * FROM billing_transactions
		WHERE subscription_id = :subscription_id
		AND tenant_id = :tenant_id
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"subscription_id": subscriptionID,
		"tenant_id":       types.GetTenantID(ctx),
		"limit":           filter.GetLimit(),
		"offset":          filter.GetOffset(),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list billing transactions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var txns []*ledger.Transaction
	for rows.Next() {
		var txn ledger.Transaction
		if err := rows.StructScan(&txn); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to read billing transaction").
				Mark(ierr.ErrDatabase)
		}
		txns = append(txns, &txn)
	}

	return txns, nil
}
