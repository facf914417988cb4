package postgres

import (
	"context"
	"time"

	"github.com/kopikita/roastery/internal/domain/subscription"
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/logger"
	"github.com/kopikita/roastery/internal/postgres"
	"github.com/kopikita/roastery/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id,
			tenant_id,
			plan_id,
			subscription_status,
			current_period_start,
			current_period_end,
			intended_plan_id,
			trial_end,
			version,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:tenant_id,
			:plan_id,
			:subscription_status,
			:current_period_start,
			:current_period_end,
			:intended_plan_id,
			:trial_end,
			:version,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"tenant_id", sub.TenantID,
	)

	_, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		r.logger.Errorw("failed to create subscription", "error", err)
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE id = :id
		AND tenant_id = :tenant_id
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
	})
	if err != nil {
		r.logger.Errorw("failed to get subscription", "error", err, "subscription_id", id)
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("subscription not found").
			WithHintf("subscription %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}

	var sub subscription.Subscription
	if err := rows.StructScan(&sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read subscription").
			Mark(ierr.ErrDatabase)
	}

	return &sub, nil
}

// Update persists the subscription guarded on the version it was read at.
// A concurrent renewal or plan change bumps the version, in which case the
// caller gets a version conflict and must re-read and recompute.
func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			plan_id = :plan_id,
			subscription_status = :subscription_status,
			current_period_start = :current_period_start,
			current_period_end = :current_period_end,
			intended_plan_id = :intended_plan_id,
			trial_end = :trial_end,
			version = version + 1,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id
		AND version = :version
	`

	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		r.logger.Errorw("failed to update subscription", "error", err, "subscription_id", sub.ID)
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("subscription was modified concurrently").
			WithHintf("subscription %s version %d is stale", sub.ID, sub.Version).
			Mark(ierr.ErrVersionConflict)
	}

	sub.Version++
	return nil
}

func (r *subscriptionRepository) List(ctx context.Context, filter types.Filter) ([]*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE tenant_id = :tenant_id
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"limit":     filter.GetLimit(),
		"offset":    filter.GetOffset(),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		var sub subscription.Subscription
		if err := rows.StructScan(&sub); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to read subscription").
				Mark(ierr.ErrDatabase)
		}
		subs = append(subs, &sub)
	}

	return subs, nil
}

// ListDueForActivation runs across tenants: the scheduled sweep owns the
// whole installation, so no tenant filter applies here.
func (r *subscriptionRepository) ListDueForActivation(ctx context.Context, now time.Time, limit int) ([]*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE intended_plan_id IS NOT NULL
		AND current_period_end <= :now
		ORDER BY current_period_end ASC
		LIMIT :limit
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"now":   now,
		"limit": limit,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list due subscriptions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		var sub subscription.Subscription
		if err := rows.StructScan(&sub); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to read subscription").
				Mark(ierr.ErrDatabase)
		}
		subs = append(subs, &sub)
	}

	return subs, nil
}

// ActivatePending applies an already-computed activation as one conditional
// UPDATE. The guard re-checks `intended_plan_id IS NOT NULL AND
// current_period_end <= now` inside the database so that a user-triggered
// request and the scheduled sweep racing on the same subscription cannot both
// activate it: exactly one UPDATE matches, the loser sees a version conflict.
func (r *subscriptionRepository) ActivatePending(ctx context.Context, sub *subscription.Subscription, now time.Time) error {
	query := `
		UPDATE subscriptions SET
			plan_id = :plan_id,
			subscription_status = :subscription_status,
			current_period_start = :current_period_start,
			current_period_end = :current_period_end,
			intended_plan_id = NULL,
			version = version + 1,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND intended_plan_id IS NOT NULL
		AND current_period_end <= :now
	`

	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":                   sub.ID,
		"plan_id":              sub.PlanID,
		"subscription_status":  sub.SubscriptionStatus,
		"current_period_start": sub.CurrentPeriodStart,
		"current_period_end":   sub.CurrentPeriodEnd,
		"updated_at":           sub.UpdatedAt,
		"updated_by":           sub.UpdatedBy,
		"now":                  now,
	})
	if err != nil {
		r.logger.Errorw("failed to activate pending plan change",
			"error", err,
			"subscription_id", sub.ID,
		)
		return ierr.WithError(err).
			WithHint("Failed to activate scheduled plan change").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("scheduled plan change already activated or not due").
			WithHintf("subscription %s has no due pending plan change", sub.ID).
			Mark(ierr.ErrVersionConflict)
	}

	return nil
}
