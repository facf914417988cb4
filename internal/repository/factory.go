package repository

import (
	"github.com/kopikita/roastery/internal/domain/ledger"
	"github.com/kopikita/roastery/internal/domain/plan"
	"github.com/kopikita/roastery/internal/domain/subscription"
	"github.com/kopikita/roastery/internal/logger"
	"github.com/kopikita/roastery/internal/postgres"
	postgresRepo "github.com/kopikita/roastery/internal/repository/postgres"
)

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return postgresRepo.NewPlanRepository(db, logger)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewLedgerRepository(db *postgres.DB, logger *logger.Logger) ledger.Repository {
	return postgresRepo.NewLedgerRepository(db, logger)
}
