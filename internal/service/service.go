package service

import (
	"github.com/kopikita/roastery/internal/cache"
	"github.com/kopikita/roastery/internal/config"
	"github.com/kopikita/roastery/internal/domain/ledger"
	"github.com/kopikita/roastery/internal/domain/plan"
	"github.com/kopikita/roastery/internal/domain/proration"
	"github.com/kopikita/roastery/internal/domain/subscription"
	"github.com/kopikita/roastery/internal/logger"
	"github.com/kopikita/roastery/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Repositories
	PlanRepo   plan.Repository
	SubRepo    subscription.Repository
	LedgerRepo ledger.Repository

	// Calculator resolves plan-change arithmetic
	Calculator proration.Calculator
}

// NewServiceParams assembles the common service dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	planRepo plan.Repository,
	subRepo subscription.Repository,
	ledgerRepo ledger.Repository,
	calculator proration.Calculator,
) ServiceParams {
	return ServiceParams{
		Logger:     logger,
		Config:     config,
		DB:         db,
		Cache:      cache,
		PlanRepo:   planRepo,
		SubRepo:    subRepo,
		LedgerRepo: ledgerRepo,
		Calculator: calculator,
	}
}
