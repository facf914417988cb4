package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kopikita/roastery/internal/api"
	"github.com/kopikita/roastery/internal/api/cron"
	v1 "github.com/kopikita/roastery/internal/api/v1"
	"github.com/kopikita/roastery/internal/cache"
	"github.com/kopikita/roastery/internal/config"
	"github.com/kopikita/roastery/internal/domain/proration"
	"github.com/kopikita/roastery/internal/logger"
	"github.com/kopikita/roastery/internal/postgres"
	"github.com/kopikita/roastery/internal/repository"
	"github.com/kopikita/roastery/internal/service"
	"github.com/kopikita/roastery/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.Initialize,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// Repositories
			repository.NewPlanRepository,
			repository.NewSubscriptionRepository,
			repository.NewLedgerRepository,

			// Proration calculator
			provideCalculator,

			// Services
			service.NewServiceParams,
			service.NewPlanService,
			service.NewSubscriptionService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideCalculator(cfg *config.Configuration) proration.Calculator {
	return proration.NewCalculator(proration.NominalDayPolicy{
		Monthly: cfg.Billing.NominalDaysMonthly,
		Annual:  cfg.Billing.NominalDaysAnnual,
	})
}

func provideHandlers(
	logger *logger.Logger,
	planService service.PlanService,
	subscriptionService service.SubscriptionService,
) api.Handlers {
	return api.Handlers{
		Health:           v1.NewHealthHandler(),
		Plan:             v1.NewPlanHandler(planService, logger),
		Subscription:     v1.NewSubscriptionHandler(subscriptionService, logger),
		CronSubscription: cron.NewSubscriptionHandler(subscriptionService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	db *postgres.DB,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infof("Starting API server on %s", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			db.Close()
			return nil
		},
	})
}
