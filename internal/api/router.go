package api

import (
	"github.com/gin-gonic/gin"
	"github.com/kopikita/roastery/internal/api/cron"
	v1 "github.com/kopikita/roastery/internal/api/v1"
	"github.com/kopikita/roastery/internal/config"
	"github.com/kopikita/roastery/internal/logger"
	"github.com/kopikita/roastery/internal/rest/middleware"
	"github.com/kopikita/roastery/internal/types"
)

type Handlers struct {
	Health           *v1.HealthHandler
	Plan             *v1.PlanHandler
	Subscription     *v1.SubscriptionHandler
	CronSubscription *cron.SubscriptionHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == types.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.TenantMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	cronGroup := router.Group("/cron")
	registerCronRoutes(cronGroup, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	plans := router.Group("/plans")
	{
		plans.POST("", handlers.Plan.CreatePlan)
		plans.GET("", handlers.Plan.GetPlans)
		plans.GET("/:id", handlers.Plan.GetPlan)
		plans.PUT("/:id", handlers.Plan.UpdatePlan)
		plans.DELETE("/:id", handlers.Plan.DeletePlan)
	}

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.CreateSubscription)
		subscriptions.GET("", handlers.Subscription.GetSubscriptions)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
		subscriptions.POST("/:id/change-plan/preview", handlers.Subscription.PreviewPlanChange)
		subscriptions.POST("/:id/change-plan", handlers.Subscription.ChangePlan)
		subscriptions.POST("/:id/renew", handlers.Subscription.RenewSubscription)
		subscriptions.GET("/:id/transactions", handlers.Subscription.GetTransactions)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("/activate-due", handlers.CronSubscription.ActivateDueUpgrades)
	}
}
