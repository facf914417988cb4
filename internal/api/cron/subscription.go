package cron

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kopikita/roastery/internal/logger"
	"github.com/kopikita/roastery/internal/service"
)

// SubscriptionHandler handles subscription related cron jobs
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	logger              *logger.Logger
}

// NewSubscriptionHandler creates a new subscription cron handler
func NewSubscriptionHandler(
	subscriptionService service.SubscriptionService,
	logger *logger.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

// ActivateDueUpgrades sweeps scheduled plan changes whose boundary has passed
func (h *SubscriptionHandler) ActivateDueUpgrades(c *gin.Context) {
	h.logger.Infow("starting scheduled plan change activation cron job")

	response, err := h.subscriptionService.ActivateDueUpgrades(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to activate due plan changes",
			"error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed scheduled plan change activation cron job",
		"activated", response.Activated,
		"failed", response.Failed)
	c.JSON(http.StatusOK, response)
}
