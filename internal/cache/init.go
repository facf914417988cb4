package cache

import (
	"github.com/kopikita/roastery/internal/config"
	"github.com/kopikita/roastery/internal/logger"
)

// Initialize initializes the cache system
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Info("Initializing cache system")
	return NewInMemoryCache(cfg)
}
