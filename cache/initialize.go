package cache

import (
	"os"

	"notes-app/config"

	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitializeCache opens the session cache (in-memory or Redis)
func InitializeCache(cfg config.Config) cache.Cache {
	cache, err := cache.New(cache.Config{
		Type:          cfg.CacheType,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Error("Failed to initialize cache:", zap.Error(err), zap.String("type", cfg.CacheType))
		os.Exit(1)
	}
	logger.Info("Cache initialized", zap.String("type", cfg.CacheType))
	return cache
}
