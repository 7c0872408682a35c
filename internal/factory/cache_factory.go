package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/adapters/cache"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// CacheFactory creates decision caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{cfg: cfg, logger: logger}
}

// CreateDecisionCache creates a decision cache based on the configuration
func (f *CacheFactory) CreateDecisionCache() (core.DecisionCache, error) {
	cacheCfg := f.cfg.GetCache()
	ttls := cache.NewTTLTable(cacheCfg)

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryCache(cacheCfg.MaxSize, ttls, cacheCfg.CleanupFreq, f.logger), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(cacheCfg.SQLitePath, ttls, cacheCfg.CleanupFreq, f.logger)
	case "mysql":
		return cache.NewMySQLCache(cacheCfg.MySQLDSN, ttls, cacheCfg.CleanupFreq, f.logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}

// IsCacheEnabled returns whether caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetBool("cache.enabled")
}
