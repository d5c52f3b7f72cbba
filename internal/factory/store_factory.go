package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/resend-relay/internal/adapters/store"
	"github.com/mikey/resend-relay/internal/config"
	"github.com/mikey/resend-relay/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates email stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEmailStore creates an email store based on the configuration
func (f *StoreFactory) CreateEmailStore() (core.EmailStore, error) {
	cacheCfg := f.cfg.GetCache()

	switch cacheCfg.Type {
	case "memory":
		return store.NewMemoryStore(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(cacheCfg.SQLitePath, f.logger)
	case "mysql":
		return store.NewMySQLStore(cacheCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}

// GetRetentionDays returns the configured cache retention window
func (f *StoreFactory) GetRetentionDays() int {
	return f.cfg.GetCache().RetentionDays
}
