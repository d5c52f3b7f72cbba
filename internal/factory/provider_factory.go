package factory

import (
	"github.com/mikey/resend-relay/internal/adapters/resendapi"
	"github.com/mikey/resend-relay/internal/config"
	"github.com/mikey/resend-relay/internal/core"
	"go.uber.org/zap"
)

// ProviderFactory creates provider clients based on configuration
type ProviderFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config, logger *zap.Logger) *ProviderFactory {
	return &ProviderFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateProviderClient creates a provider client from the configuration.
// A missing API key yields a nil client, which makes every send pass
// through to the host's own transport.
func (f *ProviderFactory) CreateProviderClient() core.ProviderClient {
	resendCfg := f.cfg.GetResend()
	if resendCfg.APIKey == "" {
		f.logger.Warn("No Resend API key configured, mail interception will pass through")
		return nil
	}
	return resendapi.NewClient(resendCfg.APIKey, resendCfg.BaseURL, resendCfg.Timeout, f.logger)
}
