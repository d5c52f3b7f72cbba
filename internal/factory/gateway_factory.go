package factory

import (
	"github.com/mikey/resend-relay/internal/adapters/gateway"
	"github.com/mikey/resend-relay/internal/config"
	"github.com/mikey/resend-relay/internal/core"
	"github.com/mikey/resend-relay/internal/ports"
	"go.uber.org/zap"
)

// GatewayFactory creates host-facing mail gateways based on configuration
type GatewayFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	mailer *core.MailerService
}

// NewGatewayFactory creates a new gateway factory
func NewGatewayFactory(cfg *config.Config, logger *zap.Logger, mailer *core.MailerService) *GatewayFactory {
	return &GatewayFactory{
		cfg:    cfg,
		logger: logger,
		mailer: mailer,
	}
}

// CreateMailGateway creates the SMTP gateway, or nil when it is disabled.
func (f *GatewayFactory) CreateMailGateway() ports.MailGateway {
	if !f.cfg.GetBool("smtp.enabled") {
		f.logger.Info("SMTP gateway disabled by configuration")
		return nil
	}
	return gateway.NewSMTPGateway(f.mailer, f.logger, f.cfg.GetString("smtp.listen_address"))
}
