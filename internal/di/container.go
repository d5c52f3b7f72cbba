package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/resend-relay/internal/config"
	"github.com/mikey/resend-relay/internal/core"
	"github.com/mikey/resend-relay/internal/factory"
	"github.com/mikey/resend-relay/internal/logging"
	"github.com/mikey/resend-relay/internal/ports"
	httptransport "github.com/mikey/resend-relay/internal/transport/http"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewProviderFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewGatewayFactory); err != nil {
		return nil, err
	}

	// Register provider client
	if err := container.Provide(func(f *factory.ProviderFactory) core.ProviderClient {
		return f.CreateProviderClient()
	}); err != nil {
		return nil, err
	}

	// Register email store
	if err := container.Provide(func(f *factory.StoreFactory) (core.EmailStore, error) {
		return f.CreateEmailStore()
	}); err != nil {
		return nil, err
	}

	// Register mailer configuration
	if err := container.Provide(func(cfg *config.Config) core.MailerConfig {
		mailerCfg := cfg.GetMailer()
		return core.MailerConfig{
			OverrideEnabled: mailerCfg.OverrideEnabled,
			ForceFrom:       mailerCfg.ForceFrom,
			FromEmail:       mailerCfg.FromEmail,
			FromName:        mailerCfg.FromName,
		}
	}); err != nil {
		return nil, err
	}

	// Register domain verification service
	if err := container.Provide(core.NewDomainService); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *core.DomainService) core.DomainVerifier {
		return s
	}); err != nil {
		return nil, err
	}

	// Register mailer service
	if err := container.Provide(core.NewMailerService); err != nil {
		return nil, err
	}

	// Register history synchronizer
	if err := container.Provide(core.NewHistoryService); err != nil {
		return nil, err
	}

	// Register mail gateway
	if err := container.Provide(func(f *factory.GatewayFactory) ports.MailGateway {
		return f.CreateMailGateway()
	}); err != nil {
		return nil, err
	}

	// Register admin API server
	if err := container.Provide(func(
		mailer *core.MailerService,
		history *core.HistoryService,
		domains *core.DomainService,
		logger *zap.Logger,
		cfg *config.Config,
	) *httptransport.AdminServer {
		if !cfg.GetBool("http.enabled") {
			return nil
		}
		return httptransport.NewAdminServer(mailer, history, domains, logger, cfg.GetString("http.listen_address"))
	}); err != nil {
		return nil, err
	}

	return container, nil
}
