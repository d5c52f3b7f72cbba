package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/resend-relay/internal/config"
	"github.com/mikey/resend-relay/internal/core"
	"github.com/mikey/resend-relay/internal/di"
	"github.com/mikey/resend-relay/internal/ports"
	httptransport "github.com/mikey/resend-relay/internal/transport/http"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	mailGateway ports.MailGateway,
	adminServer *httptransport.AdminServer,
	history *core.HistoryService,
	store core.EmailStore,
) error {
	defer logger.Sync()

	// Start the SMTP gateway
	if mailGateway != nil {
		if err := mailGateway.Start(); err != nil {
			logger.Fatal("Failed to start mail gateway", zap.Error(err))
			return err
		}
	}

	// Start the admin API
	if adminServer != nil {
		if err := adminServer.Start(); err != nil {
			logger.Fatal("Failed to start admin API", zap.Error(err))
			return err
		}
	}

	// Start cache retention cleanup
	var stopRetention func()
	retentionDays := cfg.GetInt("cache.retention_days")
	if frequency, err := cfg.GetDuration("cache.cleanup_frequency"); err == nil && retentionDays > 0 {
		stopRetention = history.StartRetention(retentionDays, frequency)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if stopRetention != nil {
		stopRetention()
	}

	if adminServer != nil {
		if err := adminServer.Stop(); err != nil {
			logger.Error("Failed to stop admin API", zap.Error(err))
		}
	}

	if mailGateway != nil {
		if err := mailGateway.Stop(); err != nil {
			logger.Error("Failed to stop mail gateway", zap.Error(err))
		}
	}

	// Stop the store if needed
	if stopper, ok := store.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
