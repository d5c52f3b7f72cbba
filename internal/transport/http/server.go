// Package httptransport exposes the operator-facing admin API.
package httptransport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/resend-relay/internal/core"
	"go.uber.org/zap"
)

// AdminServer serves the operator actions: test API key, send a test
// message, import recent history, browse the cache and view details.
type AdminServer struct {
	mailer     *core.MailerService
	history    *core.HistoryService
	domains    *core.DomainService
	logger     *zap.Logger
	listenAddr string
	server     *http.Server
}

// NewAdminServer creates a new admin API server.
func NewAdminServer(
	mailer *core.MailerService,
	history *core.HistoryService,
	domains *core.DomainService,
	logger *zap.Logger,
	listenAddr string,
) *AdminServer {
	return &AdminServer{
		mailer:     mailer,
		history:    history,
		domains:    domains,
		logger:     logger,
		listenAddr: listenAddr,
	}
}

// Router builds the gin engine with all admin routes registered.
func (s *AdminServer) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.POST("/test-key", s.handleTestKey)
		api.POST("/test-email", s.handleTestEmail)
		api.POST("/import", s.handleImport)
		api.GET("/emails", s.handleListEmails)
		api.GET("/emails/:id", s.handleEmailDetails)
	}

	return router
}

// Start starts serving the admin API.
func (s *AdminServer) Start() error {
	s.server = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	s.logger.Info("Admin API starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Admin API server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop shuts the admin API down.
func (s *AdminServer) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
