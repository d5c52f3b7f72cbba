// Package gateway provides host-facing entry points that feed outgoing
// messages into the interception pipeline.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/resend-relay/internal/core"
	"go.uber.org/zap"
)

// SMTPGateway accepts mail from local applications over SMTP and routes
// each message through the mailer service. A pass-through verdict is
// reported as a temporary failure so the host falls back to its own
// transport.
type SMTPGateway struct {
	mailer     *core.MailerService
	logger     *zap.Logger
	listenAddr string
	server     *smtp.Server
}

// NewSMTPGateway creates a new SMTP gateway.
func NewSMTPGateway(mailer *core.MailerService, logger *zap.Logger, listenAddr string) *SMTPGateway {
	return &SMTPGateway{
		mailer:     mailer,
		logger:     logger,
		listenAddr: listenAddr,
	}
}

// Submit runs one outgoing message through the interception pipeline.
func (g *SMTPGateway) Submit(ctx context.Context, msg *core.OutgoingMessage) core.SendResult {
	return g.mailer.TrySend(ctx, msg)
}

// Start starts listening for SMTP submissions.
func (g *SMTPGateway) Start() error {
	g.server = smtp.NewServer(&smtpBackend{gateway: g})

	g.server.Addr = g.listenAddr
	g.server.Domain = "localhost"
	g.server.ReadTimeout = 30 * time.Second
	g.server.WriteTimeout = 30 * time.Second
	g.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	g.server.MaxRecipients = 50
	g.server.AllowInsecureAuth = true

	g.logger.Info("SMTP gateway starting", zap.String("address", g.listenAddr))

	go func() {
		if err := g.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				g.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP gateway.
func (g *SMTPGateway) Stop() error {
	if g.server != nil {
		return g.server.Close()
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	gateway *SMTPGateway
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		gateway:    b.gateway,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	gateway    *SMTPGateway
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for a local relay)
func (s *smtpSession) AuthPlain(_, _ string) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the envelope sender
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds an envelope recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data reads the message, maps it onto an OutgoingMessage and hands it to
// the interception pipeline.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.gateway.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.gateway.logger.Error("Failed to parse email message", zap.Error(err))
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Malformed message",
		}
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		s.gateway.logger.Error("Failed to read message body", zap.Error(err))
		return err
	}

	outgoing := &core.OutgoingMessage{
		To:      s.recipients,
		Subject: msg.Header.Get("Subject"),
		Body:    string(body),
		Headers: flattenHeaders(msg.Header),
	}
	// Fall back to the envelope sender when no From header is present.
	if msg.Header.Get("From") == "" && s.sender != "" {
		outgoing.Headers = append(outgoing.Headers, "From: "+s.sender)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result := s.gateway.Submit(ctx, outgoing)
	switch result.Status {
	case core.StatusSent:
		s.gateway.logger.Info("Relayed message",
			zap.String("message_id", result.MessageID),
			zap.Strings("to", s.recipients))
		return nil
	case core.StatusNotHandled:
		// Temporary failure so the submitting host retries via its own
		// transport or queue.
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Relay not handling mail, use fallback transport",
		}
	default:
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Send failed: %v", result.Err),
		}
	}
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}

// flattenHeaders converts parsed mail headers back into `Name: value`
// lines for the core header parser.
func flattenHeaders(header mail.Header) []string {
	var lines []string
	for key, values := range header {
		for _, value := range values {
			lines = append(lines, fmt.Sprintf("%s: %s", key, value))
		}
	}
	return lines
}
