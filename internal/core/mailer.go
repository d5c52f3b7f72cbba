package core

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// MailerConfig holds the interception and sender-identity settings consumed
// by the mailer service.
type MailerConfig struct {
	OverrideEnabled bool
	ForceFrom       bool
	FromEmail       string
	FromName        string
}

// MailerService owns the send path: it decides whether to intercept an
// outgoing message, resolves the sender identity, builds the provider
// payload and submits it exactly once.
type MailerService struct {
	provider ProviderClient
	logger   *zap.Logger
	cfg      MailerConfig
	verifier DomainVerifier
}

// DomainVerifier reports whether a sending domain is verified with the
// provider. It is advisory only; an unverified domain never blocks a send.
type DomainVerifier interface {
	IsVerified(ctx context.Context, email string) bool
}

// NewMailerService creates a new mailer service. provider may be nil when no
// API key is configured; every send then passes through to the host.
// verifier is optional.
func NewMailerService(provider ProviderClient, logger *zap.Logger, cfg MailerConfig, verifier DomainVerifier) *MailerService {
	return &MailerService{
		provider: provider,
		logger:   logger,
		cfg:      cfg,
		verifier: verifier,
	}
}

// TrySend runs one message through the interception pipeline. The result is
// tri-state: Sent, Failed, or NotHandled when the host should fall back to
// its own transport. Provider errors never escape; they are folded into a
// Failed result.
func (s *MailerService) TrySend(ctx context.Context, msg *OutgoingMessage) SendResult {
	if !s.cfg.OverrideEnabled {
		return SendResult{Status: StatusNotHandled}
	}
	if s.provider == nil {
		s.logger.Debug("No provider client configured, passing message through")
		return SendResult{Status: StatusNotHandled}
	}

	if err := validateMessage(msg); err != nil {
		s.logger.Warn("Rejected outgoing message", zap.Error(err))
		return SendResult{Status: StatusFailed, Err: err}
	}

	headers := ParseHeaders(msg.Headers)

	sender, err := s.ResolveSender(headers)
	if err != nil {
		s.logger.Warn("Could not resolve sender identity", zap.Error(err))
		return SendResult{Status: StatusFailed, Err: err}
	}

	if s.verifier != nil && !s.cfg.ForceFrom && headers.From.Email != "" {
		if !s.verifier.IsVerified(ctx, sender.Email) {
			// Respect the caller's From either way; the provider will reject
			// the send itself if the domain is genuinely unusable.
			s.logger.Debug("Sender domain not verified with provider",
				zap.String("sender", sender.Email))
		}
	}

	payload := s.BuildPayload(msg, sender, headers)

	id, err := s.provider.Send(ctx, payload)
	if err != nil {
		s.logger.Error("Provider rejected outgoing message",
			zap.Error(err),
			zap.String("subject", msg.Subject),
			zap.Strings("to", payload.To))
		return SendResult{Status: StatusFailed, Err: err}
	}

	s.logger.Info("Message sent via provider",
		zap.String("message_id", id),
		zap.Strings("to", payload.To))
	return SendResult{Status: StatusSent, MessageID: id}
}

// validateMessage checks the fields every send requires.
func validateMessage(msg *OutgoingMessage) error {
	if len(msg.To) == 0 || (len(msg.To) == 1 && strings.TrimSpace(msg.To[0]) == "") {
		return &ValidationError{Field: "to"}
	}
	if msg.Subject == "" {
		return &ValidationError{Field: "subject"}
	}
	if msg.Body == "" {
		return &ValidationError{Field: "message"}
	}
	return nil
}

// ResolveSender decides the sender identity for one message. With ForceFrom
// the configured identity always wins; otherwise a header-provided From is
// respected, with the configured name filling in when the header has none.
func (s *MailerService) ResolveSender(headers ParsedHeaders) (Address, error) {
	sender := Address{Name: s.cfg.FromName, Email: s.cfg.FromEmail}

	if !s.cfg.ForceFrom && headers.From.Email != "" {
		sender.Email = headers.From.Email
		if headers.From.Name != "" {
			sender.Name = headers.From.Name
		}
	}

	if sender.Email == "" {
		return Address{}, &ConfigError{Reason: "from email is not configured"}
	}
	return sender, nil
}

// BuildPayload assembles the provider request body. Exactly one of HTML or
// Text is set, chosen by the parsed content type.
func (s *MailerService) BuildPayload(msg *OutgoingMessage, sender Address, headers ParsedHeaders) *SendPayload {
	payload := &SendPayload{
		From:    sender.String(),
		To:      NormalizeRecipients(msg.To),
		Subject: msg.Subject,
	}

	if strings.Contains(headers.ContentType, "text/html") {
		payload.HTML = msg.Body
	} else {
		payload.Text = msg.Body
	}

	if headers.CC != "" {
		payload.CC = NormalizeAddresses(headers.CC)
	}
	if headers.BCC != "" {
		payload.BCC = NormalizeAddresses(headers.BCC)
	}
	if headers.ReplyTo != "" {
		payload.ReplyTo = headers.ReplyTo
	}
	if len(msg.Attachments) > 0 {
		payload.Attachments = s.prepareAttachments(msg.Attachments)
	}

	return payload
}

// prepareAttachments reads and base64-encodes each attachment path.
// Missing or unreadable files are skipped, never fatal.
func (s *MailerService) prepareAttachments(paths []string) []Attachment {
	var attachments []Attachment
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("Skipping unreadable attachment",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		attachments = append(attachments, Attachment{
			Filename: filepath.Base(path),
			Content:  base64.StdEncoding.EncodeToString(data),
		})
	}
	return attachments
}
