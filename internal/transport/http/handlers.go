package httptransport

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikey/resend-relay/internal/core"
	"go.uber.org/zap"
)

// handleTestKey validates the configured API key by listing the sending
// domains registered with the provider.
func (s *AdminServer) handleTestKey(c *gin.Context) {
	verified, err := s.domains.TestKey(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, err.Error())
		return
	}
	ok(c, "API key is valid.", gin.H{"verified_domains": verified})
}

// testEmailRequest is the body of a send-test-message request.
type testEmailRequest struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// handleTestEmail sends a test message through the same interception
// pipeline ordinary mail takes.
func (s *AdminServer) handleTestEmail(c *gin.Context) {
	var req testEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "A recipient address is required.")
		return
	}
	if req.Subject == "" {
		req.Subject = "Resend Relay Test Email"
	}
	if req.Message == "" {
		req.Message = "<p>This is a test email sent by resend-relay.</p>"
	}

	msg := &core.OutgoingMessage{
		To:      []string{req.To},
		Subject: req.Subject,
		Body:    req.Message,
		Headers: []string{"Content-Type: text/html"},
	}

	result := s.mailer.TrySend(c.Request.Context(), msg)
	switch result.Status {
	case core.StatusSent:
		ok(c, "Test email sent successfully.", gin.H{"message_id": result.MessageID})
	case core.StatusNotHandled:
		fail(c, http.StatusConflict, "Mail interception is disabled or no API key is configured.")
	default:
		s.logger.Warn("Test email failed", zap.Error(result.Err))
		fail(c, http.StatusBadGateway, fmt.Sprintf("Failed to send test email: %v", result.Err))
	}
}

// importRequest is the body of an import-recent request.
type importRequest struct {
	Limit int `json:"limit"`
}

// handleImport bulk-imports recent message metadata from the provider.
func (s *AdminServer) handleImport(c *gin.Context) {
	var req importRequest
	_ = c.ShouldBindJSON(&req)

	imported, err := s.history.ImportRecent(c.Request.Context(), req.Limit)
	if err != nil {
		fail(c, http.StatusBadGateway, fmt.Sprintf("Failed to import emails: %v", err))
		return
	}
	if imported == 0 {
		ok(c, "No emails found to import.", gin.H{"imported": 0})
		return
	}
	ok(c, fmt.Sprintf("%d emails imported successfully.", imported), gin.H{"imported": imported})
}

// handleListEmails pages through the local cache. No provider call.
func (s *AdminServer) handleListEmails(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	page, err := s.history.ListCached(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to read the email cache.")
		return
	}
	ok(c, "", gin.H{
		"emails":   toEmailViews(page.Emails),
		"total":    page.Total,
		"has_more": page.HasMore,
	})
}

// handleEmailDetails returns one fully hydrated record, fetching the body
// from the provider on first view.
func (s *AdminServer) handleEmailDetails(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		fail(c, http.StatusBadRequest, "Email ID is required.")
		return
	}

	detail, err := s.history.GetDetails(c.Request.Context(), id)
	if err != nil {
		var provErr *core.ProviderError
		if errors.As(err, &provErr) {
			fail(c, http.StatusBadGateway, fmt.Sprintf("Failed to retrieve email: %s", provErr.Message))
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to retrieve email.")
		return
	}
	ok(c, "", gin.H{
		"email":  toEmailView(detail.Email),
		"cached": detail.Cached,
	})
}

// emailView is the JSON shape of a cached record. Unfetched body content
// serializes as null so clients can tell it apart from an empty body.
type emailView struct {
	ID          string   `json:"id"`
	To          []string `json:"to"`
	From        string   `json:"from"`
	Subject     string   `json:"subject"`
	HTML        *string  `json:"html"`
	Text        *string  `json:"text"`
	CC          []string `json:"cc"`
	BCC         []string `json:"bcc"`
	ReplyTo     []string `json:"reply_to"`
	CreatedAt   string   `json:"created_at"`
	LastEvent   string   `json:"last_event"`
	ScheduledAt string   `json:"scheduled_at,omitempty"`
}

func toEmailView(rec *core.EmailRecord) emailView {
	return emailView{
		ID:          rec.ID,
		To:          rec.To,
		From:        rec.From,
		Subject:     rec.Subject,
		HTML:        contentPtr(rec.HTML),
		Text:        contentPtr(rec.Text),
		CC:          rec.CC,
		BCC:         rec.BCC,
		ReplyTo:     rec.ReplyTo,
		CreatedAt:   rec.CreatedAt,
		LastEvent:   rec.LastEvent,
		ScheduledAt: rec.ScheduledAt,
	}
}

func toEmailViews(records []*core.EmailRecord) []emailView {
	views := make([]emailView, 0, len(records))
	for _, rec := range records {
		views = append(views, toEmailView(rec))
	}
	return views
}

func contentPtr(c core.Content) *string {
	if !c.Fetched {
		return nil
	}
	value := c.Value
	return &value
}

// intQuery reads an integer query parameter with a default.
func intQuery(c *gin.Context, name string, def int) int {
	value := def
	if raw, found := c.GetQuery(name); found {
		if _, err := fmt.Sscanf(raw, "%d", &value); err != nil {
			return def
		}
	}
	return value
}
