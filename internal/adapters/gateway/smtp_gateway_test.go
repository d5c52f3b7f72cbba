package gateway

import (
	"context"
	"strings"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/mikey/resend-relay/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider is a ProviderClient test double recording the last payload.
type fakeProvider struct {
	sendID      string
	sendErr     error
	lastPayload *core.SendPayload
}

func (f *fakeProvider) Send(ctx context.Context, payload *core.SendPayload) (string, error) {
	f.lastPayload = payload
	return f.sendID, f.sendErr
}

func (f *fakeProvider) ListDomains(ctx context.Context) ([]core.Domain, error) {
	return nil, nil
}

func (f *fakeProvider) ListEmails(ctx context.Context, limit int) ([]*core.EmailRecord, bool, error) {
	return nil, false, nil
}

func (f *fakeProvider) GetEmail(ctx context.Context, id string) (*core.EmailRecord, error) {
	return nil, core.ErrNotFound
}

func newTestSession(provider *fakeProvider, cfg core.MailerConfig) *smtpSession {
	logger := zap.NewNop()
	mailer := core.NewMailerService(provider, logger, cfg, nil)
	return &smtpSession{
		gateway:    NewSMTPGateway(mailer, logger, "127.0.0.1:0"),
		recipients: []string{"to@example.com"},
	}
}

const testMessage = "From: Jane <jane@example.com>\r\n" +
	"To: to@example.com\r\n" +
	"Subject: Hello\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"plain body\r\n"

func TestSessionData_RelaysMessage(t *testing.T) {
	provider := &fakeProvider{sendID: "msg-123"}
	session := newTestSession(provider, core.MailerConfig{
		OverrideEnabled: true,
		FromEmail:       "noreply@example.com",
	})

	err := session.Data(strings.NewReader(testMessage))

	require.NoError(t, err)
	require.NotNil(t, provider.lastPayload)
	assert.Equal(t, []string{"to@example.com"}, provider.lastPayload.To)
	assert.Equal(t, "Hello", provider.lastPayload.Subject)
	assert.Equal(t, "plain body\r\n", provider.lastPayload.Text)
	// The message From header wins over the configured identity.
	assert.Equal(t, "Jane <jane@example.com>", provider.lastPayload.From)
}

func TestSessionData_PassThroughIsTemporaryFailure(t *testing.T) {
	session := newTestSession(&fakeProvider{}, core.MailerConfig{
		OverrideEnabled: false,
	})

	err := session.Data(strings.NewReader(testMessage))

	var smtpErr *smtp.SMTPError
	require.ErrorAs(t, err, &smtpErr)
	assert.Equal(t, 451, smtpErr.Code)
}

func TestSessionData_SendFailureIsPermanent(t *testing.T) {
	provider := &fakeProvider{sendErr: assert.AnError}
	session := newTestSession(provider, core.MailerConfig{
		OverrideEnabled: true,
		FromEmail:       "noreply@example.com",
	})

	err := session.Data(strings.NewReader(testMessage))

	var smtpErr *smtp.SMTPError
	require.ErrorAs(t, err, &smtpErr)
	assert.Equal(t, 554, smtpErr.Code)
}

func TestSessionData_EnvelopeSenderFallback(t *testing.T) {
	provider := &fakeProvider{sendID: "msg-123"}
	session := newTestSession(provider, core.MailerConfig{
		OverrideEnabled: true,
	})
	session.sender = "envelope@example.com"

	msg := "To: to@example.com\r\n" +
		"Subject: Hello\r\n" +
		"\r\n" +
		"<p>body</p>\r\n"
	err := session.Data(strings.NewReader(msg))

	require.NoError(t, err)
	assert.Equal(t, "envelope@example.com", provider.lastPayload.From)
}

func TestSessionData_MalformedMessageRejected(t *testing.T) {
	session := newTestSession(&fakeProvider{}, core.MailerConfig{
		OverrideEnabled: true,
		FromEmail:       "noreply@example.com",
	})

	err := session.Data(strings.NewReader("not an rfc822 message"))

	var smtpErr *smtp.SMTPError
	require.ErrorAs(t, err, &smtpErr)
	assert.Equal(t, 554, smtpErr.Code)
}

func TestSessionReset(t *testing.T) {
	session := newTestSession(&fakeProvider{}, core.MailerConfig{})
	session.sender = "someone@example.com"

	session.Reset()

	assert.Empty(t, session.sender)
	assert.Empty(t, session.recipients)
}
