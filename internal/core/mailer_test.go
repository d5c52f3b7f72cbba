package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider is a ProviderClient test double recording the last payload.
type fakeProvider struct {
	sendID      string
	sendErr     error
	sendCalls   int
	lastPayload *SendPayload

	domains    []Domain
	domainsErr error

	listRecords []*EmailRecord
	listHasMore bool
	listErr     error
	listCalls   int

	getRecord *EmailRecord
	getErr    error
	getCalls  int
}

func (f *fakeProvider) Send(ctx context.Context, payload *SendPayload) (string, error) {
	f.sendCalls++
	f.lastPayload = payload
	return f.sendID, f.sendErr
}

func (f *fakeProvider) ListDomains(ctx context.Context) ([]Domain, error) {
	return f.domains, f.domainsErr
}

func (f *fakeProvider) ListEmails(ctx context.Context, limit int) ([]*EmailRecord, bool, error) {
	f.listCalls++
	return f.listRecords, f.listHasMore, f.listErr
}

func (f *fakeProvider) GetEmail(ctx context.Context, id string) (*EmailRecord, error) {
	f.getCalls++
	return f.getRecord, f.getErr
}

func validMessage() *OutgoingMessage {
	return &OutgoingMessage{
		To:      []string{"to@example.com"},
		Subject: "Hello",
		Body:    "<p>Hi there</p>",
	}
}

func TestTrySend_OverrideDisabledPassesThrough(t *testing.T) {
	provider := &fakeProvider{sendID: "id-1"}
	mailer := NewMailerService(provider, zap.NewNop(), MailerConfig{
		OverrideEnabled: false,
		FromEmail:       "noreply@example.com",
	}, nil)

	result := mailer.TrySend(context.Background(), validMessage())

	assert.Equal(t, StatusNotHandled, result.Status)
	assert.Zero(t, provider.sendCalls)
}

func TestTrySend_NilProviderPassesThrough(t *testing.T) {
	mailer := NewMailerService(nil, zap.NewNop(), MailerConfig{
		OverrideEnabled: true,
		FromEmail:       "noreply@example.com",
	}, nil)

	result := mailer.TrySend(context.Background(), validMessage())

	assert.Equal(t, StatusNotHandled, result.Status)
}

func TestTrySend_MissingRecipientFailsWithoutProviderCall(t *testing.T) {
	provider := &fakeProvider{sendID: "id-1"}
	mailer := NewMailerService(provider, zap.NewNop(), MailerConfig{
		OverrideEnabled: true,
		FromEmail:       "noreply@example.com",
	}, nil)

	msg := validMessage()
	msg.To = []string{""}
	result := mailer.TrySend(context.Background(), msg)

	assert.Equal(t, StatusFailed, result.Status)
	var validationErr *ValidationError
	require.ErrorAs(t, result.Err, &validationErr)
	assert.Equal(t, "to", validationErr.Field)
	assert.Zero(t, provider.sendCalls)
}

func TestTrySend_NoResolvableFromFails(t *testing.T) {
	provider := &fakeProvider{sendID: "id-1"}
	mailer := NewMailerService(provider, zap.NewNop(), MailerConfig{
		OverrideEnabled: true,
	}, nil)

	result := mailer.TrySend(context.Background(), validMessage())

	assert.Equal(t, StatusFailed, result.Status)
	var configErr *ConfigError
	require.ErrorAs(t, result.Err, &configErr)
	assert.Zero(t, provider.sendCalls)
}

func TestTrySend_SuccessBuildsHTMLPayload(t *testing.T) {
	provider := &fakeProvider{sendID: "msg-123"}
	mailer := NewMailerService(provider, zap.NewNop(), MailerConfig{
		OverrideEnabled: true,
		FromEmail:       "noreply@example.com",
		FromName:        "Relay",
	}, nil)

	result := mailer.TrySend(context.Background(), validMessage())

	require.Equal(t, StatusSent, result.Status)
	assert.Equal(t, "msg-123", result.MessageID)

	require.NotNil(t, provider.lastPayload)
	assert.Equal(t, "Relay <noreply@example.com>", provider.lastPayload.From)
	assert.Equal(t, []string{"to@example.com"}, provider.lastPayload.To)
	assert.Equal(t, "<p>Hi there</p>", provider.lastPayload.HTML)
	assert.Empty(t, provider.lastPayload.Text)
}

func TestTrySend_PlainTextContentType(t *testing.T) {
	provider := &fakeProvider{sendID: "msg-456"}
	mailer := NewMailerService(provider, zap.NewNop(), MailerConfig{
		OverrideEnabled: true,
		FromEmail:       "noreply@example.com",
	}, nil)

	msg := validMessage()
	msg.Body = "just text"
	msg.Headers = []string{"Content-Type: text/plain; charset=UTF-8"}
	result := mailer.TrySend(context.Background(), msg)

	require.Equal(t, StatusSent, result.Status)
	assert.Equal(t, "just text", provider.lastPayload.Text)
	assert.Empty(t, provider.lastPayload.HTML)
}

func TestTrySend_ProviderErrorNeverEscapes(t *testing.T) {
	provider := &fakeProvider{sendErr: errors.New("validation_error: invalid to")}
	mailer := NewMailerService(provider, zap.NewNop(), MailerConfig{
		OverrideEnabled: true,
		FromEmail:       "noreply@example.com",
	}, nil)

	result := mailer.TrySend(context.Background(), validMessage())

	assert.Equal(t, StatusFailed, result.Status)
	assert.ErrorContains(t, result.Err, "validation_error")
}

func TestResolveSender_HeaderFromWins(t *testing.T) {
	mailer := NewMailerService(nil, zap.NewNop(), MailerConfig{
		FromEmail: "noreply@example.com",
		FromName:  "Relay",
	}, nil)

	sender, err := mailer.ResolveSender(ParseHeaders([]string{
		"From: Jane <jane@other.com>",
	}))

	require.NoError(t, err)
	assert.Equal(t, "jane@other.com", sender.Email)
	assert.Equal(t, "Jane", sender.Name)
}

func TestResolveSender_ConfiguredNameFillsIn(t *testing.T) {
	mailer := NewMailerService(nil, zap.NewNop(), MailerConfig{
		FromEmail: "noreply@example.com",
		FromName:  "Relay",
	}, nil)

	sender, err := mailer.ResolveSender(ParseHeaders([]string{
		"From: bare@other.com",
	}))

	require.NoError(t, err)
	assert.Equal(t, "bare@other.com", sender.Email)
	assert.Equal(t, "Relay", sender.Name)
}

func TestResolveSender_ForceFromIgnoresHeader(t *testing.T) {
	mailer := NewMailerService(nil, zap.NewNop(), MailerConfig{
		ForceFrom: true,
		FromEmail: "noreply@example.com",
		FromName:  "Relay",
	}, nil)

	sender, err := mailer.ResolveSender(ParseHeaders([]string{
		"From: Jane <jane@other.com>",
	}))

	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", sender.Email)
	assert.Equal(t, "Relay", sender.Name)
}

func TestResolveSender_NoFromAnywhere(t *testing.T) {
	mailer := NewMailerService(nil, zap.NewNop(), MailerConfig{}, nil)

	_, err := mailer.ResolveSender(ParseHeaders(nil))

	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
}

func TestBuildPayload_RecipientHeaders(t *testing.T) {
	mailer := NewMailerService(nil, zap.NewNop(), MailerConfig{}, nil)

	msg := validMessage()
	msg.Headers = []string{
		"Cc: a@example.com, b@example.com",
		"Bcc: hidden@example.com",
		"Reply-To: support@example.com",
	}
	payload := mailer.BuildPayload(msg, Address{Email: "noreply@example.com"}, ParseHeaders(msg.Headers))

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, payload.CC)
	assert.Equal(t, []string{"hidden@example.com"}, payload.BCC)
	assert.Equal(t, "support@example.com", payload.ReplyTo)
}

func TestBuildPayload_AttachmentsEncodedAndMissingSkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invoice.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	mailer := NewMailerService(nil, zap.NewNop(), MailerConfig{}, nil)

	msg := validMessage()
	msg.Attachments = []string{path, filepath.Join(dir, "missing.pdf")}
	payload := mailer.BuildPayload(msg, Address{Email: "noreply@example.com"}, ParseHeaders(nil))

	require.Len(t, payload.Attachments, 1)
	assert.Equal(t, "invoice.txt", payload.Attachments[0].Filename)
	assert.Equal(t, "aGVsbG8=", payload.Attachments[0].Content)
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "Jane <jane@example.com>", Address{Name: "Jane", Email: "jane@example.com"}.String())
	assert.Equal(t, "jane@example.com", Address{Email: "jane@example.com"}.String())
}
