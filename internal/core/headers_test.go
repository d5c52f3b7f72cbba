package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHeaders_StructuredFields(t *testing.T) {
	parsed := ParseHeaders([]string{
		"From: Jane Doe <jane@example.com>",
		"Cc: a@example.com, b@example.com",
		"Bcc: hidden@example.com",
		"Reply-To: support@example.com",
		"Content-Type: text/plain; charset=UTF-8",
	})

	assert.Equal(t, "Jane Doe", parsed.From.Name)
	assert.Equal(t, "jane@example.com", parsed.From.Email)
	assert.Equal(t, "a@example.com, b@example.com", parsed.CC)
	assert.Equal(t, "hidden@example.com", parsed.BCC)
	assert.Equal(t, "support@example.com", parsed.ReplyTo)
	assert.Equal(t, "text/plain; charset=UTF-8", parsed.ContentType)
}

func TestParseHeaders_Defaults(t *testing.T) {
	parsed := ParseHeaders(nil)

	assert.Equal(t, "text/html", parsed.ContentType)
	assert.Empty(t, parsed.From.Email)
	assert.Empty(t, parsed.CC)
}

func TestParseHeaders_CaseInsensitiveNames(t *testing.T) {
	parsed := ParseHeaders([]string{
		"FROM: admin@example.com",
		"content-type: text/plain",
		"REPLY-TO: replies@example.com",
	})

	assert.Equal(t, "admin@example.com", parsed.From.Email)
	assert.Equal(t, "text/plain", parsed.ContentType)
	assert.Equal(t, "replies@example.com", parsed.ReplyTo)
}

func TestParseHeaders_MalformedInputNeverFails(t *testing.T) {
	parsed := ParseHeaders([]string{
		"",
		"   ",
		"no separator here",
		"From",
		"X-Custom: ignored",
	})

	assert.Empty(t, parsed.From.Email)
	assert.Equal(t, "text/html", parsed.ContentType)
}

func TestParseHeaders_QuotedDisplayName(t *testing.T) {
	parsed := ParseHeaders([]string{`From: "Acme Support" <support@acme.com>`})

	assert.Equal(t, "Acme Support", parsed.From.Name)
	assert.Equal(t, "support@acme.com", parsed.From.Email)
}

func TestParseHeaders_BareFromAddress(t *testing.T) {
	parsed := ParseHeaders([]string{"From: bare@example.com"})

	assert.Empty(t, parsed.From.Name)
	assert.Equal(t, "bare@example.com", parsed.From.Email)
}

func TestParseHeaderBlock(t *testing.T) {
	parsed := ParseHeaderBlock("From: Jane <jane@example.com>\nCc: c@example.com\n")

	assert.Equal(t, "Jane", parsed.From.Name)
	assert.Equal(t, "jane@example.com", parsed.From.Email)
	assert.Equal(t, "c@example.com", parsed.CC)
}

func TestNormalizeAddresses(t *testing.T) {
	assert.Equal(t,
		[]string{"a@example.com", "b@example.com"},
		NormalizeAddresses(" a@example.com , b@example.com "))

	// Empty pieces are dropped, duplicates pass through.
	assert.Equal(t,
		[]string{"a@example.com", "a@example.com"},
		NormalizeAddresses("a@example.com,, a@example.com"))

	assert.Nil(t, NormalizeAddresses(""))
}

func TestNormalizeRecipients(t *testing.T) {
	// A single comma-joined element is split like a raw header value.
	assert.Equal(t,
		[]string{"a@example.com", "b@example.com"},
		NormalizeRecipients([]string{"a@example.com, b@example.com"}))

	// An already-split list is returned unchanged.
	split := []string{"a@example.com", "b@example.com"}
	assert.Equal(t, split, NormalizeRecipients(split))
}
