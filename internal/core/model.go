package core

import (
	"fmt"
	"time"
)

// OutgoingMessage is a single outgoing email as handed over by the host
// application. It is consumed by one TrySend call and never persisted.
type OutgoingMessage struct {
	To          []string
	Subject     string
	Body        string
	Headers     []string
	Attachments []string
}

// Address is a parsed sender identity. Name may be empty.
type Address struct {
	Name  string
	Email string
}

// String renders the address as "Name <email>" when a name is present.
func (a Address) String() string {
	if a.Name != "" {
		return fmt.Sprintf("%s <%s>", a.Name, a.Email)
	}
	return a.Email
}

// ParsedHeaders is a structured view over the raw header lines of an
// outgoing message. CC, BCC and ReplyTo keep the raw comma-joined values.
type ParsedHeaders struct {
	From        Address
	CC          string
	BCC         string
	ReplyTo     string
	ContentType string
}

// Content is the body of a cached email. Fetched distinguishes a body that
// was retrieved from the provider (possibly empty) from one that was never
// fetched at all; the two states must not be conflated.
type Content struct {
	Fetched bool
	Value   string
}

// UnfetchedContent returns a Content that has never been retrieved.
func UnfetchedContent() Content {
	return Content{}
}

// FetchedContent returns a Content holding a value retrieved from the
// provider. An empty value means the provider confirmed there is none.
func FetchedContent(value string) Content {
	return Content{Fetched: true, Value: value}
}

// EmailRecord is the persistent cache record for one provider email.
// CreatedAt holds the provider timestamp normalized to UTC, or the raw
// value when it could not be parsed.
type EmailRecord struct {
	ID          string
	To          []string
	From        string
	Subject     string
	HTML        Content
	Text        Content
	CC          []string
	BCC         []string
	ReplyTo     []string
	CreatedAt   string
	LastEvent   string
	ScheduledAt string
	CachedAt    time.Time
}

// HasFullDetails reports whether the record's body has been hydrated from
// the provider. An empty fetched HTML body still counts as hydrated.
func (r *EmailRecord) HasFullDetails() bool {
	return r.HTML.Fetched
}

// SendPayload is the provider request body assembled for one send.
// Exactly one of HTML or Text is set.
type SendPayload struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	Text        string
	CC          []string
	BCC         []string
	ReplyTo     string
	Attachments []Attachment
}

// Attachment is one base64-encoded file attached to a send payload.
type Attachment struct {
	Filename string
	Content  string
}

// Domain is one sending domain registered with the provider.
type Domain struct {
	Name   string
	Status string
}

// SendStatus is the tri-state outcome of a TrySend call.
type SendStatus int

const (
	// StatusNotHandled tells the host to fall back to its own transport.
	StatusNotHandled SendStatus = iota
	// StatusSent means the provider accepted the message.
	StatusSent
	// StatusFailed means this component owned the send and it failed; the
	// host must not retry through its own mailer.
	StatusFailed
)

func (s SendStatus) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusFailed:
		return "failed"
	default:
		return "not_handled"
	}
}

// SendResult is the outcome of one send attempt.
type SendResult struct {
	Status    SendStatus
	MessageID string
	Err       error
}

// timestampLayout is the normalized UTC form timestamps are stored with.
const timestampLayout = "2006-01-02 15:04:05"

// NormalizeTimestamp parses an ISO-8601 timestamp (with or without offset)
// and returns it as UTC in `YYYY-MM-DD HH:MM:SS` form. Unparsable input is
// returned unchanged rather than rejected.
func NormalizeTimestamp(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999-07:00",
		"2006-01-02 15:04:05-07:00",
		timestampLayout,
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(timestampLayout)
		}
	}
	return value
}
