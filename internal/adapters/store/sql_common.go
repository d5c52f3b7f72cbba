package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mikey/resend-relay/internal/core"
)

// sqlTimeLayout is the UTC datetime form used in both SQL backends.
const sqlTimeLayout = "2006-01-02 15:04:05"

// emailRow is the flat SQL shape of a core.EmailRecord. Address lists are
// JSON-encoded; html/text keep NULL for "never fetched".
type emailRow struct {
	id          string
	to          string
	from        string
	subject     string
	html        sql.NullString
	text        sql.NullString
	cc          string
	bcc         string
	replyTo     string
	createdAt   string
	lastEvent   string
	scheduledAt sql.NullString
	cachedAt    string
}

// toRow converts a record into SQL parameters, normalizing created_at and
// stamping cached_at.
func toRow(rec *core.EmailRecord) emailRow {
	return emailRow{
		id:          rec.ID,
		to:          encodeList(rec.To),
		from:        rec.From,
		subject:     rec.Subject,
		html:        contentToNull(rec.HTML),
		text:        contentToNull(rec.Text),
		cc:          encodeList(rec.CC),
		bcc:         encodeList(rec.BCC),
		replyTo:     encodeList(rec.ReplyTo),
		createdAt:   core.NormalizeTimestamp(rec.CreatedAt),
		lastEvent:   rec.LastEvent,
		scheduledAt: stringToNull(rec.ScheduledAt),
		cachedAt:    time.Now().UTC().Format(sqlTimeLayout),
	}
}

// toRecord converts a scanned row back into a record.
func (r *emailRow) toRecord() *core.EmailRecord {
	cachedAt, _ := time.Parse(sqlTimeLayout, r.cachedAt)
	return &core.EmailRecord{
		ID:          r.id,
		To:          decodeList(r.to),
		From:        r.from,
		Subject:     r.subject,
		HTML:        nullToContent(r.html),
		Text:        nullToContent(r.text),
		CC:          decodeList(r.cc),
		BCC:         decodeList(r.bcc),
		ReplyTo:     decodeList(r.replyTo),
		CreatedAt:   r.createdAt,
		LastEvent:   r.lastEvent,
		ScheduledAt: r.scheduledAt.String,
		CachedAt:    cachedAt.UTC(),
	}
}

func encodeList(values []string) string {
	if len(values) == 0 {
		return ""
	}
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(data)
}

func decodeList(value string) []string {
	if value == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(value), &values); err != nil {
		return nil
	}
	return values
}

func contentToNull(c core.Content) sql.NullString {
	return sql.NullString{String: c.Value, Valid: c.Fetched}
}

func nullToContent(ns sql.NullString) core.Content {
	if !ns.Valid {
		return core.UnfetchedContent()
	}
	return core.FetchedContent(ns.String)
}

func stringToNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
