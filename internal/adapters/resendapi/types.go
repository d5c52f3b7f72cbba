// Package resendapi implements a ProviderClient against the Resend HTTP API.
package resendapi

import (
	"github.com/mikey/resend-relay/internal/core"
)

// sendEmailRequest is the request body for the POST /emails endpoint.
type sendEmailRequest struct {
	From        string           `json:"from"`
	To          []string         `json:"to"`
	Subject     string           `json:"subject"`
	HTML        string           `json:"html,omitempty"`
	Text        string           `json:"text,omitempty"`
	CC          []string         `json:"cc,omitempty"`
	BCC         []string         `json:"bcc,omitempty"`
	ReplyTo     string           `json:"reply_to,omitempty"`
	Attachments []attachmentBody `json:"attachments,omitempty"`
}

// attachmentBody is one base64-encoded attachment in a send request.
type attachmentBody struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// sendEmailResponse is the response body for a successful send.
type sendEmailResponse struct {
	ID string `json:"id"`
}

// emailResource is one email in a list or retrieve response. HTML and text
// are pointers so a JSON null (only the retrieve endpoint carries them at
// all) stays distinguishable from an empty string.
type emailResource struct {
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
	ScheduledAt string   `json:"scheduled_at"`
}

// listEmailsResponse is the response body for the GET /emails endpoint.
type listEmailsResponse struct {
	Data    []emailResource `json:"data"`
	HasMore bool            `json:"has_more"`
}

// domainResource is one domain in a list-domains response.
type domainResource struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// listDomainsResponse is the response body for the GET /domains endpoint.
type listDomainsResponse struct {
	Data []domainResource `json:"data"`
}

// apiError is the error body the Resend API returns on failure.
type apiError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// toMetadataRecord maps a list-endpoint resource to a cache record. Body
// content is deliberately left unfetched; it is hydrated on demand.
func (r emailResource) toMetadataRecord() *core.EmailRecord {
	return &core.EmailRecord{
		ID:          r.ID,
		To:          r.To,
		From:        r.From,
		Subject:     r.Subject,
		HTML:        core.UnfetchedContent(),
		Text:        core.UnfetchedContent(),
		CC:          r.CC,
		BCC:         r.BCC,
		ReplyTo:     r.ReplyTo,
		CreatedAt:   r.CreatedAt,
		LastEvent:   r.LastEvent,
		ScheduledAt: r.ScheduledAt,
	}
}

// toFullRecord maps a retrieve-endpoint resource to a cache record. A null
// body from the API becomes a fetched empty string, meaning the provider
// confirmed there is none.
func (r emailResource) toFullRecord() *core.EmailRecord {
	rec := r.toMetadataRecord()
	rec.HTML = core.FetchedContent(derefOrEmpty(r.HTML))
	rec.Text = core.FetchedContent(derefOrEmpty(r.Text))
	return rec
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// buildSendRequest converts a core payload into the Resend request body.
func buildSendRequest(payload *core.SendPayload) *sendEmailRequest {
	req := &sendEmailRequest{
		From:    payload.From,
		To:      payload.To,
		Subject: payload.Subject,
		HTML:    payload.HTML,
		Text:    payload.Text,
		CC:      payload.CC,
		BCC:     payload.BCC,
		ReplyTo: payload.ReplyTo,
	}
	for _, att := range payload.Attachments {
		req.Attachments = append(req.Attachments, attachmentBody{
			Filename: att.Filename,
			Content:  att.Content,
		})
	}
	return req
}
