package resendapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mikey/resend-relay/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_Send(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg-123"}`))
	}))
	defer server.Close()

	client := NewClient("re_test_key", server.URL, 0, zap.NewNop())

	id, err := client.Send(context.Background(), &core.SendPayload{
		From:    "Relay <noreply@example.com>",
		To:      []string{"to@example.com"},
		Subject: "Hello",
		Text:    "plain body",
	})

	require.NoError(t, err)
	assert.Equal(t, "msg-123", id)
	assert.Equal(t, "Bearer re_test_key", gotAuth)
	assert.Equal(t, "application/json", gotContentType)

	assert.Equal(t, "Relay <noreply@example.com>", gotBody["from"])
	assert.Equal(t, "plain body", gotBody["text"])
	// A text payload must not carry an html key at all.
	_, hasHTML := gotBody["html"]
	assert.False(t, hasHTML)
}

func TestClient_SendAPIErrorMessageSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"statusCode":403,"name":"validation_error","message":"The example.com domain is not verified."}`))
	}))
	defer server.Close()

	client := NewClient("re_test_key", server.URL, 0, zap.NewNop())

	_, err := client.Send(context.Background(), &core.SendPayload{
		From:    "noreply@example.com",
		To:      []string{"to@example.com"},
		Subject: "Hello",
		HTML:    "<p>hi</p>",
	})

	require.Error(t, err)
	assert.ErrorContains(t, err, "The example.com domain is not verified.")
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	client := NewClient("re_test_key", server.URL, 0, zap.NewNop())

	_, err := client.ListDomains(context.Background())

	require.Error(t, err)
	assert.ErrorContains(t, err, "unexpected status 502")
}

func TestClient_ListDomains(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/domains", r.URL.Path)
		w.Write([]byte(`{"data":[
			{"name":"example.com","status":"verified"},
			{"name":"pending.io","status":"pending"}
		]}`))
	}))
	defer server.Close()

	client := NewClient("re_test_key", server.URL, 0, zap.NewNop())

	domains, err := client.ListDomains(context.Background())

	require.NoError(t, err)
	require.Len(t, domains, 2)
	assert.Equal(t, core.Domain{Name: "example.com", Status: "verified"}, domains[0])
	assert.Equal(t, core.Domain{Name: "pending.io", Status: "pending"}, domains[1])
}

func TestClient_ListEmailsReturnsUnfetchedBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "25", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":[{
			"id":"msg-1",
			"to":["to@example.com"],
			"from":"noreply@example.com",
			"subject":"Hello",
			"created_at":"2025-06-01T10:00:00+00:00",
			"last_event":"delivered"
		}],"has_more":true}`))
	}))
	defer server.Close()

	client := NewClient("re_test_key", server.URL, 0, zap.NewNop())

	records, hasMore, err := client.ListEmails(context.Background(), 25)

	require.NoError(t, err)
	assert.True(t, hasMore)
	require.Len(t, records, 1)
	assert.Equal(t, "msg-1", records[0].ID)
	assert.Equal(t, "Hello", records[0].Subject)
	assert.False(t, records[0].HTML.Fetched)
	assert.False(t, records[0].Text.Fetched)
	assert.False(t, records[0].HasFullDetails())
}

func TestClient_GetEmailNullBodyBecomesFetchedEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails/msg-1", r.URL.Path)
		w.Write([]byte(`{
			"id":"msg-1",
			"to":["to@example.com"],
			"from":"noreply@example.com",
			"subject":"Hello",
			"html":"<p>body</p>",
			"text":null,
			"created_at":"2025-06-01T10:00:00+00:00",
			"last_event":"delivered"
		}`))
	}))
	defer server.Close()

	client := NewClient("re_test_key", server.URL, 0, zap.NewNop())

	record, err := client.GetEmail(context.Background(), "msg-1")

	require.NoError(t, err)
	assert.True(t, record.HTML.Fetched)
	assert.Equal(t, "<p>body</p>", record.HTML.Value)
	// A JSON null body means the provider confirmed there is none.
	assert.True(t, record.Text.Fetched)
	assert.Empty(t, record.Text.Value)
	assert.True(t, record.HasFullDetails())
}
