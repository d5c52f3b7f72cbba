package resendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mikey/resend-relay/internal/core"
	"go.uber.org/zap"
)

// Client is an implementation of the ProviderClient interface against the
// Resend HTTP API. Every call is a single attempt; retry policy is left to
// the operator.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Resend API client.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Send submits one message and returns the provider-issued id.
func (c *Client) Send(ctx context.Context, payload *core.SendPayload) (string, error) {
	body, err := json.Marshal(buildSendRequest(payload))
	if err != nil {
		return "", fmt.Errorf("failed to marshal send request: %w", err)
	}

	var resp sendEmailResponse
	if err := c.do(ctx, http.MethodPost, "/emails", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// ListDomains returns the sending domains registered with the provider.
func (c *Client) ListDomains(ctx context.Context) ([]core.Domain, error) {
	var resp listDomainsResponse
	if err := c.do(ctx, http.MethodGet, "/domains", nil, &resp); err != nil {
		return nil, err
	}

	domains := make([]core.Domain, 0, len(resp.Data))
	for _, d := range resp.Data {
		domains = append(domains, core.Domain{Name: d.Name, Status: d.Status})
	}
	return domains, nil
}

// ListEmails returns recent message metadata, newest first.
func (c *Client) ListEmails(ctx context.Context, limit int) ([]*core.EmailRecord, bool, error) {
	path := "/emails?limit=" + strconv.Itoa(limit)

	var resp listEmailsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, false, err
	}

	records := make([]*core.EmailRecord, 0, len(resp.Data))
	for _, item := range resp.Data {
		records = append(records, item.toMetadataRecord())
	}
	return records, resp.HasMore, nil
}

// GetEmail returns the full record for one message, body included.
func (c *Client) GetEmail(ctx context.Context, id string) (*core.EmailRecord, error) {
	var resp emailResource
	if err := c.do(ctx, http.MethodGet, "/emails/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.toFullRecord(), nil
}

// do performs one authenticated API call and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.asAPIError(resp.StatusCode, respBody, path)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}

// asAPIError turns a non-2xx response into an error carrying the provider's
// human-readable message when one is present.
func (c *Client) asAPIError(status int, body []byte, path string) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		c.logger.Debug("Resend API error",
			zap.Int("status", status),
			zap.String("name", apiErr.Name),
			zap.String("path", path))
		return fmt.Errorf("%s (status %d)", apiErr.Message, status)
	}
	return fmt.Errorf("unexpected status %d from %s", status, path)
}
