package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"toastd/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client calls the platform command API with bearer authentication.
// Params: base URL, session token, and HTTP client.
// Returns: invite/join decision commands and unread count reads.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures client behavior.
type Option func(*Client)

// WithTimeout overrides the request timeout.
// Params: timeout duration.
// Returns: client option.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
// Params: preconfigured client.
// Returns: client option.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a command API client.
// Params: API base URL, bearer token, and options.
// Returns: initialized client.
func NewClient(baseURL, token string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Do executes one bound decision command against the API.
// Params: context, command kind, program id, and request id.
// Returns: transport or HTTP status error.
func (c *Client) Do(ctx context.Context, kind domain.CommandKind, programID, requestID string) error {
	path, err := commandPath(kind, programID, requestID)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", kind, err)
	}
	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("send %s request: %w", kind, err)
	}
	defer drainAndClose(response.Body)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("command %s: unexpected status %d", kind, response.StatusCode)
	}
	return nil
}

// UnreadCount reads the server-side unread notification count.
// Params: context.
// Returns: count value or transport/decode error.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/notifications/unread-count", nil)
	if err != nil {
		return 0, fmt.Errorf("build unread-count request: %w", err)
	}
	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, fmt.Errorf("send unread-count request: %w", err)
	}
	defer drainAndClose(response.Body)

	if response.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unread-count: unexpected status %d", response.StatusCode)
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode unread-count response: %w", err)
	}
	return payload.Count, nil
}

// commandPath maps a command kind to its REST endpoint.
// Params: command kind and resolved identifiers.
// Returns: request path or error for unknown kinds/blank identifiers.
func commandPath(kind domain.CommandKind, programID, requestID string) (string, error) {
	if strings.TrimSpace(programID) == "" || strings.TrimSpace(requestID) == "" {
		return "", fmt.Errorf("command %s: program and request identifiers are required", kind)
	}
	switch kind {
	case domain.CommandAcceptInvite:
		return fmt.Sprintf("/programs/%s/invitations/%s/accept", programID, requestID), nil
	case domain.CommandRejectInvite:
		return fmt.Sprintf("/programs/%s/invitations/%s/reject", programID, requestID), nil
	case domain.CommandAcceptJoin:
		return fmt.Sprintf("/programs/%s/join-requests/%s/accept", programID, requestID), nil
	case domain.CommandRejectJoin:
		return fmt.Sprintf("/programs/%s/join-requests/%s/reject", programID, requestID), nil
	default:
		return "", fmt.Errorf("unsupported command kind %q", kind)
	}
}

// authorize attaches the bearer credential.
// Params: outbound request.
// Returns: none.
func (c *Client) authorize(request *http.Request) {
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
	request.Header.Set("Accept", "application/json")
}

// drainAndClose discards the remaining body so connections can be reused.
// Params: response body.
// Returns: none.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}
