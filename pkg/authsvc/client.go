// Package authsvc is a small client for the sibling auth service. The
// marketplace itself never calls it at request time; the seed tool uses it
// to provision demo accounts.
package authsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ClientOptions configures the auth service client
type ClientOptions struct {
	// BaseURL is the base URL of the auth service (e.g. "http://localhost:8081")
	BaseURL string
	// APIKey is the shared API key
	APIKey string
	// RetryMax is the maximum number of retries (default: 3)
	RetryMax int
	// Timeout is the HTTP client timeout (default: 10 seconds)
	Timeout time.Duration
}

// Client is the auth service API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *retryablehttp.Client
}

// NewClient creates a new auth service client with default settings
func NewClient(baseURL, apiKey string) *Client {
	return NewClientWithOptions(ClientOptions{BaseURL: baseURL, APIKey: apiKey})
}

// NewClientWithOptions creates a new auth service client with custom options
func NewClientWithOptions(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryMax == 0 {
		opts.RetryMax = 3
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.HTTPClient.Timeout = opts.Timeout
	retryClient.Logger = nil // Disable logging by default

	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: retryClient,
	}
}

// registerUserRequest is the auth service's user registration payload.
type registerUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUser creates a user account. An already-registered email is not an
// error so seeding is idempotent.
func (c *Client) RegisterUser(ctx context.Context, email, password string) error {
	body, err := json.Marshal(registerUserRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("marshal register request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/users", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create register request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusConflict {
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("auth service returned status %d registering %s", resp.StatusCode, email)
	}

	return nil
}

// DeleteAllUsers removes every user account. Only exposed by the auth
// service in test deployments.
func (c *Client) DeleteAllUsers(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/v1/users", nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("auth service returned status %d deleting users", resp.StatusCode)
	}

	return nil
}

// drainAndClose discards the remaining body so the connection can be reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
