// Package budgetapi provides a client for the City Budget Planner backend.
package budgetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/cbudget/internal/model"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:5000"
	// DefaultTimeout bounds a single generate request.
	DefaultTimeout = 30 * time.Second

	generatePath = "/api/budget/generate"
	maxBodySize  = 1 << 20 // 1 MB
	userAgent    = "cbudget/1.0"
)

var (
	// ErrNoToken indicates the request was refused locally for lack of a token.
	ErrNoToken = errors.New("budgetapi: no session token")
	// ErrUnauthorized indicates the backend rejected the token.
	ErrUnauthorized = errors.New("budgetapi: unauthorized (session token expired or invalid)")
	// ErrRateLimited indicates the backend throttled the request.
	ErrRateLimited = fmt.Errorf("budgetapi: %w", model.ErrRateLimited)
)

// Client posts plan requests to the backend.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request deadline. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		timeout: DefaultTimeout,
		http:    &http.Client{},
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-request deadline.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Generate sends one plan request and returns the raw response body.
// It never retries. Errors are classified as auth or network failures;
// the body itself is left for the validator.
func (c *Client) Generate(ctx context.Context, req GenerateRequest, token string) ([]byte, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, model.Fail(model.KindAuth, ErrNoToken)
	}
	if req.SelectedCategories == nil {
		req.SelectedCategories = []string{}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, model.Fail(model.KindNetwork, fmt.Errorf("budgetapi: encoding request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(payload))
	if err != nil {
		return nil, model.Fail(model.KindNetwork, fmt.Errorf("budgetapi: creating request: %w", err))
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", model.ErrTimeout, c.timeout, err)
		}
		c.log.Warn().Err(err).Str("request_id", requestID).Msg("generate request failed")
		return nil, model.Fail(model.KindNetwork, fmt.Errorf("budgetapi: request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("generate response")

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, model.Fail(model.KindAuth, ErrUnauthorized)
	case http.StatusTooManyRequests:
		return nil, model.Fail(model.KindNetwork, ErrRateLimited)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, model.Fail(model.KindNetwork, fmt.Errorf("budgetapi: unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", model.ErrTimeout, err)
		}
		return nil, model.Fail(model.KindNetwork, fmt.Errorf("budgetapi: reading response: %w", err))
	}
	return body, nil
}
