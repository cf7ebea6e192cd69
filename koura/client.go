// Package koura is a client of the Koura Wealth client portal API.
//
// It provides the contributions, the allocation, the fund prices and the
// balance of Koura KiwiSaver accounts, as a kourasync.Source.
package koura

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/etnz/kourasync"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://portal.kourawealth.co.nz"
	DefaultOrigin    = "https://my.kourawealth.co.nz"
	DefaultUserTag   = "a8a4a355-8722-4a24-b24c-115b0470cdef"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client is a Koura Wealth portal client.
//
// It signs in on the first request and reuses the token for the lifetime of
// the client. A Client is safe for concurrent use.
type Client struct {
	baseURL    string
	userTag    string
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger

	mu    sync.Mutex
	token string
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithUserTag sets the X-User-Tag header the portal requires.
func WithUserTag(tag string) ClientOption {
	return func(c *Client) {
		if tag != "" {
			c.userTag = tag
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit sets the rate limit, in requests per second.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a client signing in with username and password.
func NewClient(username, password string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userTag:    DefaultUserTag,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fail wraps err into a service error.
func fail(op string, status int, err error) error {
	return &kourasync.ExternalServiceError{Service: "koura", Op: op, StatusCode: status, Err: err}
}

// do performs a rate-limited request and decodes the JSON response into result.
//
// Numbers decoded into untyped values are json.Number.
func (c *Client) do(ctx context.Context, op, method, path, token string, body, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fail(op, 0, fmt.Errorf("rate limit wait: %w", err))
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fail(op, 0, fmt.Errorf("cannot encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fail(op, 0, fmt.Errorf("cannot create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", DefaultOrigin)
	req.Header.Set("X-User-Tag", c.userTag)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("koura request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(op, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fail(op, resp.StatusCode, errors.New(string(bytes.TrimSpace(msg))))
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return fail(op, resp.StatusCode, fmt.Errorf("cannot decode response: %w", err))
	}
	return nil
}

// signin returns the session token, signing in if needed.
func (c *Client) signin(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	if c.username == "" || c.password == "" {
		return "", fail("signin", 0, errors.New("missing username or password"))
	}

	credentials := struct {
		Username string `json:"Username"`
		Password string `json:"Password"`
	}{c.username, c.password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, "signin", http.MethodPost, "/api/clients/auth/signin", "", credentials, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fail("signin", http.StatusOK, errors.New("no token in response"))
	}
	c.logger.Info().Msg("signed in to Koura Wealth")
	c.token = resp.Token
	return c.token, nil
}

// get performs an authenticated GET request.
func (c *Client) get(ctx context.Context, op, path string, result any) error {
	token, err := c.signin(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, op, http.MethodGet, path, token, nil, result)
}

var _ kourasync.Source = (*Client)(nil)
