// Package ghostfolio is a client of the Ghostfolio REST API.
//
// It records the synthetic activities of kourasync, as a kourasync.Target.
package ghostfolio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/etnz/kourasync"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultHost      = "https://ghostfol.io"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client is a Ghostfolio client.
//
// It authenticates with a bearer token, or exchanges an access key for one on
// the first request. A Client is safe for concurrent use.
type Client struct {
	host       string
	accessKey  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger

	mu       sync.Mutex
	token    string
	accounts map[string]string // account ids by name.
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithAccessKey sets the access key exchanged for a token when there is none.
func WithAccessKey(key string) ClientOption {
	return func(c *Client) { c.accessKey = key }
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

// NewClient creates a client of the Ghostfolio instance at host, using token
// as bearer token. The token can be empty if an access key is set.
func NewClient(host, token string, opts ...ClientOption) *Client {
	if host == "" {
		host = DefaultHost
	}
	c := &Client{
		host:       strings.TrimSuffix(host, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     zerolog.Nop(),
		accounts:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fail wraps err into a service error.
func fail(op string, status int, err error) error {
	return &kourasync.ExternalServiceError{Service: "ghostfolio", Op: op, StatusCode: status, Err: err}
}

// do performs a rate-limited request, checks the status against want (200 if
// empty) and decodes the JSON response into result, if not nil.
func (c *Client) do(ctx context.Context, op, method, path, token string, body, result any, want ...int) error {
	if len(want) == 0 {
		want = []int{http.StatusOK}
	}
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
	req, err := http.NewRequestWithContext(ctx, method, c.host+path, reader)
	if err != nil {
		return fail(op, 0, fmt.Errorf("cannot create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("ghostfolio request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(op, 0, err)
	}
	defer resp.Body.Close()

	if !slices.Contains(want, resp.StatusCode) {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fail(op, resp.StatusCode, errors.New(string(bytes.TrimSpace(msg))))
	}
	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fail(op, resp.StatusCode, fmt.Errorf("cannot decode response: %w", err))
	}
	return nil
}

// auth returns the bearer token, exchanging the access key for one if needed.
func (c *Client) auth(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	if c.accessKey == "" {
		return "", fail("auth", 0, errors.New("no bearer token and no access key"))
	}
	var resp struct {
		AuthToken string `json:"authToken"`
	}
	body := map[string]string{"accessToken": c.accessKey}
	if err := c.do(ctx, "auth", http.MethodPost, "/api/v1/auth/anonymous", "", body, &resp, http.StatusCreated); err != nil {
		return "", err
	}
	if resp.AuthToken == "" {
		return "", fail("auth", http.StatusCreated, errors.New("no token in response"))
	}
	c.logger.Info().Msg("bearer token fetched")
	c.token = resp.AuthToken
	return c.token, nil
}

// call performs an authenticated request.
func (c *Client) call(ctx context.Context, op, method, path string, body, result any, want ...int) error {
	token, err := c.auth(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, op, method, path, token, body, result, want...)
}

var _ kourasync.Target = (*Client)(nil)
