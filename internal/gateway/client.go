// Package gateway talks to the upstream commerce REST API.
//
// Responses are mapped into model types in normalize.go before they leave this
// package; nothing outside it inspects upstream JSON.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ikkim/shopfront/pkg/logger"
)

var (
	ErrUnauthorized  = errors.New("upstream rejected credentials")
	ErrNotFound      = errors.New("upstream resource not found")
	ErrUpstream      = errors.New("upstream request failed")
	ErrInvalidConfig = errors.New("invalid gateway config")
)

// Config holds the upstream endpoint settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements every gateway interface against one upstream base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var (
	_ CartGateway    = (*Client)(nil)
	_ OrderGateway   = (*Client)(nil)
	_ AddressGateway = (*Client)(nil)
	_ CatalogGateway = (*Client)(nil)
)

// NewClient creates a new upstream client. An explicit http.Client may be passed for tests.
func NewClient(cfg Config, httpClient ...*http.Client) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("%w: base URL is empty", ErrInvalidConfig)
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	hc := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout <= 0 {
		hc.Timeout = 30 * time.Second
	}
	if len(httpClient) > 0 && httpClient[0] != nil {
		hc = httpClient[0]
	}

	return &Client{baseURL: base, httpClient: hc}, nil
}

type tokenKey struct{}

// WithToken attaches the caller's bearer token; it is forwarded upstream.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// errorBody covers the two error envelopes the upstream uses.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do performs an HTTP request against the upstream API and returns the raw body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		reqBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(reqBody)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Upstream request failed", map[string]interface{}{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrUpstream, err)
	}

	logger.Debug("Upstream request completed", map[string]interface{}{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	msg := strings.TrimSpace(string(respBody))
	var eb errorBody
	if json.Unmarshal(respBody, &eb) == nil {
		if eb.Message != "" {
			msg = eb.Message
		} else if eb.Error != "" {
			msg = eb.Error
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, msg)
	}
}

func (c *Client) decode(body []byte, target interface{}, keys ...string) error {
	if err := json.Unmarshal(unwrap(body, keys...), target); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrUpstream, err)
	}
	return nil
}
