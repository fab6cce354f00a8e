// Package apiclient is the authenticated JSON client for the HemoCore REST API.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/metrics"
	"github.com/hemocore/console/session"
)

// TokenSource supplies the fallback bearer token when the request context
// carries none. Clients shared between callers should be built without one.
type TokenSource interface {
	Token() string
}

// Client performs JSON round trips against one API origin. It never
// retries and imposes no timeout beyond the caller's context.
type Client struct {
	http   *resty.Client
	tokens TokenSource
}

type callOptions struct {
	requiresAuth bool
}

// Option adjusts a single call
type Option func(*callOptions)

// WithoutAuth sends the request without an Authorization header
func WithoutAuth() Option {
	return func(o *callOptions) { o.requiresAuth = false }
}

// New creates a client for baseURL; tokens may be nil
func New(baseURL string, tokens TokenSource) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: rc, tokens: tokens}
}

// BaseURL returns the API origin the client talks to
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// Get decodes the JSON body of GET endpoint into out
func (c *Client) Get(ctx context.Context, endpoint string, out any, opts ...Option) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out, opts)
}

// Post sends body as JSON and decodes the reply into out when it is non-nil
func (c *Client) Post(ctx context.Context, endpoint string, body, out any, opts ...Option) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out, opts)
}

// Put sends body as JSON and decodes the reply into out when it is non-nil
func (c *Client) Put(ctx context.Context, endpoint string, body, out any, opts ...Option) error {
	return c.do(ctx, http.MethodPut, endpoint, body, out, opts)
}

// Delete removes the resource at endpoint; out may be nil
func (c *Client) Delete(ctx context.Context, endpoint string, out any, opts ...Option) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, out, opts)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any, opts []Option) error {
	o := callOptions{requiresAuth: true}
	for _, opt := range opts {
		opt(&o)
	}

	req := c.http.R().SetContext(ctx)
	if o.requiresAuth {
		if token := c.tokenFor(ctx); token != "" {
			req.SetAuthToken(token)
		}
	}
	if body != nil {
		req.SetBody(body)
	}

	resource := resourceOf(endpoint)
	start := time.Now()
	resp, err := req.Execute(method, endpoint)
	elapsed := time.Since(start)

	if err != nil {
		metrics.ObserveUpstream(method, resource, 0, elapsed)
		logging.Warn("HemoCore request failed", "method", method, "endpoint", endpoint, "error", err)
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}

	status := resp.StatusCode()
	metrics.ObserveUpstream(method, resource, status, elapsed)
	logging.Debug("HemoCore request", "method", method, "endpoint", endpoint,
		"status", status, "duration_ms", elapsed.Milliseconds())

	payload := toUTF8(resp.Body())

	if status < 200 || status > 299 {
		return &APIError{
			StatusCode: status,
			Method:     method,
			Endpoint:   endpoint,
			Body:       string(payload),
		}
	}

	if status == http.StatusNoContent || out == nil || len(strings.TrimSpace(string(payload))) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

// tokenFor prefers the caller token in ctx over the client's TokenSource
func (c *Client) tokenFor(ctx context.Context) string {
	if token, ok := session.TokenFrom(ctx); ok {
		return token
	}
	if c.tokens != nil {
		return c.tokens.Token()
	}
	return ""
}

// toUTF8 decodes ISO-8859-1 bodies; valid UTF-8 is returned untouched
func toUTF8(body []byte) []byte {
	if utf8.Valid(body) {
		return body
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}

// resourceOf returns the first path segment, used as a low-cardinality label
func resourceOf(endpoint string) string {
	trimmed := strings.TrimPrefix(endpoint, "/")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "root"
	}
	return trimmed
}
