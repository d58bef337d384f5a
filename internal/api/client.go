// Package api is the typed client for the SkillBridge backend API.
//
// Every call forwards the credentials stored in the context with
// WithCredentials, so the API sees the same session cookie as the browser.
package api

import (
	"context"
	"net/http"
	"skillbridge/internal/ctxdata"
	"skillbridge/internal/utils"
	"strings"
	"time"
)

const (
	headerCookie      = "Cookie"
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	headerUserAgent   = "User-Agent"
	headerTraceID     = "X-Trace-Id"
	contentTypeJSON   = "application/json"
	clientUserAgent   = "skillbridge-web/1.0"
)

// Observer is told about every finished upstream call. route is the path
// template, not the concrete path, and status is 0 when no response arrived.
type Observer func(method, route string, status int, elapsed time.Duration)

type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	breaker    *utils.CircuitBreaker
	observe    Observer
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetry makes idempotent GET calls retry transport errors and gateway
// failures. maxRetries counts attempts, so 1 disables retrying.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		if maxRetries < 1 {
			maxRetries = 1
		}
		c.maxRetries = maxRetries
		c.retryDelay = baseDelay
	}
}

func WithCircuitBreaker(cb *utils.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

func WithObserver(observe Observer) Option {
	return func(c *Client) {
		c.observe = observe
	}
}

// NewClient builds a client for the API rooted at baseURL. No request timeout
// is set: calls are bounded by the caller's context only.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		maxRetries: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithCredentials attaches the browser's Cookie header to ctx.
func WithCredentials(ctx context.Context, cookieHeader string) context.Context {
	return ctxdata.WithCookieHeader(ctx, cookieHeader)
}

// CookieHeader renders cookies the way a browser would send them back.
func CookieHeader(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}
