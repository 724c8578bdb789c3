// Package apiclient talks to the moderation backend's REST API.
//
// Every call goes through Client.Do, which attaches the bearer token, reads
// the reply and hands it to Normalize. A 401 outside the login endpoint
// revokes the caller's credentials through its TokenSource.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// maxBodySize caps how much of a reply is read
const maxBodySize = 8 << 20

// TokenSource supplies the bearer token and forgets it when the backend says it is no longer valid.
type TokenSource interface {
	Token(ctx context.Context) string
	Revoke(ctx context.Context) error
}

// StaticToken is an in-memory TokenSource for command-line use
type StaticToken struct {
	mu    sync.RWMutex
	token string
}

func NewStaticToken(token string) *StaticToken {
	return &StaticToken{token: token}
}

func (s *StaticToken) Token(context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *StaticToken) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *StaticToken) Revoke(context.Context) error {
	s.Set("")
	return nil
}

// Client calls the backend. It is safe for concurrent use; WithTokens returns
// a per-caller copy sharing the underlying http.Client.
type Client struct {
	endpoints Endpoints
	http      *http.Client
	userAgent string
	tokens    TokenSource
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a Client for the API rooted at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		endpoints: NewEndpoints(baseURL),
		http:      &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy of c that authenticates with ts
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// Endpoints exposes the URL builder bound to this client's base
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Do performs one request and returns the normalized reply. It never returns nil.
func (c *Client) Do(ctx context.Context, method, url string, body any) *Response {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return networkFailure(fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return networkFailure(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	slog.DebugContext(ctx, "api request", "method", method, "url", url)
	resp, err := c.http.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "api request failed", "method", method, "url", url, "err", err)
		return networkFailure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return networkFailure(fmt.Errorf("read response: %w", err))
	}
	slog.DebugContext(ctx, "api response", "status", resp.StatusCode, "url", url, "body", preview(raw, 100))

	out := Normalize(resp.StatusCode, raw, url)
	if out.Kind == KindAuthRequired && c.tokens != nil {
		if err := c.tokens.Revoke(ctx); err != nil {
			log.Printf("[API]: failed to revoke credentials after 401 from %s: %v", url, err)
		}
	}
	return out
}

func (c *Client) Get(ctx context.Context, url string) *Response {
	return c.Do(ctx, http.MethodGet, url, nil)
}

func (c *Client) Post(ctx context.Context, url string, body any) *Response {
	if body == nil {
		body = struct{}{}
	}
	return c.Do(ctx, http.MethodPost, url, body)
}

func (c *Client) Put(ctx context.Context, url string, body any) *Response {
	return c.Do(ctx, http.MethodPut, url, body)
}

func (c *Client) Delete(ctx context.Context, url string) *Response {
	return c.Do(ctx, http.MethodDelete, url, nil)
}

func preview(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
