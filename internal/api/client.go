package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

const maxBodyBytes = 1 << 20

// Client talks JSON to the emotion poll backend. The session cookie set by
// /login is kept in the client's cookie jar and sent with every later call.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying http.Client. A jar is added when it
// has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}
	c := &Client{
		base:    base,
		timeout: 10 * time.Second,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string { return c.base.String() }

// Cookies returns the session cookies held for the backend.
func (c *Client) Cookies() []*http.Cookie {
	return c.http.Jar.Cookies(c.base)
}

// SetCookies restores previously saved session cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	c.http.Jar.SetCookies(c.base, cookies)
}

// CheckAuth reports whether the current session is logged in.
func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	var out authStatus
	if err := c.do(ctx, "check-auth", http.MethodGet, "/check-auth", nil, &out); err != nil {
		return false, err
	}
	return out.LoggedIn, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, creds Credentials) (Message, error) {
	var out Message
	err := c.do(ctx, "signup", http.MethodPost, "/signup", creds, &out)
	return out, err
}

// Login opens a session.
func (c *Client) Login(ctx context.Context, creds Credentials) (Message, error) {
	var out Message
	err := c.do(ctx, "login", http.MethodPost, "/login", creds, &out)
	return out, err
}

// Logout closes the session.
func (c *Client) Logout(ctx context.Context) (Message, error) {
	var out Message
	err := c.do(ctx, "logout", http.MethodPost, "/logout", nil, &out)
	return out, err
}

// Vote records one vote for the given emotions.
func (c *Client) Vote(ctx context.Context, emotions []string) (VoteResult, error) {
	if emotions == nil {
		emotions = []string{}
	}
	var out VoteResult
	err := c.do(ctx, "vote", http.MethodPost, "/vote", VoteRequest{Emotions: emotions}, &out)
	return out, err
}

// Stats fetches the aggregate vote counts.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	if err := c.do(ctx, "stats", http.MethodGet, "/stats", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Stats{}
	}
	return out, nil
}

// do performs one round trip. Any body that decodes into out is returned as
// the answer, whatever the status code, since refusals carry their reason in
// the body.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	target := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request failed", "op", op, "request_id", reqID, "err", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logger.Error("read response", "op", op, "request_id", reqID, "status", resp.StatusCode, "err", err)
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Error("decode response", "op", op, "request_id", reqID, "status", resp.StatusCode, "err", err)
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	c.logger.Log(ctx, level, "request done",
		"op", op,
		"request_id", reqID,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)
	return nil
}
