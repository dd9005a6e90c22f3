// Package backend is the HTTP client for the typeline API.
package backend

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

	"github.com/verte-zerg/typeline/internal/model"
)

const defaultTimeout = 15 * time.Second

// ErrNoToken is returned by authenticated calls when no session token is set.
var ErrNoToken = errors.New("session token is not configured")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to the typeline API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer session token used by history calls.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New returns a client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// HasToken reports whether authenticated calls can be made.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// Articles fetches news articles for category.
func (c *Client) Articles(ctx context.Context, category string) ([]model.Article, error) {
	var out []model.Article
	if err := c.getJSON(ctx, "/api/news", categoryQuery(category), false, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Editorial fetches editorial pieces for category.
func (c *Client) Editorial(ctx context.Context, category string) ([]model.Article, error) {
	var out []model.Article
	if err := c.getJSON(ctx, "/api/editorial", categoryQuery(category), false, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Yesterday fetches the digest of the previous day for category.
func (c *Client) Yesterday(ctx context.Context, category string) (model.Digest, error) {
	var out model.Digest
	if err := c.getJSON(ctx, "/api/yesterday", categoryQuery(category), false, &out); err != nil {
		return model.Digest{}, err
	}
	return out, nil
}

// UploadHistory posts one history item. The item ID is sent as the
// idempotency key so a retried upload is stored once.
func (c *Client) UploadHistory(ctx context.Context, item model.HistoryItem) error {
	if c.token == "" {
		return ErrNoToken
	}
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode history item: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/history", nil, bytes.NewReader(body), true)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if item.ID != "" {
		req.Header.Set("Idempotency-Key", item.ID)
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return nil
}

// ListHistory returns the history stored for the authenticated user.
func (c *Client) ListHistory(ctx context.Context) ([]model.HistoryItem, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	var out []model.HistoryItem
	if err := c.getJSON(ctx, "/api/history", nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, auth bool, target any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, http.NoBody, auth)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, auth bool) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, &StatusError{
			Method: req.Method,
			Path:   req.URL.Path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	return resp, nil
}

func categoryQuery(category string) url.Values {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil
	}
	return url.Values{"category": []string{category}}
}
