// Package client drives a running dropnote daemon through its control API,
// so the mcp and edit commands share the daemon's notes instead of opening
// the data directory a second time.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/starford/dropnote/internal/apperr"
	"github.com/starford/dropnote/internal/session"
)

// StatusError is a non-2xx reply from the daemon.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: %s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("client: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Message)
}

// Unwrap maps 503 replies to apperr.ErrUnavailable.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusServiceUnavailable {
		return apperr.ErrUnavailable
	}
	return nil
}

// Client is a control API client. It implements the same note operations
// as *session.Session.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New returns a client for the daemon at baseURL (e.g.
// "http://127.0.0.1:7717"). An empty token sends no Authorization header.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		base:  baseURL,
		token: token,
		http:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks that the daemon answers and accepts our token.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Snapshot(ctx)
	return err
}

type contentBody struct {
	Content string `json:"content"`
}

type listBody struct {
	Notes []session.Summary `json:"notes"`
}

// Snapshot returns the current note and position.
func (c *Client) Snapshot(ctx context.Context) (session.View, error) {
	return c.view(ctx, http.MethodGet, "/state", nil)
}

// Notes returns the ordered note list.
func (c *Client) Notes(ctx context.Context) ([]session.Summary, error) {
	var out listBody
	if err := c.do(ctx, http.MethodGet, "/notes", nil, &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

// SetContent replaces the current note's text.
func (c *Client) SetContent(ctx context.Context, text string) (session.View, error) {
	return c.view(ctx, http.MethodPut, "/notes/current", contentBody{Content: text})
}

// AppendContent appends text to the current note on a new line.
func (c *Client) AppendContent(ctx context.Context, text string) (session.View, error) {
	return c.view(ctx, http.MethodPost, "/notes/current/append", contentBody{Content: text})
}

// Previous selects the previous note.
func (c *Client) Previous(ctx context.Context) (session.View, error) {
	return c.view(ctx, http.MethodPost, "/notes/previous", nil)
}

// Next selects the next note.
func (c *Client) Next(ctx context.Context) (session.View, error) {
	return c.view(ctx, http.MethodPost, "/notes/next", nil)
}

// Create appends an empty note and selects it.
func (c *Client) Create(ctx context.Context) (session.View, error) {
	return c.view(ctx, http.MethodPost, "/notes", nil)
}

// CreateWithContent appends a note seeded with text and selects it.
func (c *Client) CreateWithContent(ctx context.Context, text string) (session.View, error) {
	if text == "" {
		return c.Create(ctx)
	}
	return c.view(ctx, http.MethodPost, "/notes", contentBody{Content: text})
}

// Delete removes the current note.
func (c *Client) Delete(ctx context.Context) (session.View, error) {
	return c.view(ctx, http.MethodDelete, "/notes/current", nil)
}

// Flush asks the daemon to save a pending edit now.
func (c *Client) Flush(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/notes/flush", nil, nil)
}

func (c *Client) view(ctx context.Context, method, path string, in any) (session.View, error) {
	var v session.View
	if err := c.do(ctx, method, path, in, &v); err != nil {
		return session.View{}, err
	}
	return v, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}
