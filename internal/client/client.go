// Package client is a typed client for the washdesk admin REST API.
//
// Every call issues exactly one request. Failures are shown to the operator
// through a toast.Toaster and returned as *APIError with the same message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/washdesk/internal/model"
	"github.com/dukerupert/washdesk/internal/toast"
)

// APIError is returned by every failed call. Message is the text shown to
// the operator; Status is 0 when no response was received.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	toaster    toast.Toaster

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithToaster(t toast.Toaster) Option {
	return func(cl *Client) {
		cl.toaster = t
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		toaster:    toast.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// Types lists the known notification categories.
func (c *Client) Types(ctx context.Context) ([]string, error) {
	var types []string
	if err := c.call(ctx, http.MethodGet, "/admin/notifications/types", nil, nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// List returns notifications, newest first. An empty typ means all categories.
func (c *Client) List(ctx context.Context, typ string) ([]model.Notification, error) {
	var q url.Values
	if typ != "" {
		q = url.Values{"type": {typ}}
	}
	var list []model.Notification
	if err := c.call(ctx, http.MethodGet, "/admin/notifications", q, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkRead marks one notification read and returns it.
func (c *Client) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	if err := c.call(ctx, http.MethodPatch, "/admin/notifications/"+url.PathEscape(id)+"/read", nil, nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// UnreadCount returns the number of unread notifications.
func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.call(ctx, http.MethodGet, "/admin/notifications/unread", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// MarkAllRead marks every notification read and returns how many changed.
func (c *Client) MarkAllRead(ctx context.Context) (int64, error) {
	var out struct {
		Updated int64 `json:"updated"`
	}
	if err := c.call(ctx, http.MethodPatch, "/admin/notifications/read", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

// Dashboard returns the dashboard as a loosely typed bag, ready for export.
func (c *Client) Dashboard(ctx context.Context) (map[string]any, error) {
	var bag map[string]any
	if err := c.call(ctx, http.MethodGet, "/admin/dashboard", nil, nil, &bag); err != nil {
		return nil, err
	}
	return bag, nil
}

// Download is a file returned by the server.
type Download struct {
	Filename string
	Data     []byte
}

// ExportDashboard asks the server to render the dashboard PDF for rangeLabel.
func (c *Client) ExportDashboard(ctx context.Context, rangeLabel string) (*Download, error) {
	q := url.Values{}
	if rangeLabel != "" {
		q.Set("range", rangeLabel)
	}
	resp, err := c.send(ctx, http.MethodGet, "/admin/dashboard/export", q, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(resp.StatusCode, "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(resp.StatusCode, messageFrom(data), nil)
	}

	name := "dashboard.pdf"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return &Download{Filename: name, Data: data}, nil
}

// Login exchanges the admin password for a bearer token and stores it on
// the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	body := map[string]string{"username": username, "password": password}
	var out struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := c.call(ctx, http.MethodPost, "/admin/login", nil, body, &out); err != nil {
		return "", time.Time{}, err
	}
	c.SetToken(out.Token)
	return out.Token, out.ExpiresAt, nil
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, body any) (*http.Response, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, c.fail(0, "", fmt.Errorf("marshal request: %w", err))
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, c.fail(0, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(0, "", err)
	}
	return resp, nil
}

// call performs one JSON request and decodes the envelope's data into out.
func (c *Client) call(ctx context.Context, method, path string, q url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, q, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	if !ok || (decodeErr == nil && env.Success != nil && !*env.Success) {
		return c.fail(resp.StatusCode, firstNonEmpty(env.Message, env.Error), nil)
	}
	if decodeErr != nil {
		return c.fail(resp.StatusCode, "", fmt.Errorf("decode response: %w", decodeErr))
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return c.fail(resp.StatusCode, "", fmt.Errorf("decode response data: %w", err))
		}
	}
	return nil
}

// fail builds the APIError, preferring the server's message, then the
// transport error, then the HTTP status text, and toasts it.
func (c *Client) fail(status int, serverMsg string, err error) *APIError {
	msg := serverMsg
	if msg == "" && err != nil {
		msg = err.Error()
	}
	if msg == "" && status != 0 {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = "Request failed"
	}

	apiErr := &APIError{Status: status, Message: msg, Err: err}
	c.toaster.Show(toast.LevelError, msg)
	return apiErr
}

func messageFrom(body []byte) string {
	var env envelope
	if json.Unmarshal(body, &env) != nil {
		return ""
	}
	return firstNonEmpty(env.Message, env.Error)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
