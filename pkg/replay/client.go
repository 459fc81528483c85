// Package replay is a Go client for the Interview Replay API. Besides typed
// HTTP calls it ships the two pieces of client-side machinery review UIs
// need: an optimistic bookmark collection and a job status poller.
package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Bookmark mirrors the API's bookmark resource.
type Bookmark struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	TimestampMs int64     `json:"timestamp_ms"`
	Label       string    `json:"label"`
	Category    *string   `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// Job mirrors the API's AI job resource.
type Job struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	JobType      string    `json:"job_type"`
	Status       string    `json:"status"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	ErrorMessage *string   `json:"error_message"`
	CausedBy     *string   `json:"caused_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Terminal reports whether the job will never change state again.
func (j Job) Terminal() bool {
	switch j.Status {
	case "completed", "failed", "cancelled":
		return true
	}
	return false
}

// Output mirrors the API's AI output resource. Content is the raw
// job-type-specific JSON payload.
type Output struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"session_id"`
	JobID      string          `json:"job_id"`
	OutputType string          `json:"output_type"`
	Content    json.RawMessage `json:"content"`
	CreatedAt  time.Time       `json:"created_at"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client is a typed HTTP client for one authenticated user.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token up front.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient creates a client for the given API root, e.g.
// "https://api.example.com/api/v1".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token, e.g. after login.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// listEnvelope matches the server's {data: [...]} wrapper for slices.
type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return err
	}
	c.token = out.Token
	return nil
}

// ListBookmarks fetches a session's bookmarks in canonical order.
func (c *Client) ListBookmarks(ctx context.Context, sessionID string) ([]Bookmark, error) {
	var out listEnvelope[Bookmark]
	err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/bookmarks", nil, &out)
	return out.Data, err
}

// CreateBookmark adds a bookmark and returns the server row.
func (c *Client) CreateBookmark(ctx context.Context, sessionID string, timestampMs int64, label string, category *string) (*Bookmark, error) {
	var out Bookmark
	err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/bookmarks", map[string]interface{}{
		"timestamp_ms": timestampMs,
		"label":        label,
		"category":     category,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBookmark patches a bookmark's label and/or category.
func (c *Client) UpdateBookmark(ctx context.Context, bookmarkID string, label, category *string) (*Bookmark, error) {
	var out Bookmark
	patch := map[string]interface{}{}
	if label != nil {
		patch["label"] = *label
	}
	if category != nil {
		patch["category"] = *category
	}
	err := c.do(ctx, http.MethodPatch, "/bookmarks/"+bookmarkID, patch, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBookmark removes a bookmark and its notes.
func (c *Client) DeleteBookmark(ctx context.Context, bookmarkID string) error {
	return c.do(ctx, http.MethodDelete, "/bookmarks/"+bookmarkID, nil, nil)
}

// CreateJob enqueues an AI job for a session.
func (c *Client) CreateJob(ctx context.Context, sessionID, jobType string) (*Job, error) {
	var out Job
	err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/ai-jobs", map[string]string{
		"job_type": jobType,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetJob fetches one job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*Job, error) {
	var out Job
	if err := c.do(ctx, http.MethodGet, "/ai/jobs/"+jobID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelJob cancels a queued or processing job.
func (c *Client) CancelJob(ctx context.Context, jobID string) (*Job, error) {
	var out Job
	if err := c.do(ctx, http.MethodPost, "/ai/jobs/"+jobID+"/cancel", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetryJob spawns a replacement job for a failed or cancelled one and
// returns the new job.
func (c *Client) RetryJob(ctx context.Context, jobID string) (*Job, error) {
	var out Job
	if err := c.do(ctx, http.MethodPost, "/ai/jobs/"+jobID+"/retry", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetJobOutput fetches the output of a completed job.
func (c *Client) GetJobOutput(ctx context.Context, jobID string) (*Output, error) {
	var out Output
	if err := c.do(ctx, http.MethodGet, "/ai/jobs/"+jobID+"/output", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
