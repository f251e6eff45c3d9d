// Package client talks to the listing API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/user/jobboard/internal/db"
	"github.com/user/jobboard/internal/query"
)

var (
	// ErrNetwork covers transport failures, timeouts and bodies that are not
	// the expected JSON.
	ErrNetwork = errors.New("network failure")

	ErrNotFound = errors.New("not found")
)

// ServerError is a non-2xx response other than 404, typically a store failure.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d", e.Status)
	}
	return fmt.Sprintf("server error: %d: %s", e.Status, e.Message)
}

const DefaultTimeout = 10 * time.Second

type Client struct {
	BaseURL string
	http    *http.Client
}

// New returns a client for baseURL. A non-positive timeout uses DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func filterValues(f query.Filter) url.Values {
	v := url.Values{}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

func limitValues(limit int) url.Values {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

func (c *Client) Jobs(ctx context.Context, f query.Filter) ([]db.Job, error) {
	var jobs []db.Job
	if err := c.get(ctx, "/api/jobs", filterValues(f), &jobs); err != nil {
		return nil, err
	}
	return nonNil(jobs), nil
}

func (c *Client) Job(ctx context.Context, id int64) (*db.Job, error) {
	var job db.Job
	if err := c.get(ctx, "/api/jobs/"+strconv.FormatInt(id, 10), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// JobCount returns how many jobs match the filter, ignoring its limit.
func (c *Client) JobCount(ctx context.Context, f query.Filter) (int, error) {
	f.Limit = 0
	var out struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, "/api/jobs/count", filterValues(f), &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) CategoryCounts(ctx context.Context) ([]db.CategoryCount, error) {
	var counts []db.CategoryCount
	if err := c.get(ctx, "/api/jobs/categories", nil, &counts); err != nil {
		return nil, err
	}
	return nonNil(counts), nil
}

func (c *Client) Results(ctx context.Context, limit int) ([]db.Result, error) {
	var out []db.Result
	if err := c.get(ctx, "/api/results", limitValues(limit), &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) AdmitCards(ctx context.Context, limit int) ([]db.AdmitCard, error) {
	var out []db.AdmitCard
	if err := c.get(ctx, "/api/admit-cards", limitValues(limit), &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) AnswerKeys(ctx context.Context, limit int) ([]db.AnswerKey, error) {
	var out []db.AnswerKey
	if err := c.get(ctx, "/api/answer-keys", limitValues(limit), &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Subscribe registers a push subscription and returns its server id.
func (c *Client) Subscribe(ctx context.Context, sub db.PushSubscription) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.send(ctx, http.MethodPost, "/api/subscribe", sub, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) Unsubscribe(ctx context.Context, endpoint string) error {
	body := struct {
		Endpoint string `json:"endpoint"`
	}{endpoint}
	return c.send(ctx, http.MethodDelete, "/api/subscribe", body, nil)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", req.Method, req.URL.Path, ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", req.Method, req.URL.Path, ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 300:
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		return &ServerError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: %w: decode: %v", req.Method, req.URL.Path, ErrNetwork, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
