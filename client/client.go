// Package client talks to a running Themis server over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dev-mohitbeniwal/themis/model"
)

const (
	DefaultEndpoint = "http://localhost:8080"
	APIKeyHeader    = "WAY-API-KEY"
	// APIKeyEnv is read when no key is given explicitly.
	APIKeyEnv = "WAY_API_KEY"
)

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type Client struct {
	endpoint string
	apiKey   string
	http     HTTPClient
}

type Option func(*Client)

func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client. An empty endpoint selects DefaultEndpoint and an
// empty apiKey falls back to $WAY_API_KEY.
func New(endpoint, apiKey string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Check(ctx context.Context, req model.CheckRequest) (*model.CheckResponse, error) {
	var resp model.CheckResponse
	if err := c.do(ctx, http.MethodPost, "/check", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) BulkCheck(ctx context.Context, reqs []model.CheckRequest) ([]model.CheckResponse, error) {
	var resp []model.CheckResponse
	if err := c.do(ctx, http.MethodPost, "/check/bulk", reqs, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ListPolicies(ctx context.Context) ([]model.Policy, error) {
	var policies []model.Policy
	if err := c.do(ctx, http.MethodGet, "/admin/policies", nil, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

func (c *Client) CreatePolicy(ctx context.Context, policy model.Policy) (*model.Policy, error) {
	var created model.Policy
	if err := c.do(ctx, http.MethodPost, "/admin/policies", policy, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeletePolicy(ctx context.Context, name string) (bool, error) {
	var removed bool
	if err := c.do(ctx, http.MethodDelete, "/admin/policies/"+url.PathEscape(name), nil, &removed); err != nil {
		return false, err
	}
	return removed, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Kind = payload.Kind
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
