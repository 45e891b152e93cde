// Package alchemiscale is the HTTP client of the remote execution service.
package alchemiscale

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/network"
	"github.com/aretw0/asfe/pkg/ports"
)

// DefaultURL is the public service endpoint.
const DefaultURL = "https://api.alchemiscale.org"

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("alchemiscale: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("alchemiscale: %d %s: %s", e.Status, http.StatusText(e.Status), e.Detail)
}

// Credentials identify a user of the service.
type Credentials struct {
	ID  string
	Key string
}

// Client implements ports.Client over HTTP. Requests are never retried.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	toolkit    ports.Toolkit
	logger     *slog.Logger

	mu    sync.Mutex
	token string
}

var _ ports.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request. Zero means no client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// WithToolkit parses molecules of downloaded networks.
func WithToolkit(t ports.Toolkit) Option {
	return func(c *Client) {
		c.toolkit = t
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client. No request is made until the first call.
func New(baseURL string, creds Credentials, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	form := url.Values{"username": {c.creds.ID}, "password": {c.creds.Key}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok TokenResponse
	if err := c.send(req, &tok); err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("authentication failed: empty token")
	}
	c.token = tok.AccessToken
	c.logger.Debug("Authenticated", "url", c.baseURL, "identity", c.creds.ID)
	return c.token, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.authenticate(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Request", "method", method, "path", path)
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e ErrorResponse
		if json.Unmarshal(data, &e) == nil && len(e.Detail) > 0 {
			var s string
			if json.Unmarshal(e.Detail, &s) == nil {
				apiErr.Detail = s
			} else {
				apiErr.Detail = string(e.Detail)
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = data
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func parseKeys(raw []*string) ([]domain.ScopedKey, error) {
	out := make([]domain.ScopedKey, 0, len(raw))
	for _, s := range raw {
		if s == nil {
			continue
		}
		k, err := domain.ParseScopedKey(*s)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func (c *Client) CreateNetwork(ctx context.Context, n *domain.Network, scope domain.Scope) (domain.ScopedKey, error) {
	doc, err := network.ToDocument(n)
	if err != nil {
		return domain.ScopedKey{}, err
	}
	var sk string
	if err := c.do(ctx, http.MethodPost, "/networks", nil, CreateNetworkRequest{Network: doc, Scope: scope.String()}, &sk); err != nil {
		return domain.ScopedKey{}, err
	}
	return domain.ParseScopedKey(sk)
}

func (c *Client) GetNetwork(ctx context.Context, sk domain.ScopedKey) (*domain.Network, error) {
	var doc network.Document
	if err := c.do(ctx, http.MethodGet, "/networks/"+url.PathEscape(sk.String()), nil, nil, &doc); err != nil {
		return nil, err
	}
	return network.FromDocument(&doc, c.toolkit)
}

func (c *Client) GetNetworkTransformations(ctx context.Context, sk domain.ScopedKey) ([]domain.ScopedKey, error) {
	var raw []*string
	if err := c.do(ctx, http.MethodGet, "/networks/"+url.PathEscape(sk.String())+"/transformations", nil, nil, &raw); err != nil {
		return nil, err
	}
	return parseKeys(raw)
}

func (c *Client) GetTransformation(ctx context.Context, sk domain.ScopedKey) (*domain.Transformation, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/transformations/"+url.PathEscape(sk.String()), nil, nil, &raw); err != nil {
		return nil, err
	}
	return network.DecodeTransformation(raw, c.toolkit)
}

func (c *Client) GetTransformationResults(ctx context.Context, sk domain.ScopedKey, withDAGResults bool) ([]domain.DAGResult, error) {
	q := url.Values{"return_protocoldagresults": {fmt.Sprint(withDAGResults)}}
	var results []domain.DAGResult
	if err := c.do(ctx, http.MethodGet, "/transformations/"+url.PathEscape(sk.String())+"/results", q, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) GetNetworkTasks(ctx context.Context, sk domain.ScopedKey, status domain.TaskStatus) ([]domain.ScopedKey, error) {
	q := url.Values{"status": {string(status)}}
	var raw []*string
	if err := c.do(ctx, http.MethodGet, "/networks/"+url.PathEscape(sk.String())+"/tasks", q, nil, &raw); err != nil {
		return nil, err
	}
	return parseKeys(raw)
}

// SetTasksStatus returns the tasks the service changed; rejected ones come
// back as null and are dropped.
func (c *Client) SetTasksStatus(ctx context.Context, tasks []domain.ScopedKey, status domain.TaskStatus) ([]domain.ScopedKey, error) {
	req := SetTaskStatusRequest{Tasks: make([]string, len(tasks)), Status: string(status)}
	for i, t := range tasks {
		req.Tasks[i] = t.String()
	}
	var raw []*string
	if err := c.do(ctx, http.MethodPost, "/bulk/tasks/status/set", nil, req, &raw); err != nil {
		return nil, err
	}
	return parseKeys(raw)
}

func (c *Client) GetNetworkStatus(ctx context.Context, sk domain.ScopedKey) (domain.NetworkStatus, error) {
	var counts map[string]int
	if err := c.do(ctx, http.MethodGet, "/networks/"+url.PathEscape(sk.String())+"/status", nil, nil, &counts); err != nil {
		return nil, err
	}
	status := make(domain.NetworkStatus, len(counts))
	for k, v := range counts {
		st, err := domain.ParseTaskStatus(k)
		if err != nil {
			return nil, err
		}
		status[st] = v
	}
	return status, nil
}
