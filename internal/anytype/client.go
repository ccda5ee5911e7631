package anytype

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

	"go.uber.org/zap"
)

// NoteService defines the calls gemnote makes against the companion API.
// This interface is implemented by *Client and can be used for testing.
type NoteService interface {
	ListSpaces(ctx context.Context) ([]Space, error)
	ListTypes(ctx context.Context, spaceID string) ([]ObjectType, error)
	CreateObject(ctx context.Context, spaceID string, req CreateObjectRequest) (*Object, error)
}

// Ensure Client implements NoteService at compile time.
var _ NoteService = (*Client)(nil)

// Client talks to the Anytype HTTP API.
type Client struct {
	baseURL   *url.URL
	apiKey    string
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

const (
	defaultUserAgent = "gemnote/0.1"
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 4 << 10
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a Client for baseURL authenticated with apiKey.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		apiKey:    strings.TrimSpace(apiKey),
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListSpaces retrieves the spaces visible to the API key.
func (c *Client) ListSpaces(ctx context.Context) ([]Space, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload listResponse[Space]
	if err := c.do(ctx, http.MethodGet, "/v1/spaces", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// ListTypes retrieves the object types defined in a space.
func (c *Client) ListTypes(ctx context.Context, spaceID string) ([]ObjectType, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(spaceID) == "" {
		return nil, fmt.Errorf("space id required")
	}
	var payload listResponse[ObjectType]
	path := "/v1/spaces/" + url.PathEscape(spaceID) + "/types"
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// CreateObject creates an object in a space. The returned object is nil when
// the API acknowledges the request without echoing it.
func (c *Client) CreateObject(ctx context.Context, spaceID string, req CreateObjectRequest) (*Object, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(spaceID) == "" {
		return nil, fmt.Errorf("space id required")
	}
	var payload createObjectResponse
	path := "/v1/spaces/" + url.PathEscape(spaceID) + "/objects"
	if err := c.do(ctx, http.MethodPost, path, req, &payload); err != nil {
		return nil, err
	}
	return payload.Object, nil
}

// Probe reports whether baseURL serves the Anytype API for this client's key.
// It satisfies discovery.Prober.
func (c *Client) Probe(ctx context.Context, baseURL string) bool {
	candidate, err := c.WithBaseURL(baseURL)
	if err != nil {
		return false
	}
	_, err = candidate.ListSpaces(ctx)
	return err == nil
}

// WithBaseURL returns a copy of the client pointed at another endpoint.
func (c *Client) WithBaseURL(baseURL string) (*Client, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	dup := *c
	dup.baseURL = base
	return &dup, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			Method: method,
			Path:   rel.Path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
		c.logger.Debug("api error",
			zap.String("url", reqURL.String()),
			zap.Int("status", resp.StatusCode))
		return apiErr
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ParseBaseURL normalizes a host:port or URL into an http base URL without
// path, query or fragment.
func ParseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
