// Package binex talks to the school's single PHP task endpoint. Every operation is selected by the
// task query parameter; responses are JSON of inconsistent shape and are decoded at this boundary.
package binex

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
	"github.com/noah-isme/school-gateway/pkg/middleware/requestid"
)

const maxResponseBytes = 16 << 20

// Call outcomes reported to the Observer.
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport"
	OutcomeHTTP      = "http_error"
	OutcomeMalformed = "malformed"
)

// Observer receives timing for each backend call.
type Observer interface {
	ObserveBackendCall(task, outcome string, duration time.Duration)
}

// Config configures the client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zap.Logger
	Observer   Observer
}

// Client issues task requests against the school backend.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
	observer  Observer
}

// Request describes one task invocation. JSON takes precedence over Form; with neither the call is a GET.
type Request struct {
	Task   string
	Method string
	Query  url.Values
	Form   url.Values
	JSON   interface{}
}

// New validates the base URL and builds a client. A zero Timeout leaves the HTTP client default in place.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", cfg.BaseURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:      base,
		http:      httpClient,
		userAgent: cfg.UserAgent,
		logger:    logger,
		observer:  cfg.Observer,
	}, nil
}

// Do performs the request and returns the raw JSON body.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	if strings.TrimSpace(req.Task) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "task is required")
	}
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.send(req.Task, httpReq)
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
		method      = strings.ToUpper(strings.TrimSpace(req.Method))
	)
	switch {
	case req.JSON != nil:
		payload, err := sonic.Marshal(req.JSON)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode request")
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}
	if method == "" {
		method = http.MethodGet
		if body != nil {
			method = http.MethodPost
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.taskURL(req.Task, req.Query), body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	c.decorate(httpReq)
	return httpReq, nil
}

func (c *Client) taskURL(task string, query url.Values) string {
	u := *c.base
	q := u.Query()
	q.Set("task", task)
	for key, values := range query {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if id := requestid.FromContext(req.Context()); id != "" {
		req.Header.Set(requestid.Header, id)
	}
}

func (c *Client) send(task string, req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(task, OutcomeTransport, start)
		c.logger.Warn("backend call failed", zap.String("task", task), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.ErrBackendUnavailable.Message)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observe(task, OutcomeTransport, start)
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to read school server response")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		c.observe(task, OutcomeHTTP, start)
		c.logger.Warn("backend returned error status", zap.String("task", task), zap.Int("status", resp.StatusCode))
		return nil, appErrors.Wrap(fmt.Errorf("status %d", resp.StatusCode), appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.ErrBackendUnavailable.Message)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		c.observe(task, OutcomeMalformed, start)
		c.logger.Warn("backend returned non-json body", zap.String("task", task), zap.Int("bytes", len(raw)))
		return nil, appErrors.Clone(appErrors.ErrMalformedResponse, "school server did not return JSON")
	}
	c.observe(task, OutcomeOK, start)
	return trimmed, nil
}

func (c *Client) observe(task, outcome string, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(task, outcome, time.Since(start))
}
