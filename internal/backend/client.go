// Package backend is the HTTP adapter for the external AI Maize Yield API.
// Every call is a single attempt: transport failures surface as *NetworkError
// and non-2xx responses as *APIError.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Antony-Mwangi/CORN-CAST/internal/observability"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "corncast-web"
	maxErrorBody     = 1 << 16
	tracerName       = "github.com/Antony-Mwangi/CORN-CAST/internal/backend"
)

// HTTPClient matches the subset of http.Client used by Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero or negative disables the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// Client talks JSON to the backend rooted at a fixed base URL.
type Client struct {
	base      *url.URL
	http      HTTPClient
	timeout   time.Duration
	userAgent string
	tracer    trace.Tracer
}

// New constructs a Client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("backend: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend: base URL %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	c := &Client{
		base:      parsed,
		http:      http.DefaultClient,
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Post sends body as JSON and decodes a 2xx response into out (nil discards it).
func (c *Client) Post(ctx context.Context, path string, body any, token string, out any) error {
	return c.do(ctx, http.MethodPost, path, body, token, out)
}

// Put sends body as JSON with the PUT method.
func (c *Client) Put(ctx context.Context, path string, body any, token string, out any) error {
	return c.do(ctx, http.MethodPut, path, body, token, out)
}

// Get fetches path and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, token, out)
}

// Delete issues a DELETE for path.
func (c *Client) Delete(ctx context.Context, path string, token string) error {
	return c.do(ctx, http.MethodDelete, path, nil, token, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, "backend "+method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	req, err := c.newRequest(ctx, method, path, body, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return err
	}
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", req.URL.String()),
	)

	logger := observability.FromContext(ctx)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		netErr := &NetworkError{
			Op:      method,
			URL:     req.URL.String(),
			Timeout: isTimeout(ctx, err),
			Err:     err,
		}
		span.RecordError(netErr)
		span.SetStatus(codes.Error, "transport")
		logger.Warn("backend request failed",
			zap.String("backend_method", method),
			zap.String("backend_path", path),
			zap.Bool("timeout", netErr.Timeout),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return netErr
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	logger.Debug("backend request completed",
		zap.String("backend_method", method),
		zap.String("backend_path", path),
		zap.Int("backend_status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errorFromResponse(resp)
		span.SetStatus(codes.Error, apiErr.Message)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if ctx.Err() != nil {
			return &NetworkError{Op: method, URL: req.URL.String(), Timeout: isTimeout(ctx, err), Err: err}
		}
		return fmt.Errorf("backend: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any, token string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("backend: encode payload: %w", err)
		}
		body = &buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) resolve(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	return c.base.ResolveReference(&url.URL{Path: trimmed}).String()
}

func errorFromResponse(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Status:  resp.StatusCode,
		Message: errorMessage(resp.StatusCode, body),
		Body:    body,
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
