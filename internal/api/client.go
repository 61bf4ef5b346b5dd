// Package api is the client of the remote REST API every page reads from and
// submits to. Failures come back as domain errors classified by HTTP status.
package api

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
	"time"

	"pawhub/internal/platform/tracer"
	dErrors "pawhub/pkg/domain-errors"
	"pawhub/pkg/platform/httputil"
	"pawhub/pkg/platform/middleware/request"
	"pawhub/pkg/requestcontext"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the bearer token for outgoing requests. An empty token
// sends the request anonymously. session.Store implements it.
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// StaticToken is a fixed bearer token.
type StaticToken string

func (t StaticToken) AccessToken(context.Context) string { return string(t) }

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	Tracer     tracer.Tracer
	Logger     *slog.Logger
}

// Client talks to the remote REST API.
type Client struct {
	baseURL *url.URL
	client  HTTPDoer
	timeout time.Duration
	tracer  tracer.Tracer
	logger  *slog.Logger
	tokens  TokenSource
}

// New creates a client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", cfg.BaseURL)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: base,
		client:  cfg.HTTPClient,
		timeout: cfg.Timeout,
		tracer:  cfg.Tracer,
		logger:  cfg.Logger,
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: cfg.Timeout}
	}
	if c.tracer == nil {
		c.tracer = tracer.NewNoop()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// WithToken returns a client that authenticates with ts.
func (c *Client) WithToken(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// Health checks that the API answers GET /health with 200.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/health", nil, nil, nil)
}

// do sends one request. query and body may be nil; out, when non-nil,
// receives the decoded JSON response.
func (c *Client) do(ctx context.Context, resource, method, path string, query url.Values, body, out any) (err error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, tracer.SpanAPIRequest,
		tracer.String(tracer.AttrMethod, method),
		tracer.String(tracer.AttrPath, path),
		tracer.String(tracer.AttrResource, resource),
	)
	defer func() {
		if err != nil {
			span.SetAttributes(tracer.String(tracer.AttrErrorCode, string(dErrors.CodeOf(err))))
		}
		span.End(err)
	}()

	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not encode request")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not build request")
	}
	req.Header.Set("Accept", "application/json")
	if id := requestcontext.RequestID(ctx); id != "" {
		req.Header.Set(request.Header, id)
	}
	c.tracer.Inject(ctx, req.Header)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.AccessToken(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
			span.SetAttributes(tracer.Bool(tracer.AttrAuthorized, true))
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return classifyTransport(ctx, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(tracer.Int(tracer.AttrStatusCode, resp.StatusCode))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classifyTransport(ctx, err)
	}

	c.logger.DebugContext(ctx, "api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus(resp.StatusCode, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "")
	}
	return nil
}

// classifyStatus maps a non-2xx response to a domain error carrying the API's
// message, when it sent one.
func classifyStatus(status int, body []byte) error {
	var eb httputil.ErrorBody
	_ = json.Unmarshal(body, &eb)
	msg := strings.TrimSpace(eb.Message)
	return &dErrors.Error{Code: httputil.HTTPStatusToDomainCode(status), Message: msg, Err: fmt.Errorf("api responded %d", status)}
}

func classifyTransport(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "")
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeCanceled, "")
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "")
}
