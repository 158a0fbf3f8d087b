// Package http is the transport behind a tevo.Connection: it signs, retries,
// rate-limits and measures requests, and never follows redirects itself.
package http

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

	"github.com/fivetwenty-io/tevo/internal/auth"
	"github.com/fivetwenty-io/tevo/internal/constants"
	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Static errors for err113 compliance.
var (
	ErrBaseURLRequired = errors.New("base URL is required")
	ErrSignerRequired  = errors.New("request signer is required")
)

// RequestIDHeader carries a per-attempt correlation id.
const RequestIDHeader = "X-Request-Id"

// Client executes signed requests against the API root.
type Client struct {
	baseURL    *url.URL
	httpClient *retryablehttp.Client
	signer     *auth.Signer
	logger     tevo.Logger
	debug      bool
	userAgent  string
	limiter    *rate.Limiter
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger tevo.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
			c.httpClient.Logger = &leveledLogger{logger: logger}
		}
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig sets the retry budget and backoff bounds.
func WithRetryConfig(maxRetries int, minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = minWait
		c.httpClient.RetryWaitMax = maxWait
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRateLimit limits outgoing requests to perSecond, bursting up to one
// second's worth. Zero disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil

			return
		}

		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMetrics records request metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithHTTPClient replaces the underlying *http.Client. Redirect following is
// disabled on it regardless of its settings.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// NewClient creates a transport for the versioned API root baseURL.
func NewClient(baseURL string, signer *auth.Signer, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	if signer == nil {
		return nil, ErrSignerRequired
	}

	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.PrepareRetry = prepareRetry
	retryClient.HTTPClient = &http.Client{Timeout: constants.DefaultHTTPTimeout}

	client := &Client{
		baseURL:    parsed,
		httpClient: retryClient,
		signer:     signer,
		logger:     tevo.NoopLogger{},
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.httpClient.HTTPClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return client, nil
}

// Build implements tevo.Transport.
func (c *Client) Build(method tevo.Method, path string, params tevo.Params) tevo.RequestHandle {
	return &requestHandle{
		client: c,
		method: method,
		path:   path,
		params: params,
	}
}

// checkRetry retries transport failures, 429 and 5xx, but never replays a
// POST the server has already answered.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err == nil && resp != nil && resp.Request != nil && resp.Request.Method == http.MethodPost {
		return false, nil
	}

	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func (c *Client) do(ctx context.Context, method tevo.Method, path string, params tevo.Params) (*tevo.RawResponse, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	var body []byte

	switch method {
	case tevo.MethodGet, tevo.MethodDelete:
		if len(params) > 0 {
			query := target.Query()
			for key, values := range params.Values() {
				for _, value := range values {
					query.Add(key, value)
				}
			}

			target.RawQuery = query.Encode()
		}
	case tevo.MethodPost, tevo.MethodPut:
		if params != nil {
			body, err = json.Marshal(params)
			if err != nil {
				return nil, fmt.Errorf("encoding request body: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s", tevo.ErrUnsupportedMethod, method)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, string(method), target.String(), bodyReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", constants.AcceptHeader)
	req.Header.Set("User-Agent", c.userAgent)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set(RequestIDHeader, uuid.NewString())
	c.signer.Apply(req.Request, body)

	if c.limiter != nil {
		err = c.limiter.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     string(method),
			"url":        target.String(),
			"request_id": req.Header.Get(RequestIDHeader),
		})
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(string(method), target.Path, 0, time.Since(start))

		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	duration := time.Since(start)
	c.metrics.observe(string(method), target.Path, resp.StatusCode, duration)

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   resp.StatusCode,
			"duration": duration.String(),
			"size":     len(payload),
		})
	}

	return &tevo.RawResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       payload,
	}, nil
}

// prepareRetry gives every retry attempt its own request id.
func prepareRetry(req *http.Request) error {
	req.Header.Set(RequestIDHeader, uuid.NewString())

	return nil
}

// resolve joins path onto the API root. Paths may carry their own query.
func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parsing path %q: %w", path, err)
	}

	target := *c.baseURL
	target.Path = c.baseURL.Path + "/" + strings.TrimPrefix(ref.Path, "/")
	target.RawPath = ""
	target.RawQuery = ref.RawQuery

	return &target, nil
}

func bodyReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}

	return bytes.NewReader(body)
}

type requestHandle struct {
	client *Client
	method tevo.Method
	path   string
	params tevo.Params
}

func (h *requestHandle) Get(ctx context.Context) (*tevo.RawResponse, error) {
	return h.client.do(ctx, tevo.MethodGet, h.path, h.params)
}

func (h *requestHandle) Post(ctx context.Context) (*tevo.RawResponse, error) {
	return h.client.do(ctx, tevo.MethodPost, h.path, h.params)
}

func (h *requestHandle) Put(ctx context.Context) (*tevo.RawResponse, error) {
	return h.client.do(ctx, tevo.MethodPut, h.path, h.params)
}

func (h *requestHandle) Delete(ctx context.Context) (*tevo.RawResponse, error) {
	return h.client.do(ctx, tevo.MethodDelete, h.path, h.params)
}

// leveledLogger bridges retryablehttp's logging onto tevo.Logger.
type leveledLogger struct {
	logger tevo.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fields(keysAndValues))
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return out
}
