package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

// Observable field names passed to subscribers
const (
	FieldBusy      = "busy"
	FieldLastError = "lastError"
)

// -----------------------------------------------------------------------------

// RequestClient performs GET requests with a bounded timeout, linear backoff
// retry and error classification.
type RequestClient struct {
	timeout      time.Duration
	attempts     int
	retryDelay   time.Duration
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger
	transport    http.RoundTripper
	sleep        func(ctx context.Context, d time.Duration) error

	mu        sync.RWMutex
	busy      bool
	lastError *helpers.ApiError
	notifier  helpers.Notifier[string]
}

// Option configures a RequestClient.
type Option func(*RequestClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *RequestClient) {
		c.timeout = d
	}
}

// WithRetries sets the attempt count and the base delay between attempts.
func WithRetries(attempts int, delay time.Duration) Option {
	return func(c *RequestClient) {
		c.attempts = attempts
		c.retryDelay = delay
	}
}

// WithProxyManager routes requests through the manager's current proxy.
func WithProxyManager(pm interfaces.IProxyManager) Option {
	return func(c *RequestClient) {
		c.ProxyManager = pm
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *RequestClient) {
		c.Logger = l
	}
}

// WithTransport overrides the round tripper of every per-call client.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *RequestClient) {
		c.transport = rt
	}
}

// WithSleep replaces the retry delay function.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *RequestClient) {
		c.sleep = fn
	}
}

// -----------------------------------------------------------------------------

func NewRequestClient(opts ...Option) *RequestClient {
	c := &RequestClient{
		timeout:    utils.APITimeout,
		attempts:   utils.RetryAttempts,
		retryDelay: utils.RetryDelay,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.attempts < 1 {
		c.attempts = 1
	}
	if c.Logger == nil {
		c.Logger = logger.NewLogger(nil, "RequestClient")
	}
	return c
}

// NewRequestClientFromConfig builds a client from the network section.
func NewRequestClientFromConfig(cfg *models.MConfig, log *logger.Logger) *RequestClient {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	return NewRequestClient(
		WithTimeout(time.Duration(cfg.Network.TimeoutMs)*time.Millisecond),
		WithRetries(cfg.Network.RetryAttempts, time.Duration(cfg.Network.RetryDelayMs)*time.Millisecond),
		WithProxyManager(helpers.NewProxyManager(proxies, cfg.Network.UserAgent, log.Named("ProxyManager"))),
		WithLogger(log),
	)
}

// -----------------------------------------------------------------------------

// createClient builds a fresh http.Client for one logical call
func (c *RequestClient) createClient() *http.Client {
	var transport http.RoundTripper = c.transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if c.ProxyManager != nil && c.ProxyManager.HasProxies() {
			t.Proxy = c.ProxyManager.ProxyFunc()
		}
		transport = t
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}
}

// -----------------------------------------------------------------------------

// Request performs the call described by opts against rawURL and decodes a
// 200 response body into out. Timeouts, cancellation and 404 stop the retry
// loop at once; every other failure is retried with a delay of
// retryDelay*attempt.
func (c *RequestClient) Request(ctx context.Context, rawURL string, opts *models.MRequestOptions, out any) error {
	if rawURL == "" {
		return helpers.InvalidArgument("request url must be non-empty")
	}

	client := c.createClient()
	var lastErr *helpers.ApiError

	for attempt := 1; attempt <= c.attempts; attempt++ {
		apiErr := c.attempt(ctx, client, rawURL, opts, out)
		if apiErr == nil {
			return nil
		}
		lastErr = apiErr

		if apiErr.Code == helpers.CodeAborted || apiErr.Status == http.StatusNotFound {
			break
		}

		if attempt < c.attempts {
			delay := c.retryDelay * time.Duration(attempt)
			c.Logger.Warning("Request to %s failed (attempt %d/%d): %v. Retrying in %v", rawURL, attempt, c.attempts, apiErr, delay)

			if c.ProxyManager != nil && c.ProxyManager.HasProxies() {
				c.ProxyManager.RotateProxy()
				client = c.createClient()
			}

			if err := c.sleep(ctx, delay); err != nil {
				lastErr = &helpers.ApiError{Message: err.Error(), Code: helpers.CodeAborted, Cause: err}
				break
			}
		}
	}

	c.setLastError(lastErr.Clone(time.Now()))
	return lastErr
}

// -----------------------------------------------------------------------------

// FetchOrNull wraps Request, logging and swallowing the error
func (c *RequestClient) FetchOrNull(ctx context.Context, rawURL string, opts *models.MRequestOptions, out any) bool {
	if err := c.Request(ctx, rawURL, opts, out); err != nil {
		c.Logger.Error("API request failed for %s: %v", rawURL, err)
		return false
	}
	return true
}

// -----------------------------------------------------------------------------

func (c *RequestClient) attempt(ctx context.Context, client *http.Client, rawURL string, opts *models.MRequestOptions, out any) *helpers.ApiError {
	c.beginAttempt()
	defer c.setBusy(false)

	req, err := newRequest(ctx, rawURL, opts)
	if err != nil {
		return &helpers.ApiError{Message: err.Error(), Code: helpers.CodeNetworkError, Cause: err}
	}
	if c.ProxyManager != nil {
		req.Header.Set("User-Agent", c.ProxyManager.GetUserAgent())
	}

	resp, err := client.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != utils.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &helpers.ApiError{
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			Code:    helpers.CodeHTTPError,
			Status:  resp.StatusCode,
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return classifyTransportError(ctx, err)
		}
		return &helpers.ApiError{
			Message: fmt.Sprintf("invalid response body: %v", err),
			Code:    helpers.CodeUnknown,
			Status:  resp.StatusCode,
			Cause:   err,
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func newRequest(ctx context.Context, rawURL string, opts *models.MRequestOptions) (*http.Request, error) {
	method := http.MethodGet
	if opts != nil && opts.Method != "" {
		method = opts.Method
	}

	reqURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if opts != nil && len(opts.Query) > 0 {
		q := reqURL.Query()
		for k, vs := range opts.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		reqURL.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if opts != nil {
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}
	}
	return req, nil
}

// classifyTransportError maps a failed round trip to ECONNABORTED for
// timeouts and cancellation, NETWORK_ERROR otherwise.
func classifyTransportError(ctx context.Context, err error) *helpers.ApiError {
	msg := err.Error()
	if msg == "" {
		msg = helpers.DefaultNetworkErrorText
	}

	code := helpers.CodeNetworkError
	if ctx.Err() != nil || isTimeout(err) {
		code = helpers.CodeAborted
	}
	return &helpers.ApiError{Message: msg, Code: code, Cause: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// -----------------------------------------------------------------------------
// Observable state
// -----------------------------------------------------------------------------

// Busy reports whether a request is outstanding
func (c *RequestClient) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.busy
}

// LastError returns a copy of the last exhausted failure, or nil
func (c *RequestClient) LastError() *helpers.ApiError {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastError == nil {
		return nil
	}
	return c.lastError.Clone(c.lastError.Timestamp)
}

// ClearError resets LastError
func (c *RequestClient) ClearError() {
	c.setLastError(nil)
}

// Subscribe registers fn, called with FieldBusy or FieldLastError
func (c *RequestClient) Subscribe(fn func(field string)) func() {
	return c.notifier.Subscribe(fn)
}

func (c *RequestClient) beginAttempt() {
	c.mu.Lock()
	hadError := c.lastError != nil
	c.lastError = nil
	c.busy = true
	c.mu.Unlock()

	if hadError {
		c.notifier.Notify(FieldLastError)
	}
	c.notifier.Notify(FieldBusy)
}

func (c *RequestClient) setBusy(busy bool) {
	c.mu.Lock()
	c.busy = busy
	c.mu.Unlock()
	c.notifier.Notify(FieldBusy)
}

func (c *RequestClient) setLastError(err *helpers.ApiError) {
	c.mu.Lock()
	c.lastError = err
	c.mu.Unlock()
	c.notifier.Notify(FieldLastError)
}
