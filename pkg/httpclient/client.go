// Package httpclient provides the outbound HTTP foundation shared by all
// platform API clients. It normalizes transport results into the
// provisioning error taxonomy and applies a uniform bounded retry policy
// to transient failures.
//
// Retried requests are not deduplicated. A create call that times out
// after the remote side already created the resource can produce a
// duplicate remote account on retry; platform modules that create users
// carry this as a known risk.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/onboardhub/onboardhub/pkg/errors"
	"github.com/onboardhub/onboardhub/pkg/logger"
)

// DefaultTimeout is the per-request timeout applied when the platform
// config supplies none.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	BaseURL string

	// AuthHeader and AuthValue are attached to every request, e.g.
	// ("Authorization", "Bearer <token>").
	AuthHeader string
	AuthValue  string

	// Extra headers attached to every request.
	Headers map[string]string

	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration

	Logger logger.Logger

	// HTTPClient overrides the underlying client, mainly for tests.
	HTTPClient *http.Client
}

// Client issues JSON requests against one platform's native API.
type Client struct {
	baseURL    string
	authHeader string
	authValue  string
	headers    map[string]string
	httpClient *http.Client
	policy     errors.RetryPolicy
	executor   *errors.Executor
	logger     logger.Logger
}

// New creates a client for the given platform API.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	policy := errors.NewFixedDelayPolicy(opts.RetryDelay, opts.MaxAttempts)
	return &Client{
		baseURL:    opts.BaseURL,
		authHeader: opts.AuthHeader,
		authValue:  opts.AuthValue,
		headers:    opts.Headers,
		httpClient: httpClient,
		policy:     policy,
		executor:   errors.NewExecutor(policy, opts.Logger),
		logger:     opts.Logger,
	}
}

// MaxAttempts returns the configured attempt budget.
func (c *Client) MaxAttempts() int {
	return c.policy.MaxAttempts()
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do issues one logical request, retrying transient failures per the
// configured policy. Non-retryable classifications surface immediately.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, errors.ErrValidationFailed, "encode request body for %s %s", method, path)
		}
	}

	return c.executor.Execute(ctx, func() error {
		return c.doOnce(ctx, method, path, payload, out)
	})
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrapf(err, errors.ErrUnclassified, "build request %s %s", method, path)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authHeader != "" {
		req.Header.Set(c.authHeader, c.authValue)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response at all: timeouts classify as service unavailable,
		// everything else as a network failure. Both are retryable.
		if ctx.Err() != nil {
			return errors.Wrap(err, errors.ErrNetworkFailure, "request cancelled")
		}
		if isTimeout(err) {
			return errors.Wrap(err, errors.ErrServiceUnavailable, "request timed out")
		}
		return errors.Wrap(err, errors.ErrNetworkFailure, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.ErrNetworkFailure, "read response body")
	}

	if resp.StatusCode >= 400 {
		return ClassifyStatus(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.Wrapf(err, errors.ErrUnclassified, "decode response from %s %s", method, path)
		}
	}
	return nil
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeout); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return false
}

// ClassifyStatus maps an HTTP error status to the fixed error taxonomy.
// Only 429 and 5xx are retryable.
func ClassifyStatus(status int, body []byte) *errors.ProvisionError {
	message := extractMessage(body)
	switch {
	case status == http.StatusUnauthorized:
		return errors.New(errors.ErrUnauthorized, orDefault(message, "invalid or expired credentials")).
			WithHTTPStatus(status)
	case status == http.StatusForbidden:
		return errors.New(errors.ErrForbidden, orDefault(message, "insufficient permissions")).
			WithHTTPStatus(status)
	case status == http.StatusNotFound:
		return errors.New(errors.ErrNotFound, orDefault(message, "resource not found")).
			WithHTTPStatus(status)
	case status == http.StatusTooManyRequests:
		return errors.New(errors.ErrRateLimited, orDefault(message, "rate limit exceeded")).
			WithHTTPStatus(status)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return errors.New(errors.ErrValidationFailed, orDefault(message, "request rejected by platform")).
			WithHTTPStatus(status)
	case status >= 500:
		return errors.New(errors.ErrServiceUnavailable, orDefault(message, "platform service unavailable")).
			WithHTTPStatus(status)
	default:
		return errors.Newf(errors.ErrUnclassified, "unexpected status %d: %s", status, orDefault(message, http.StatusText(status))).
			WithHTTPStatus(status)
	}
}

// extractMessage pulls a human-readable error out of common JSON error
// body shapes.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Message != "":
			return envelope.Message
		case envelope.Error != "":
			return envelope.Error
		case envelope.Detail != "":
			return envelope.Detail
		}
	}
	const maxRaw = 200
	raw := string(body)
	if len(raw) > maxRaw {
		raw = raw[:maxRaw]
	}
	return raw
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
