package provider

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
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs JSON calls against the provider's base URL. It never
// retries; every failure comes back as a *TransportError.
type Client struct {
	baseURL string
	client  HTTPDoer
	timeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient injects the HTTP client used for calls.
func WithHTTPClient(c HTTPDoer) ClientOption {
	return func(cl *Client) {
		cl.client = c
	}
}

// WithTimeout bounds every call. Zero leaves calls bounded only by the
// caller's context.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.timeout = d
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{}
	}
	return c
}

// Get issues a GET and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) Get(ctx context.Context, path string, query url.Values, headers http.Header, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, headers, out)
}

// Post issues a POST with a JSON-encoded body.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body any, headers http.Header, out any) error {
	return c.do(ctx, http.MethodPost, path, query, body, headers, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, headers http.Header, out any) error {
	fail := func(category ErrorCategory, status int, respBody []byte, err error) error {
		return &TransportError{
			Category:   category,
			Method:     method,
			Path:       path,
			StatusCode: status,
			Body:       truncateBody(respBody),
			Err:        err,
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fail(ErrorInternal, 0, nil, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fail(ErrorInternal, 0, nil, err)
	}
	for k, v := range headers {
		req.Header[k] = append([]string(nil), v...)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(ErrorTimeout, 0, nil, err)
		}
		return fail(ErrorProviderOutage, 0, nil, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(ErrorBadData, resp.StatusCode, nil, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(categoryForStatus(resp.StatusCode), resp.StatusCode, respBody, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fail(ErrorBadData, resp.StatusCode, nil, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
