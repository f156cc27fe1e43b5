// Package rest is the single point of outbound HTTP for the Conecta API:
// base URL, default headers, bearer token attachment and response decoding.
// Every resource module talks to the server through this client.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/uleam-conecta/conecta-go/internal/metrics"
	"github.com/uleam-conecta/conecta-go/pkg/logger"
)

// maxBodyBytes bounds how much of a response is read into memory.
const maxBodyBytes = 8 << 20

// TokenSource supplies the bearer token for outgoing requests. It is
// consulted on every call, never captured at construction, because the token
// changes when the user signs in or out.
type TokenSource interface {
	Token() string
}

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default transport; mainly for tests.
	HTTPClient *http.Client
	// Tokens supplies the session token. May be nil for anonymous use.
	Tokens TokenSource
	// Limiter, when set, paces outgoing requests.
	Limiter *rate.Limiter
	Retry   RetryConfig
	Breaker BreakerConfig
	Logger  *logger.Logger
}

// Client is the Conecta API client.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	retry   RetryConfig
	breaker *Breaker
	log     *logger.Logger
}

// New creates a client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("rest")
	}
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryConfig()
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    httpClient,
		tokens:  cfg.Tokens,
		limiter: cfg.Limiter,
		retry:   retry,
		breaker: NewBreaker(cfg.Breaker),
		log:     log,
	}, nil
}

// Response is a decoded API response.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Get performs a GET request. Filters arrive pre-encoded in q; absent
// filters are simply not present, the server never sees empty values.
func (c *Client) Get(ctx context.Context, path string, q url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, q, nil)
}

// Do performs a request with an optional JSON body. Non-2xx responses are
// returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, q url.Values, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	build := func() (*http.Request, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.requestURL(path, q), reader)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}
	return c.execute(ctx, method, path, build)
}

// DoMultipart performs a request with a multipart/form-data body. Used by
// mutations whose payload carries file attachments.
func (c *Client) DoMultipart(ctx context.Context, method, path string, fields url.Values, files []File) (*Response, error) {
	body, contentType, err := encodeMultipart(fields, files)
	if err != nil {
		return nil, err
	}
	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.requestURL(path, nil), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}
	return c.execute(ctx, method, path, build)
}

func (c *Client) requestURL(path string, q url.Values) string {
	u := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
}

// execute runs the request through the limiter, circuit breaker and, for
// GETs only, the retry policy. Mutations are never retried: the client
// cannot tell a lost response from a lost request.
func (c *Client) execute(ctx context.Context, method, path string, build func() (*http.Request, error)) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := c.breaker.Allow(); err != nil {
		return nil, err
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = c.retry.MaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retry.backoff(attempt)):
			}
			c.log.Debugf("retrying %s %s (attempt %d)", method, path, attempt+1)
		}

		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		c.setHeaders(req)

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			metrics.ObserveRequest(method, path, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		metrics.ObserveRequest(method, path, resp.StatusCode, time.Since(start))
		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			continue
		}

		if c.retry.retryable(resp.StatusCode) && attempt < attempts-1 {
			lastErr = newAPIError(resp.StatusCode, body)
			continue
		}

		if resp.StatusCode >= 400 {
			apiErr := newAPIError(resp.StatusCode, body)
			// Server rejections are not transport failures; only 5xx
			// counts against the breaker.
			if resp.StatusCode >= 500 {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
			return nil, apiErr
		}

		c.breaker.RecordSuccess()
		return &Response{StatusCode: resp.StatusCode, Body: body, Header: resp.Header}, nil
	}

	c.breaker.RecordFailure()
	return nil, lastErr
}
