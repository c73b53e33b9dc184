// Package api is the JSON-over-HTTP client of the planner backend.
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
	"sync"
	"time"

	"github.com/tartampluch/go-wedding/internal/config"
)

// TokenSource supplies the bearer token of the current session. The client
// asks for it on every request and never keeps a copy.
type TokenSource interface {
	Token() (string, bool)
}

// Client issues requests against the planner backend. The zero value is not
// usable; construct it with NewClient. Exported fields must be set before the
// first request.
type Client struct {
	HTTP    *http.Client
	Tokens  TokenSource
	Metrics *Metrics

	// CSRFEndpoint, when set, is fetched before every non-GET request and the
	// returned token is sent in the X-CSRF-Token header. When empty no CSRF
	// header is sent.
	CSRFEndpoint string

	mu      sync.RWMutex
	baseURL string

	csrfOff sync.Once
}

// NewClient creates a client for the backend rooted at baseURL. The URL is
// validated lazily so that a bad preference surfaces as KindInvalidEndpoint
// on the first call instead of preventing startup.
func NewClient(baseURL string) *Client {
	return &Client{
		HTTP:    &http.Client{},
		baseURL: baseURL,
	}
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL points the client at another backend. Requests already in flight
// keep the previous address.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	c.baseURL = baseURL
	c.mu.Unlock()
}

// call performs one request and decodes the 2xx body into T.
func call[T any](ctx context.Context, c *Client, method, endpoint string, body any) (T, error) {
	start := time.Now()

	var out T
	raw, err := c.send(ctx, method, endpoint, body)
	if err == nil {
		out, err = decode[T](endpoint, raw)
	}

	c.Metrics.observe(endpoint, method, err, time.Since(start))
	return out, err
}

// resolve builds the absolute URL of an endpoint identifier such as
// "auth/login".
func (c *Client) resolve(endpoint string) (*url.URL, error) {
	base, err := url.Parse(c.BaseURL())
	if err != nil {
		return nil, &Error{Kind: KindInvalidEndpoint, Endpoint: endpoint, Message: config.ErrInvalidURL, Err: err}
	}
	if base.Scheme != config.SchemeHTTP && base.Scheme != config.SchemeHTTPS {
		return nil, &Error{Kind: KindInvalidEndpoint, Endpoint: endpoint, Message: fmt.Sprintf("%s: %q", config.ErrProtocol, base.Scheme)}
	}
	if base.Host == "" {
		return nil, &Error{Kind: KindInvalidEndpoint, Endpoint: endpoint, Message: config.ErrMissingHost}
	}
	if endpoint == "" || strings.Contains(endpoint, "://") || strings.HasPrefix(endpoint, "/") || strings.Contains(endpoint, "..") {
		return nil, &Error{Kind: KindInvalidEndpoint, Endpoint: endpoint, Message: config.ErrBadEndpoint}
	}
	return base.JoinPath(endpoint + config.EndpointSuffix), nil
}

// send executes the request and returns the raw 2xx body.
func (c *Client) send(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	u, err := c.resolve(endpoint)
	if err != nil {
		return nil, err
	}

	// Query strings are dropped so tokens never reach the logs.
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompAPI),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
		slog.String(config.LogKeyMethod, method),
	)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindDecodeFailure, Endpoint: endpoint, Message: config.ErrEncodeBody, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, &Error{Kind: KindInvalidEndpoint, Endpoint: endpoint, Message: err.Error(), Err: err}
	}
	req.Header.Set(config.HeaderContentType, config.MimeJSON)
	req.Header.Set(config.HeaderAccept, config.MimeJSON)
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	if c.Tokens != nil {
		if token, ok := c.Tokens.Token(); ok && token != "" {
			req.Header.Set(config.HeaderAuthorization, config.BearerPrefix+token)
		}
	}

	if method != http.MethodGet {
		csrf, err := c.csrfToken(ctx)
		if err != nil {
			return nil, err
		}
		if csrf != "" {
			req.Header.Set(config.HeaderCSRFToken, csrf)
		}
	}

	log.Debug(config.MsgRequestStart)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Endpoint: endpoint, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Warn(config.MsgServerStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, &Error{Kind: KindServerStatus, Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxHTTPResponseSize))
	if err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Endpoint: endpoint, Message: err.Error(), Err: err}
	}

	log.Debug(config.MsgRequestDone, slog.Int(config.LogKeySizeBytes, len(raw)))
	return raw, nil
}

// csrfToken fetches a fresh anti-forgery token when an endpoint is configured.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	if c.CSRFEndpoint == "" {
		c.csrfOff.Do(func() {
			slog.Debug(config.MsgCSRFDisabled, config.LogKeyComponent, config.CompAPI)
		})
		return "", nil
	}
	raw, err := c.send(ctx, http.MethodGet, c.CSRFEndpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := decode[csrfResponse](c.CSRFEndpoint, raw)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &Error{Kind: KindDecodeFailure, Endpoint: c.CSRFEndpoint, Message: config.ErrCSRFMissing}
	}
	return resp.Token, nil
}

// decode maps JSON failures onto the error taxonomy: bytes that are not JSON
// at all are malformed, valid JSON of the wrong shape is a decode failure.
func decode[T any](endpoint string, raw []byte) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return out, &Error{Kind: KindMalformedResponse, Endpoint: endpoint, Message: err.Error(), Err: err}
		}
		return out, &Error{Kind: KindDecodeFailure, Endpoint: endpoint, Message: err.Error(), Err: err}
	}
	return out, nil
}
