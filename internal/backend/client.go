// Package backend talks to the remote storefront API over HTTP/JSON.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	// ErrUnavailable covers network failures, timeouts and an open breaker.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrBadResponse covers non-2xx statuses, malformed bodies and
	// envelopes reporting success:false.
	ErrBadResponse = errors.New("bad backend response")
)

const (
	DefaultTimeout = 10 * time.Second
	maxBodySize    = 10 << 20 // 10MB
)

// APIError is a response the backend rejected. It matches ErrBadResponse.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrBadResponse
}

// TokenSource returns the bearer token for the next request, or "".
type TokenSource func() string

type Config struct {
	// BaseURL serves products and orders, e.g. https://api.example.com/api.
	BaseURL string
	// AuthBaseURL serves /users/*. Defaults to BaseURL.
	AuthBaseURL string
	Timeout     time.Duration
	Breaker     circuitbreaker.Settings
}

type Client struct {
	http    *http.Client
	baseURL string
	authURL string
	timeout time.Duration
	token   TokenSource
	breaker *circuitbreaker.Breaker[[]byte]
	log     *slog.Logger
}

func New(cfg Config, token TokenSource, log *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = cfg.BaseURL
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = circuitbreaker.DefaultSettings("storefront-backend")
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		authURL: strings.TrimRight(cfg.AuthBaseURL, "/"),
		timeout: cfg.Timeout,
		token:   token,
		breaker: circuitbreaker.New[[]byte](cfg.Breaker, countsAgainstBreaker, log),
		log:     log,
	}
}

// countsAgainstBreaker ignores rejections the backend made on purpose.
func countsAgainstBreaker(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return errors.Is(err, ErrUnavailable)
}

// do sends one request and returns the raw 2xx body. There are no retries.
func (c *Client) do(ctx context.Context, method, url string, in any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var payload []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		payload = data
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, url, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrUnavailable, url, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &APIError{Status: resp.StatusCode, Message: messageOf(data)}
		}
		return data, nil
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		c.log.WarnContext(ctx, "backend request failed",
			slog.String("method", method),
			slog.String("url", url),
			slog.String("error", err.Error()))
		return nil, err
	}
	return body, nil
}

// envelope is the {success, <resource>, message} wrapper the backend
// puts around most payloads.
type envelope map[string]json.RawMessage

func (e envelope) success() (bool, bool) {
	raw, ok := e["success"]
	if !ok {
		return false, false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, false
	}
	return v, true
}

func (e envelope) message() string {
	var msg string
	if raw, ok := e["message"]; ok {
		_ = json.Unmarshal(raw, &msg)
	}
	return msg
}

// decodeList accepts a bare JSON array or an envelope carrying the array
// under resource.
func decodeList[T any](data []byte, resource string) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
		}
		return out, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if ok, present := env.success(); present && !ok {
		return nil, rejected(env)
	}
	raw, ok := env[resource]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrBadResponse, resource)
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadResponse, resource, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// decodeOne reads resource from an envelope, or the whole body when the
// backend answered with the bare object.
func decodeOne[T any](data []byte, resource string) (T, error) {
	var out T
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return out, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if ok, present := env.success(); present && !ok {
		return out, rejected(env)
	}
	raw, ok := env[resource]
	if !ok {
		raw = data
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrBadResponse, resource, err)
	}
	return out, nil
}

// checkEmpty validates a body whose content is not needed.
func checkEmpty(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		// non-object bodies are accepted as plain acknowledgements
		return nil
	}
	if ok, present := env.success(); present && !ok {
		return rejected(env)
	}
	return nil
}

// rejected reports a 2xx envelope carrying success:false.
func rejected(env envelope) error {
	return &APIError{Status: http.StatusOK, Message: env.message()}
}

func messageOf(data []byte) string {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}
	if msg := env.message(); msg != "" {
		return msg
	}
	var msg string
	if raw, ok := env["error"]; ok {
		_ = json.Unmarshal(raw, &msg)
	}
	return msg
}
