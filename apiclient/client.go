package apiclient

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

	"github.com/google/uuid"
	"github.com/programme-lv/arena/httpjson"
	"github.com/programme-lv/arena/logger"
	"github.com/programme-lv/arena/srvcerror"
)

const maxResponseBytes = 8 << 20

// Client issues requests to the platform backend. It is safe for
// concurrent use; the bearer token may change between calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient sends requests through hc. The client is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request, whatever the order of options.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    30 * time.Second,
		logger:     slog.Default().With("module", "apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL is the backend root, without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call performs one request and normalizes every outcome into a Result.
// Nothing is retried.
func call[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) Result[T] {
	reqID := uuid.NewString()
	log := logger.FromContextOr(ctx, c.logger).With("request_id", reqID, "method", method, "path", path)

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Fail[T](srvcerror.ErrInternal().SetDebug(fmt.Errorf("encoding request body: %w", err)))
		}
		reqBody = bytes.NewReader(encoded)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return Fail[T](srvcerror.ErrInternal().SetDebug(fmt.Errorf("building request: %w", err)))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", "error", err)
		return Fail[T](srvcerror.ErrNetwork().SetDebug(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Debug("reading response failed", "error", err)
		return Fail[T](srvcerror.ErrNetwork().SetDebug(err))
	}
	log.Debug("request finished", "status", resp.StatusCode, "took", time.Since(start))

	return decodeEnvelope[T](resp.StatusCode, raw)
}

func decodeEnvelope[T any](status int, raw []byte) Result[T] {
	ok2xx := status >= 200 && status < 300

	var env httpjson.RawJsonResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		if !ok2xx {
			return Fail[T](statusError(status, "", ""))
		}
		return Fail[T](srvcerror.ErrNetwork().SetDebug(fmt.Errorf("undecodable response: %w", err)))
	}

	if !ok2xx || !env.Success {
		return Fail[T](statusError(status, env.ErrCode, env.ErrMsg))
	}

	var value T
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, &value); err != nil {
			return Fail[T](srvcerror.ErrNetwork().SetDebug(fmt.Errorf("undecodable data: %w", err)))
		}
	}
	return Ok(value)
}

// statusError passes the backend's message and code through, filling gaps
// from the HTTP status.
func statusError(status int, code, msg string) *srvcerror.Error {
	if code == "" {
		switch status {
		case http.StatusUnauthorized:
			code = srvcerror.ErrCodeUnauthorized
		case http.StatusForbidden:
			code = srvcerror.ErrCodeForbidden
		case http.StatusNotFound:
			code = srvcerror.ErrCodeNotFound
		default:
			code = fmt.Sprintf("http_%d", status)
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
		if msg == "" {
			msg = "request failed"
		}
	}
	err := srvcerror.New(code, msg)
	if status >= 200 && status < 300 {
		// success:false on a 2xx
		return err.SetHttpStatusCode(http.StatusUnprocessableEntity)
	}
	return err.SetHttpStatusCode(status)
}

// IsUnauthorized reports whether err means the token was rejected.
func IsUnauthorized(err error) bool {
	var srvcErr *srvcerror.Error
	if errors.As(err, &srvcErr) {
		return srvcErr.HttpStatusCode() == http.StatusUnauthorized
	}
	return false
}

func pathID(format string, ids ...string) string {
	escaped := make([]any, len(ids))
	for i, id := range ids {
		escaped[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, escaped...)
}
