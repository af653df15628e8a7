package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/session"
)

// Request is the options bag of a single call.
type Request struct {
	Method  string
	Body    any
	Headers map[string]string
}

// Response is either a JSON document or a raw binary payload.
type Response struct {
	Status      int
	ContentType string
	JSON        json.RawMessage
	Binary      []byte
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType, "application/json")
}

// Client issues authenticated requests against the ticketing backend.
type Client struct {
	baseURL string
	http    *http.Client
	creds   session.Store
	logger  *logger.Logger
	metrics *Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(baseURL string, creds session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		creds:   creds,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Do performs one call. JSON answers with a failure status come back as a
// KindHTTPStatus error; non-JSON answers come back raw whatever their status,
// so callers of Do that fetch binaries must check Response.Status themselves.
func (c *Client) Do(ctx context.Context, path string, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	start := time.Now()

	fail := func(kind ErrorKind, status int, body []byte, err error) (*Response, error) {
		c.metrics.observe(method, kind.String(), time.Since(start))
		return nil, &Error{Kind: kind, Status: status, Body: body, Method: method, Path: path, Wrapped: err}
	}

	var body io.Reader
	switch b := req.Body.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(b)
	case string:
		body = strings.NewReader(b)
	case io.Reader:
		body = b
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if c.creds != nil {
		token, err := c.creds.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read credential: %w", err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("API", fmt.Sprintf("%s %s failed: %v", method, path, err))
		return fail(KindNetwork, 0, nil, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("API", fmt.Sprintf("%s %s: failed to read response body: %v", method, path, err))
		return fail(KindNetwork, resp.StatusCode, nil, err)
	}

	c.logger.LogAPI(method, path, strconv.Itoa(resp.StatusCode), time.Since(start).String())

	out := &Response{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type")}
	if !out.IsJSON() {
		out.Binary = payload
		c.metrics.observe(method, "binary", time.Since(start))
		return out, nil
	}

	if len(bytes.TrimSpace(payload)) > 0 && !json.Valid(payload) {
		return fail(KindDecode, resp.StatusCode, nil, fmt.Errorf("invalid JSON body"))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("API", fmt.Sprintf("%s %s returned status %d", method, path, resp.StatusCode))
		return fail(KindHTTPStatus, resp.StatusCode, payload, nil)
	}

	out.JSON = payload
	c.metrics.observe(method, "ok", time.Since(start))
	return out, nil
}

// Send performs a call that must succeed, decoding a JSON answer into out
// when out is non-nil. Unlike Do it also treats non-JSON failures as errors.
func (c *Client) Send(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	resp, err := c.Do(ctx, path, Request{Method: method, Body: body, Headers: headers})
	if err != nil {
		return err
	}
	if !resp.IsJSON() {
		if resp.Status < 200 || resp.Status >= 300 {
			return &Error{Kind: KindHTTPStatus, Status: resp.Status, Method: method, Path: path}
		}
		if out != nil && len(resp.Binary) > 0 {
			return &Error{Kind: KindDecode, Status: resp.Status, Method: method, Path: path,
				Wrapped: fmt.Errorf("expected JSON, got %q", resp.ContentType)}
		}
		return nil
	}
	if out == nil || len(bytes.TrimSpace(resp.JSON)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.JSON, out); err != nil {
		return &Error{Kind: KindDecode, Status: resp.Status, Method: method, Path: path, Wrapped: err}
	}
	return nil
}

func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.Send(ctx, http.MethodGet, path, nil, nil, out)
}

// Download fetches a binary document, failing on any non-success status.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Do(ctx, url, Request{Method: http.MethodGet})
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return nil, &Error{Kind: KindHTTPStatus, Status: resp.Status, Method: http.MethodGet, Path: url, Body: resp.Binary}
	}
	if resp.IsJSON() {
		return resp.JSON, nil
	}
	return resp.Binary, nil
}
