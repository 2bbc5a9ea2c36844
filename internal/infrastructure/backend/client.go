// internal/infrastructure/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/brewflow-storefront/internal/config"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultMaxResponseSize caps how much of a backend response is read. The
// catalog carries every product image inline as ciphertext, so it is large.
const DefaultMaxResponseSize = 256 << 20

// Client talks JSON to the BrewFlow REST backend
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	maxBody    int64
	logger     logrus.FieldLogger
}

// NewClient creates a backend client from configuration
func NewClient(cfg *config.Config, logger logrus.FieldLogger) *Client {
	transport := http.DefaultTransport
	if cfg.Backend.Tracing {
		transport = otelhttp.NewTransport(transport)
	}

	client := New(cfg.Backend.BaseURL, cfg.Backend.Timeout, &http.Client{Transport: transport}, logger)
	return client.WithMaxResponseSize(cfg.Backend.MaxResponseSize)
}

// New creates a backend client. Every call is bounded by timeout.
func New(baseURL string, timeout time.Duration, httpClient *http.Client, logger logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
		maxBody:    DefaultMaxResponseSize,
		logger:     logger,
	}
}

// WithMaxResponseSize sets the largest response body accepted. Values below
// one keep the current limit.
func (c *Client) WithMaxResponseSize(n int64) *Client {
	if n > 0 {
		c.maxBody = n
	}
	return c
}

// Request describes one backend call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Token  string // bearer token, empty for public calls
}

// Response is a fully read backend response
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("malformed JSON response: %w", err)
	}
	return nil
}

// Message returns the backend's "message" field, if any
func (r *Response) Message() string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// Do performs req. It returns an error only when no complete response was
// received (network failure, deadline); any HTTP status is returned to the caller.
func (c *Client) Do(ctx context.Context, op string, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apperr.Transport(op, "failed to encode request", err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, apperr.Transport(op, "failed to build request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(op, err)
	}
	defer resp.Body.Close()

	// one byte over the limit tells a full body from a cut one
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, c.transportError(op, err)
	}
	if int64(len(data)) > c.maxBody {
		c.logger.WithFields(logrus.Fields{
			"op":    op,
			"path":  req.Path,
			"limit": c.maxBody,
		}).Error("Backend response exceeds size limit")
		return nil, apperr.Transport(op, "Backend response too large", nil)
	}

	c.logger.WithFields(logrus.Fields{
		"op":          op,
		"method":      req.Method,
		"path":        req.Path,
		"status_code": resp.StatusCode,
		"latency":     time.Since(start),
	}).Debug("Backend call completed")

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// DoJSON performs req and decodes a 2xx body into out. Non-2xx answers become
// transport errors carrying the backend's message, or fallback when it has none.
func (c *Client) DoJSON(ctx context.Context, op string, req Request, out interface{}, fallback string) error {
	resp, err := c.Do(ctx, op, req)
	if err != nil {
		return err
	}

	if !resp.OK() {
		msg := resp.Message()
		if msg == "" {
			msg = fallback
		}
		return &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: msg, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return apperr.Transport(op, fallback, err)
	}
	return nil
}

func (c *Client) transportError(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		c.logger.WithField("op", op).WithError(err).Warn("Backend call timed out")
		return apperr.Timeout(op, err)
	}

	c.logger.WithField("op", op).WithError(err).Error("Backend call failed")
	return apperr.Transport(op, err.Error(), err)
}
