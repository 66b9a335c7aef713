package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-formwizard/pkg/formdata"
)

const tracerName = "github.com/goliatone/go-formwizard/pkg/httpapi"

// DefaultTimeout bounds a single request when no timeout option is given.
const DefaultTimeout = 30 * time.Second

// ErrBaseURLRequired is returned when a relative endpoint is used without a
// base URL.
var ErrBaseURLRequired = errors.New("httpapi: base url is required for relative endpoints")

// Client talks to the form endpoints of the server framework. Payloads are
// sent as bracket-style form values and responses are decoded from JSON.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	timeout    time.Duration
	headers    http.Header
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds each request. Zero disables the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Add(key, value)
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer overrides the tracer used for request spans. Defaults to the
// global OpenTelemetry provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// New constructs a client resolving relative endpoints against baseURL.
// baseURL may be empty when every endpoint is absolute.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		headers:    make(http.Header),
		logger:     slog.New(slog.DiscardHandler),
		tracer:     otel.Tracer(tracerName),
	}
	if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("httpapi: parse base url: %w", err)
		}
		if !strings.HasSuffix(parsed.Path, "/") {
			parsed.Path += "/"
		}
		c.base = parsed
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the configured base URL, or nil.
func (c *Client) BaseURL() *url.URL {
	if c.base == nil {
		return nil
	}
	clone := *c.base
	return &clone
}

// StepEndpoint builds "{ep}/{uid}/{step}".
func StepEndpoint(ep, uid string, step int) string {
	return strings.TrimRight(ep, "/") + "/" + url.PathEscape(uid) + "/" + strconv.Itoa(step)
}

// Resolve turns an endpoint into an absolute URL.
func (c *Client) Resolve(ep string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(ep))
	if err != nil {
		return "", fmt.Errorf("httpapi: parse endpoint %q: %w", ep, err)
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}
	if c.base == nil {
		return "", ErrBaseURLRequired
	}
	return c.base.ResolveReference(parsed).String(), nil
}

// Request sends data to ep with method and returns the raw response body of a
// successful (2xx) response. Failures are reported as *Error.
func (c *Client) Request(ctx context.Context, method, ep string, data map[string]any) ([]byte, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodPost
	}
	target, err := c.Resolve(ep)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "httpapi.request", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", target),
	)

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	encoded := formdata.Encode(data).Encode()
	var body io.Reader
	if method == http.MethodGet || method == http.MethodHead {
		if encoded != "" {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + encoded
		}
	} else {
		body = strings.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("httpapi request failed", "method", method, "url", target, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &Error{StatusText: err.Error(), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &Error{Status: resp.StatusCode, StatusText: statusText(resp), Err: err}
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug("httpapi request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newResponseError(resp, payload)
		span.SetStatus(codes.Error, apiErr.Error())
		return nil, apiErr
	}
	return payload, nil
}

// GetWidgets fetches the widget fragments of a form step.
func (c *Client) GetWidgets(ctx context.Context, ep, uid string, step int, data map[string]any) ([]string, error) {
	payload, err := c.Request(ctx, http.MethodPost, StepEndpoint(ep, uid, step), data)
	if err != nil {
		return nil, err
	}
	var fragments []string
	if err := decode(payload, &fragments); err != nil {
		return nil, err
	}
	return fragments, nil
}

// Validate asks the server to validate a form step.
func (c *Client) Validate(ctx context.Context, ep, uid string, step int, data map[string]any) (ValidationResult, error) {
	var result ValidationResult
	payload, err := c.Request(ctx, http.MethodPost, StepEndpoint(ep, uid, step), data)
	if err != nil {
		return result, err
	}
	if err := decode(payload, &result); err != nil {
		return result, err
	}
	return result, nil
}

// Submit posts the completed form to its action.
func (c *Client) Submit(ctx context.Context, method, action string, data map[string]any) (SubmitResult, error) {
	var result SubmitResult
	payload, err := c.Request(ctx, method, action, data)
	if err != nil {
		return result, err
	}
	if len(strings.TrimSpace(string(payload))) == 0 {
		return result, nil
	}
	if err := decode(payload, &result); err != nil {
		return result, err
	}
	return result, nil
}

func decode(payload []byte, dest any) error {
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("httpapi: decode response: %w", err)
	}
	return nil
}
