// Package recyclify implements the Recyclify backend API client.
// Every request carries the stored bearer token and goes through the rate
// limiter, the circuit breaker and the retrier.
package recyclify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/recyclify/recyclify-client/config"
	"github.com/recyclify/recyclify-client/internal/domain/session"
	"github.com/recyclify/recyclify-client/internal/infrastructure/metrics"
	"github.com/recyclify/recyclify-client/pkg/circuitbreaker"
	"github.com/recyclify/recyclify-client/pkg/logger"
	"github.com/recyclify/recyclify-client/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StorageTokens reads the token persisted under session.KeyToken.
type StorageTokens struct {
	Storage session.Storage
}

func (s StorageTokens) Token(ctx context.Context) (string, error) {
	token, _, err := s.Storage.Get(ctx, session.KeyToken)
	return token, err
}

// ClientConfig contains configuration for the API client.
type ClientConfig struct {
	// BaseURL is the backend URL without a trailing slash.
	BaseURL string

	Timeout time.Duration

	// Requests per second and burst for the token bucket.
	RateLimit float64
	RateBurst int

	MaxAttempts    int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	BreakerThreshold int
	BreakerTimeout   time.Duration

	Tokens     TokenSource
	Logger     *logger.Logger
	Metrics    metrics.Recorder
	HTTPClient *http.Client
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:          strings.TrimRight(baseURL, "/"),
		Timeout:          30 * time.Second,
		RateLimit:        10,
		RateBurst:        5,
		MaxAttempts:      3,
		RetryBaseDelay:   300 * time.Millisecond,
		RetryMaxDelay:    5 * time.Second,
		BreakerThreshold: 5,
		BreakerTimeout:   30 * time.Second,
	}
}

// ConfigFromAPI builds a ClientConfig from the loaded application config.
func ConfigFromAPI(api config.APIConfig) ClientConfig {
	cfg := DefaultClientConfig(api.BaseURL)
	cfg.Timeout = api.RequestTimeout
	cfg.RateLimit = api.RateLimit
	cfg.RateBurst = api.RateLimitBurst
	cfg.MaxAttempts = api.MaxRetries
	cfg.RetryBaseDelay = api.RetryBaseDelay
	cfg.RetryMaxDelay = api.RetryMaxDelay
	cfg.BreakerThreshold = api.CircuitBreakerThreshold
	cfg.BreakerTimeout = api.CircuitBreakerTimeout
	return cfg
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the Recyclify backend API client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *logger.Logger
	metrics    metrics.Recorder
	limiter    *rate.Limiter
	breaker    *circuitbreaker.Breaker
	retry      retry.Policy
}

// NewClient creates a new API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Nop{}
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RateBurst < 1 {
		cfg.RateBurst = 1
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	c := &Client{
		config:     cfg,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger.With(logger.Component("recyclify-api")),
		metrics:    cfg.Metrics,
		limiter:    rate.NewLimiter(limit, cfg.RateBurst),
	}

	c.breaker = circuitbreaker.New(circuitbreaker.Settings{
		Name:      "recyclify-api",
		Threshold: cfg.BreakerThreshold,
		Cooldown:  cfg.BreakerTimeout,
		IsFailure: isBreakerFailure,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
			c.metrics.RecordBreakerState(to.String())
		},
	})

	c.retry = retry.BackendPolicy(temporary)
	c.retry.Attempts = cfg.MaxAttempts
	if cfg.RetryBaseDelay > 0 {
		c.retry.BaseDelay = cfg.RetryBaseDelay
	}
	if cfg.RetryMaxDelay > 0 {
		c.retry.MaxDelay = cfg.RetryMaxDelay
	}
	return c
}

// BreakerState returns the circuit breaker state name.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// Reset closes the circuit breaker.
func (c *Client) Reset() {
	c.breaker.Reset()
}

// isBreakerFailure counts only failures that say the backend is unhealthy.
func isBreakerFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return temporary(err)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUESTS
// ══════════════════════════════════════════════════════════════════════════════

// formFile is a file part of a multipart body.
type formFile struct {
	field string
	name  string
	r     io.Reader
}

// request describes one backend call.
type request struct {
	endpoint string // metric and log label
	method   string
	path     string
	query    url.Values
	body     any         // JSON body
	fields   [][2]string // multipart fields, in order
	file     *formFile
	token    *string // overrides the TokenSource
	once     bool    // send at most once even if the method is idempotent
}

// retryable reports whether a failed send may be repeated. Only GET and PUT
// are; a POST or DELETE may already have taken effect on the backend.
func (r *request) retryable() bool {
	if r.once {
		return false
	}
	return r.method == http.MethodGet || r.method == http.MethodPut
}

// encode renders the body once so that retries can resend it.
func (r *request) encode() ([]byte, string, error) {
	switch {
	case r.fields != nil || r.file != nil:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, f := range r.fields {
			if err := w.WriteField(f[0], f[1]); err != nil {
				return nil, "", err
			}
		}
		if r.file != nil && r.file.r != nil {
			part, err := w.CreateFormFile(r.file.field, r.file.name)
			if err != nil {
				return nil, "", err
			}
			if _, err := io.Copy(part, r.file.r); err != nil {
				return nil, "", fmt.Errorf("read upload: %w", err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), w.FormDataContentType(), nil
	case r.body != nil:
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, "", fmt.Errorf("marshal body: %w", err)
		}
		return b, "application/json", nil
	default:
		return nil, "application/json", nil
	}
}

// response is a 2xx reply.
type response struct {
	status int
	body   []byte
	env    envelope
}

// data decodes the envelope's data field into v. A missing or null data
// field leaves v untouched.
func (r *response) data(v any) error {
	if len(r.env.Data) == 0 || string(r.env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.env.Data, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// raw decodes the whole body into v, for endpoints without an envelope.
func (r *response) raw(v any) error {
	if len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// message is the success message without its prefix.
func (r *response) message() string {
	return StripPrefix(r.env.Message)
}

// do performs a request with rate limiting and circuit breaking. Retryable
// requests are repeated on transport errors, 429 and 5xx.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	start := time.Now()
	payload, contentType, err := req.encode()
	if err != nil {
		return nil, err
	}

	policy := c.retry
	if !req.retryable() {
		policy.Attempts = 1
	}

	var resp *response
	err = policy.Do(ctx, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			c.metrics.RecordRetry(req.endpoint)
		}
		return c.breaker.Do(ctx, func(ctx context.Context) error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			r, err := c.send(ctx, req, payload, contentType, attempt)
			resp = r
			return err
		})
	})

	c.metrics.RecordRequest(req.endpoint, outcome(err), time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return resp, nil
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	if apiErr, ok := AsAPIError(err); ok {
		switch apiErr.Kind {
		case KindUser:
			return metrics.OutcomeUserError
		case KindServer:
			return metrics.OutcomeServer
		default:
			return metrics.OutcomeUnexpected
		}
	}
	var te *TransportError
	if errors.As(err, &te) {
		return metrics.OutcomeTransport
	}
	return metrics.OutcomeRejected
}

// send performs a single HTTP request.
func (c *Client) send(ctx context.Context, req request, payload []byte, contentType string, attempt int) (*response, error) {
	fullURL := c.config.BaseURL + req.path
	if len(req.query) > 0 {
		fullURL += "?" + req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", contentType)
	}

	token, err := c.token(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.logger.WithRequestID(requestID)
	log.Debug("recyclify api request",
		logger.String("method", req.method),
		logger.Endpoint(req.path),
		logger.Attempt(attempt))

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("recyclify api unreachable", logger.Endpoint(req.path), logger.Err(err))
		return nil, &TransportError{Endpoint: req.endpoint, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: req.endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	c.metrics.RecordHTTPStatus(httpResp.StatusCode)
	log.Debug("recyclify api response",
		logger.Endpoint(req.path),
		logger.Status(httpResp.StatusCode),
		logger.Latency(time.Since(start)))

	if httpResp.StatusCode >= 400 {
		return nil, newAPIError(req.endpoint, httpResp.StatusCode, respBody)
	}

	return &response{
		status: httpResp.StatusCode,
		body:   respBody,
		env:    parseEnvelope(respBody),
	}, nil
}

func (c *Client) token(ctx context.Context, req request) (string, error) {
	if req.token != nil {
		return *req.token, nil
	}
	if c.config.Tokens == nil {
		return "", nil
	}
	return c.config.Tokens.Token(ctx)
}
