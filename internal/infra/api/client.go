// Package api is the single access layer to the shop's remote REST API.
//
// Every call attaches the session's bearer token, JSON-encodes its body and
// decodes the {success, results|result, message} envelope. Callers receive
// typed values or one of the four failure classes declared in domain:
// ErrNetwork, ErrHTTPStatus, ErrApplication or ErrMalformed. The envelope
// itself never leaves this package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("api")

const (
	serviceName  = "api"
	maxBodyBytes = 4 << 20
)

// envelope is the wire wrapper every endpoint answers with. Login adds
// user and token next to success and message.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message,omitempty"`
	Results json.RawMessage `json:"results,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	User    json.RawMessage `json:"user,omitempty"`
	Token   string          `json:"token,omitempty"`
}

// Client talks to the remote API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Client. metrics may be nil.
func NewClient(httpClient *http.Client, baseURL string, cfg resilience.Config, logger *zap.Logger, metrics *observability.Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         resilience.NewCircuitBreaker("remote-api", countsAsHealthy),
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
	}
}

// countsAsHealthy keeps answers that prove the API is up (business
// rejections, 4xx, caller cancellation) from tripping the breaker.
func countsAsHealthy(err error) bool {
	var (
		app    *domain.ErrApplication
		status *domain.ErrHTTPStatus
	)
	switch {
	case errors.As(err, &app):
		return true
	case errors.As(err, &status):
		return status.Status < http.StatusInternalServerError
	case errors.Is(err, context.Canceled):
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	var network *domain.ErrNetwork
	return errors.As(err, &network)
}

// do sends one request and returns the decoded envelope of a successful
// (2xx, success=true) response. Only GETs are retried, and only when no
// response arrived at all.
func (c *Client) do(ctx context.Context, method, path, token string, body any) (*envelope, error) {
	op := method + " " + path
	ctx, span := tracer.Start(ctx, "api "+op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("api.path", path),
	)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", op, err)
		}
	}

	cfg := c.cfg
	if method != http.MethodGet {
		cfg.MaxRetries = 0
	}

	start := time.Now()
	var env *envelope
	_, err := c.cb.Execute(func() (any, error) {
		if err := c.bulkhead.Acquire(ctx); err != nil {
			return nil, &domain.ErrNetwork{Op: op, Err: err}
		}
		defer c.bulkhead.Release()

		return nil, resilience.RetryWithBackoff(ctx, cfg, isNetworkError, func() error {
			var sendErr error
			env, sendErr = c.send(ctx, op, method, path, token, payload)
			return sendErr
		})
	})
	if c.metrics != nil {
		c.metrics.RecordRequestDuration(op, time.Since(start))
	}

	if err != nil {
		if resilience.IsBreakerOpen(err) {
			err = &domain.ErrCircuitOpen{Service: serviceName}
		}
		c.observeFailure(op, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, errorClass(err))
		return nil, err
	}
	return env, nil
}

func (c *Client) send(ctx context.Context, op, method, path, token string, payload []byte) (*envelope, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &domain.ErrNetwork{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ErrNetwork{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.ErrNetwork{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return nil, &domain.ErrHTTPStatus{Op: op, Status: resp.StatusCode, Message: env.Message}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &domain.ErrMalformed{Op: op, Reason: "body is not a JSON envelope"}
	}
	if env.Success == nil {
		return nil, &domain.ErrMalformed{Op: op, Reason: "missing success field"}
	}
	if !*env.Success {
		return nil, &domain.ErrApplication{Op: op, Message: env.Message}
	}
	return &env, nil
}

func (c *Client) observeFailure(op string, err error) {
	class := errorClass(err)
	if c.metrics != nil {
		c.metrics.IncrUpstreamError(serviceName, class)
	}

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("class", class),
		zap.Error(err),
	}
	var status *domain.ErrHTTPStatus
	if errors.As(err, &status) {
		fields = append(fields, zap.Int("status", status.Status))
	}

	switch class {
	case "application", "http_status":
		c.logger.Info("api: request rejected", fields...)
	default:
		c.logger.Warn("api: request failed", fields...)
	}
}

// errorClass names the failure class for logs, metrics and spans.
func errorClass(err error) string {
	var (
		network     *domain.ErrNetwork
		status      *domain.ErrHTTPStatus
		app         *domain.ErrApplication
		malformed   *domain.ErrMalformed
		circuitOpen *domain.ErrCircuitOpen
	)
	switch {
	case errors.As(err, &network):
		return "network"
	case errors.As(err, &status):
		return "http_status"
	case errors.As(err, &app):
		return "application"
	case errors.As(err, &malformed):
		return "malformed"
	case errors.As(err, &circuitOpen):
		return "circuit_open"
	}
	return "other"
}

// decodeList reads env.results into a slice. An absent results field is a
// contract violation; an empty array is a valid empty list.
func decodeList[T any](op string, env *envelope) ([]T, error) {
	if isAbsent(env.Results) {
		return nil, &domain.ErrMalformed{Op: op, Reason: "missing results"}
	}
	var items []T
	if err := json.Unmarshal(env.Results, &items); err != nil {
		return nil, &domain.ErrMalformed{Op: op, Reason: "results: " + err.Error()}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// decodeOne reads a single record from env.result, falling back to the
// first element of env.results for endpoints that answer with a list.
func decodeOne[T any](op, resource, id string, env *envelope) (*T, error) {
	if !isAbsent(env.Result) {
		var item T
		if err := json.Unmarshal(env.Result, &item); err != nil {
			return nil, &domain.ErrMalformed{Op: op, Reason: "result: " + err.Error()}
		}
		return &item, nil
	}

	items, err := decodeList[T](op, env)
	if err != nil {
		return nil, &domain.ErrMalformed{Op: op, Reason: "missing result"}
	}
	if len(items) == 0 {
		return nil, &domain.ErrNotFound{Resource: resource, ID: id}
	}
	return &items[0], nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
