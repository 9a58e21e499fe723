// Package rates fetches exchange rates for the dashboard widgets from a
// dolarapi-compatible service.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/resilience"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("rates")

const serviceName = "rates"

// Client fetches one rate per call and caches it per code.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	cache      port.Cache[domain.CurrencyRate]
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates a rates client. cache and metrics may be nil.
func NewClient(httpClient *http.Client, baseURL string, cfg resilience.Config, cache port.Cache[domain.CurrencyRate], metrics *observability.Metrics, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         resilience.NewCircuitBreaker("rates-api", nil),
		cfg:        cfg,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

var _ port.RatesFetcher = (*Client)(nil)

// GetRate returns the rate for code (e.g. "oficial", "blue").
func (c *Client) GetRate(ctx context.Context, code string) (*domain.CurrencyRate, error) {
	ctx, span := tracer.Start(ctx, "RatesClient.GetRate")
	defer span.End()
	span.SetAttributes(attribute.String("rate.code", code))

	if c.cache != nil {
		if rate, ok := c.cache.Get(code); ok {
			c.countCache(true)
			return &rate, nil
		}
		c.countCache(false)
	}

	result, err := c.cb.Execute(func() (any, error) {
		var rate domain.CurrencyRate
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, nil, func() error {
			u := fmt.Sprintf("%s/v1/dolares/%s", c.baseURL, url.PathEscape(code))
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return &domain.ErrNotFound{Resource: "rate", ID: code}
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("rates API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&rate)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &rate, nil
	})
	if err != nil {
		if resilience.IsBreakerOpen(err) {
			err = &domain.ErrCircuitOpen{Service: serviceName}
		}
		if c.metrics != nil {
			c.metrics.IncrUpstreamError(serviceName, "fetch")
		}
		c.logger.Warn("rates: fetch failed", zap.String("code", code), zap.Error(err))
		span.RecordError(err)
		return nil, &domain.ErrExternalService{Service: serviceName, Err: err}
	}

	rate := result.(*domain.CurrencyRate)
	if rate.Code == "" {
		rate.Code = code
	}
	if c.cache != nil {
		c.cache.Set(code, *rate)
	}
	return rate, nil
}

func (c *Client) countCache(hit bool) {
	if c.metrics == nil {
		return
	}
	if hit {
		c.metrics.IncrCacheHit(serviceName)
	} else {
		c.metrics.IncrCacheMiss(serviceName)
	}
}
