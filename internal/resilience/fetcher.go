// Package resilience wraps a segment fetcher with retry, exponential
// backoff, and a circuit breaker. The acquisition core never retries on its
// own; this decorator is where that policy lives when a deployment wants it.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/skysweep/meteoq/internal/domain"
	"github.com/skysweep/meteoq/internal/observability"
)

// Config controls retry and backoff behaviour.
type Config struct {
	MaxRetries      int           // attempts beyond the first
	InitialInterval time.Duration // first backoff delay, doubled each retry
	MaxInterval     time.Duration // backoff cap
}

// Fetcher decorates a domain.SegmentFetcher with resilience policy.
type Fetcher struct {
	inner   domain.SegmentFetcher
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFetcher creates the decorator. The breaker trips after repeated
// consecutive failures and recovers on its own schedule.
func NewFetcher(inner domain.SegmentFetcher, cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 10 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "open-meteo",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
	})

	return &Fetcher{
		inner:   inner,
		cfg:     cfg,
		breaker: cb,
		logger:  logger,
		metrics: metrics,
	}
}

// FetchSegment delegates to the wrapped fetcher, retrying transient provider
// failures. Validation errors from the caller's own request never reach this
// layer, so every error here is a retry candidate except context
// cancellation, which aborts immediately.
func (f *Fetcher) FetchSegment(ctx context.Context, seg domain.Segment) (domain.RawResponse, error) {
	delay := f.cfg.InitialInterval
	var lastErr error

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.RawResponse{}, err
		}

		result, err := f.breaker.Execute(func() (any, error) {
			return f.inner.FetchSegment(ctx, seg)
		})
		if err == nil {
			return result.(domain.RawResponse), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.RawResponse{}, fmt.Errorf("%w: circuit breaker open: %v", domain.ErrUpstream, err)
		}
		if errors.Is(err, context.Canceled) {
			return domain.RawResponse{}, err
		}

		lastErr = err
		if attempt >= f.cfg.MaxRetries {
			return domain.RawResponse{}, lastErr
		}

		f.logger.Warn("segment fetch failed, retrying",
			"error", err,
			"attempt", attempt+1,
			"delay", delay,
			"endpoint", seg.Endpoint,
		)
		f.metrics.FetchRetries.Inc()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.RawResponse{}, ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > f.cfg.MaxInterval {
			delay = f.cfg.MaxInterval
		}
	}
}
