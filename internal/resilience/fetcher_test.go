package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysweep/meteoq/internal/domain"
	"github.com/skysweep/meteoq/internal/observability"
	"github.com/skysweep/meteoq/internal/resilience"
)

type flakyFetcher struct {
	calls    int
	failures int // fail this many calls before succeeding
	err      error
}

func (f *flakyFetcher) FetchSegment(_ context.Context, _ domain.Segment) (domain.RawResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return domain.RawResponse{}, f.err
	}
	return domain.RawResponse{Hourly: domain.ColumnBlock{Times: []string{"2024-01-01T00:00"}}}, nil
}

func fastConfig(maxRetries int) resilience.Config {
	return resilience.Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func newFetcher(inner domain.SegmentFetcher, cfg resilience.Config) *resilience.Fetcher {
	return resilience.NewFetcher(inner, cfg, observability.NewSilentLogger(), observability.NewMetricsForTesting())
}

func TestFetcher_SucceedsFirstTry(t *testing.T) {
	inner := &flakyFetcher{}
	f := newFetcher(inner, fastConfig(3))

	resp, err := f.FetchSegment(context.Background(), domain.Segment{})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Len(t, resp.Hourly.Times, 1)
}

func TestFetcher_RetriesTransientFailure(t *testing.T) {
	inner := &flakyFetcher{failures: 2, err: domain.ErrUpstream}
	f := newFetcher(inner, fastConfig(3))

	_, err := f.FetchSegment(context.Background(), domain.Segment{})
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestFetcher_GivesUpAfterMaxRetries(t *testing.T) {
	inner := &flakyFetcher{failures: 10, err: domain.ErrTimeout}
	f := newFetcher(inner, fastConfig(2))

	_, err := f.FetchSegment(context.Background(), domain.Segment{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, 3, inner.calls) // first try + 2 retries
}

func TestFetcher_NoRetriesWhenDisabled(t *testing.T) {
	inner := &flakyFetcher{failures: 1, err: domain.ErrUpstream}
	f := newFetcher(inner, fastConfig(0))

	_, err := f.FetchSegment(context.Background(), domain.Segment{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestFetcher_StopsOnCancelledContext(t *testing.T) {
	inner := &flakyFetcher{failures: 100, err: errors.New("down")}
	f := newFetcher(inner, resilience.Config{
		MaxRetries:      100,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := f.FetchSegment(ctx, domain.Segment{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, inner.calls, 5)
}
