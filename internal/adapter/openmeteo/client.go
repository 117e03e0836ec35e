// Package openmeteo implements domain.SegmentFetcher against the Open-Meteo
// HTTP APIs.
package openmeteo

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

	"github.com/skysweep/meteoq/internal/domain"
	"github.com/skysweep/meteoq/internal/observability"
)

// DefaultTimeout bounds one provider call. Multi-year archive responses can
// take the better part of a minute, so the budget is generous.
const DefaultTimeout = 90 * time.Second

// Client issues one HTTP request per fetch segment. It implements
// domain.SegmentFetcher. No retries happen here; resilience wrapping is the
// caller's choice.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an Open-Meteo fetch client with the given per-request
// timeout.
func NewClient(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// FetchSegment requests the segment's variable group for its date range and
// returns the provider's column-wise payload.
func (c *Client) FetchSegment(ctx context.Context, seg domain.Segment) (domain.RawResponse, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(seg.Location.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(seg.Location.Lon, 'f', -1, 64))
	params.Set("timezone", "UTC")
	params.Set("start_date", seg.Start.Format(domain.DateLayout))
	params.Set("end_date", seg.End.Format(domain.DateLayout))
	if hourly := seg.Fields(domain.CadenceHourly); len(hourly) > 0 {
		params.Set("hourly", strings.Join(hourly, ","))
	}
	if daily := seg.Fields(domain.CadenceDaily); len(daily) > 0 {
		params.Set("daily", strings.Join(daily, ","))
	}
	if seg.NeedsAirQualityDomain() {
		// Historical air quality requires an explicit source selection.
		params.Set("domains", "cams_global")
	}

	label := endpointLabel(seg.Endpoint)
	began := time.Now()
	resp, err := c.doRequest(ctx, seg.Endpoint+"?"+params.Encode())
	c.metrics.FetchDuration.WithLabelValues(label).Observe(time.Since(began).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(label, outcomeLabel(err)).Inc()
		return domain.RawResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.metrics.FetchRequests.WithLabelValues(label, "upstream_error").Inc()
		return domain.RawResponse{}, fmt.Errorf("%w: status %d from %s: %s",
			domain.ErrUpstream, resp.StatusCode, seg.Endpoint, strings.TrimSpace(string(body)))
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		c.metrics.FetchRequests.WithLabelValues(label, "upstream_error").Inc()
		return domain.RawResponse{}, fmt.Errorf("%w: decode response from %s: %v", domain.ErrUpstream, seg.Endpoint, err)
	}

	raw, err := p.toRawResponse()
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(label, "upstream_error").Inc()
		return domain.RawResponse{}, fmt.Errorf("%w: malformed series from %s: %v", domain.ErrUpstream, seg.Endpoint, err)
	}

	c.metrics.FetchRequests.WithLabelValues(label, "success").Inc()
	c.logger.Debug("segment fetched",
		"endpoint", label,
		"start", seg.Start.Format(domain.DateLayout),
		"end", seg.End.Format(domain.DateLayout),
		"historical", seg.Historical,
		"hourly_samples", len(raw.Hourly.Times),
		"daily_samples", len(raw.Daily.Times),
	)
	return raw, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return resp, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}

func outcomeLabel(err error) string {
	if errors.Is(err, domain.ErrTimeout) {
		return "timeout"
	}
	return "upstream_error"
}

// endpointLabel keeps metric cardinality down: one label per endpoint kind
// rather than per URL.
func endpointLabel(endpoint string) string {
	switch {
	case strings.Contains(endpoint, "air-quality"):
		return "air_quality"
	case strings.Contains(endpoint, "archive"):
		return "archive"
	default:
		return "forecast"
	}
}

// Provider response shape. Value arrays stay raw so numbers, strings, and
// nulls pass through untouched.

type payload struct {
	Hourly      map[string]json.RawMessage `json:"hourly"`
	HourlyUnits map[string]string          `json:"hourly_units"`
	Daily       map[string]json.RawMessage `json:"daily"`
	DailyUnits  map[string]string          `json:"daily_units"`
}

func (p payload) toRawResponse() (domain.RawResponse, error) {
	hourly, err := decodeBlock(p.Hourly)
	if err != nil {
		return domain.RawResponse{}, fmt.Errorf("hourly block: %w", err)
	}
	daily, err := decodeBlock(p.Daily)
	if err != nil {
		return domain.RawResponse{}, fmt.Errorf("daily block: %w", err)
	}
	return domain.RawResponse{
		Hourly:      hourly,
		HourlyUnits: p.HourlyUnits,
		Daily:       daily,
		DailyUnits:  p.DailyUnits,
	}, nil
}

func decodeBlock(cols map[string]json.RawMessage) (domain.ColumnBlock, error) {
	if len(cols) == 0 {
		return domain.ColumnBlock{}, nil
	}

	block := domain.ColumnBlock{Fields: make(map[string][]json.RawMessage, len(cols)-1)}
	timeCol, ok := cols["time"]
	if !ok {
		return domain.ColumnBlock{}, errors.New("missing time array")
	}
	if err := json.Unmarshal(timeCol, &block.Times); err != nil {
		return domain.ColumnBlock{}, fmt.Errorf("time array: %w", err)
	}

	for field, raw := range cols {
		if field == "time" {
			continue
		}
		var vals []json.RawMessage
		if err := json.Unmarshal(raw, &vals); err != nil {
			return domain.ColumnBlock{}, fmt.Errorf("field %s: %w", field, err)
		}
		block.Fields[field] = vals
	}
	return block, nil
}
