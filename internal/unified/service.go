// Package unified orchestrates the acquisition of a consistent dataset from
// the provider's split endpoints: it plans fetch segments around the today
// boundary, issues them concurrently, and merges the column-wise responses
// into the row-oriented unified schema.
package unified

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/skysweep/meteoq/internal/domain"
	"github.com/skysweep/meteoq/internal/observability"
)

// Request is one acquisition call as received from the CLI or the HTTP API.
type Request struct {
	Variables string // comma-separated variable names
	Location  string // "lat,lon"
	Mode      string // history | historical | forecast | both
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

// DatasetFetcher is the public contract of the orchestrator, also satisfied
// by the caching decorator.
type DatasetFetcher interface {
	Fetch(ctx context.Context, req Request) (*domain.UnifiedDataset, error)
}

// Service is the orchestrator. Every call is independent and stateless; the
// catalog is the only shared state and it is read-only.
type Service struct {
	catalog     *domain.Catalog
	fetcher     domain.SegmentFetcher
	logger      *slog.Logger
	metrics     *observability.Metrics
	maxInFlight int
}

// NewService creates the orchestrator. maxInFlight caps concurrent provider
// requests per call; values below 1 disable concurrency.
func NewService(catalog *domain.Catalog, fetcher domain.SegmentFetcher, logger *slog.Logger, metrics *observability.Metrics, maxInFlight int) *Service {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Service{
		catalog:     catalog,
		fetcher:     fetcher,
		logger:      logger,
		metrics:     metrics,
		maxInFlight: maxInFlight,
	}
}

// Fetch validates the request, plans segments, fetches them, and merges the
// responses into one UnifiedDataset. Any segment failure fails the whole
// call: a dataset merged from an incomplete segment set would misrepresent
// coverage.
func (s *Service) Fetch(ctx context.Context, req Request) (*domain.UnifiedDataset, error) {
	ds, err := s.fetch(ctx, req)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.DatasetRequests.WithLabelValues(req.Mode, outcome).Inc()
	return ds, err
}

func (s *Service) fetch(ctx context.Context, req Request) (*domain.UnifiedDataset, error) {
	descs, err := s.catalog.Resolve(req.Variables)
	if err != nil {
		return nil, err
	}

	lat, lon, err := domain.ParseLocation(req.Location)
	if err != nil {
		return nil, err
	}
	loc := domain.Point{Lat: lat, Lon: lon}

	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", domain.ErrInvalidRange, req.EndDate, req.StartDate)
	}

	plan, err := planSegments(descs, loc, mode, start, end)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)
	logger.Info("dataset fetch planned",
		"variables", req.Variables,
		"mode", string(mode),
		"start", req.StartDate,
		"end", req.EndDate,
		"segments", len(plan),
	)
	s.metrics.SegmentsPerCall.Observe(float64(len(plan)))

	responses, err := s.fetchAll(ctx, plan)
	if err != nil {
		logger.Error("segment fetch failed", "error", err)
		return nil, err
	}

	hourly, daily := mergeResponses(responses)
	hourlyFields, dailyFields := fieldNames(descs)
	data := domain.Unify(hourly, daily, hourlyFields, dailyFields)

	units := make(map[string]string, len(hourly.Units)+len(daily.Units))
	for f, u := range hourly.Units {
		units[f] = u
	}
	for f, u := range daily.Units {
		units[f] = u
	}

	ds := &domain.UnifiedDataset{
		Metadata: domain.Metadata{
			RequestID:   requestID,
			Variables:   names(descs),
			Categories:  categories(descs),
			Location:    loc,
			Mode:        mode,
			StartDate:   start.Format(domain.DateLayout),
			EndDate:     end.Format(domain.DateLayout),
			GeneratedAt: domain.Now(),
			Source:      "open-meteo",
		},
		Units: units,
		Data:  data,
	}

	logger.Info("dataset ready",
		"hourly_rows", len(data.Hourly),
		"daily_rows", len(data.Daily),
	)
	return ds, nil
}

// planSegments builds the ordered fetch plan. Historical segments come
// first, chronological within each endpoint; forecast segments follow. The
// merge later consumes responses in exactly this order, so completion order
// of the concurrent fetches never matters.
func planSegments(descs []domain.VariableDescriptor, loc domain.Point, mode domain.Mode, start, end time.Time) ([]domain.Segment, error) {
	today := domain.Today()
	var plan []domain.Segment

	if mode.WantsHistory() && start.Before(today) {
		histEnd := today.AddDate(0, 0, -1)
		if end.Before(histEnd) {
			histEnd = end
		}
		if !histEnd.Before(start) {
			subRanges, err := domain.SplitYears(start, histEnd)
			if err != nil {
				return nil, err
			}
			for _, ep := range sortedEndpoints(domain.RouteByEndpoint(descs, true)) {
				for _, r := range subRanges {
					plan = append(plan, domain.Segment{
						Endpoint:   ep.url,
						Location:   loc,
						Variables:  ep.descs,
						Start:      r.Start,
						End:        r.End,
						Historical: true,
					})
				}
			}
		}
	}

	if mode.WantsForecast() && !end.Before(today) {
		fcStart := start
		if fcStart.Before(today) {
			fcStart = today
		}
		// Forecast spans are always short enough for a single segment.
		for _, ep := range sortedEndpoints(domain.RouteByEndpoint(descs, false)) {
			plan = append(plan, domain.Segment{
				Endpoint:  ep.url,
				Location:  loc,
				Variables: ep.descs,
				Start:     fcStart,
				End:       end,
			})
		}
	}

	if len(plan) == 0 {
		return nil, domain.ErrEmptyRange
	}
	return plan, nil
}

// fetchAll issues every segment with bounded concurrency and returns the
// responses in plan order. The first failure cancels the remaining in-flight
// requests.
func (s *Service) fetchAll(ctx context.Context, plan []domain.Segment) ([]domain.RawResponse, error) {
	responses := make([]domain.RawResponse, len(plan))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxInFlight)
	for i, seg := range plan {
		i, seg := i, seg
		g.Go(func() error {
			resp, err := s.fetcher.FetchSegment(gctx, seg)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}

// mergeResponses folds the plan-ordered responses into one merged series per
// cadence. Because each (timestamp, field) cell takes its first non-null
// value, folding everything in plan order is equivalent to merging per
// endpoint first and concatenating after.
func mergeResponses(responses []domain.RawResponse) (hourly, daily *domain.MergedSeries) {
	hourly = domain.NewMergedSeries()
	daily = domain.NewMergedSeries()
	for _, resp := range responses {
		if !resp.Hourly.Empty() {
			hourly.Append(resp.Hourly, resp.HourlyUnits)
		}
		if !resp.Daily.Empty() {
			daily.Append(resp.Daily, resp.DailyUnits)
		}
	}
	return hourly, daily
}

type endpointGroup struct {
	url   string
	descs []domain.VariableDescriptor
}

func sortedEndpoints(groups map[string][]domain.VariableDescriptor) []endpointGroup {
	out := make([]endpointGroup, 0, len(groups))
	for url, descs := range groups {
		out = append(out, endpointGroup{url: url, descs: descs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].url < out[j].url })
	return out
}

func fieldNames(descs []domain.VariableDescriptor) (hourly, daily []string) {
	// Dedup per cadence: weather_code and weather_code_daily share a
	// provider field name but live in different streams.
	seen := make(map[string]bool, len(descs))
	for _, d := range descs {
		key := string(d.Cadence) + ":" + d.FieldName
		if seen[key] {
			continue
		}
		seen[key] = true
		if d.Cadence == domain.CadenceHourly {
			hourly = append(hourly, d.FieldName)
		} else {
			daily = append(daily, d.FieldName)
		}
	}
	return hourly, daily
}

func names(descs []domain.VariableDescriptor) []string {
	out := make([]string, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.Name)
	}
	return out
}

func categories(descs []domain.VariableDescriptor) []string {
	var out []string
	seen := make(map[domain.Category]bool)
	for _, d := range descs {
		if !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, string(d.Category))
		}
	}
	return out
}
