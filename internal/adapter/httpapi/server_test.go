package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysweep/meteoq/internal/domain"
	"github.com/skysweep/meteoq/internal/observability"
	"github.com/skysweep/meteoq/internal/unified"
)

type stubFetcher struct {
	lastReq unified.Request
	ds      *domain.UnifiedDataset
	err     error
}

func (s *stubFetcher) Fetch(_ context.Context, req unified.Request) (*domain.UnifiedDataset, error) {
	s.lastReq = req
	return s.ds, s.err
}

type stubGeocoder struct {
	result domain.GeocodingResult
	err    error
}

func (s *stubGeocoder) Geocode(context.Context, string) (domain.GeocodingResult, error) {
	return s.result, s.err
}

type stubTimezones struct {
	tz  string
	err error
}

func (s *stubTimezones) TimezoneAt(context.Context, float64, float64) (string, error) {
	return s.tz, s.err
}

func newTestServer(t *testing.T, fetcher unified.DatasetFetcher, geocoder domain.Geocoder, timezones domain.TimezoneResolver) *Server {
	t.Helper()
	catalog := domain.NewCatalog(domain.DefaultEndpoints())
	return NewServer(":0", fetcher, catalog, geocoder, timezones, observability.NewSilentLogger())
}

func doRequest(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleUnified_Success(t *testing.T) {
	fetcher := &stubFetcher{ds: &domain.UnifiedDataset{
		Metadata: domain.Metadata{RequestID: "abc", Mode: "history"},
	}}
	s := newTestServer(t, fetcher, nil, nil)

	rec := doRequest(s, "/api/unified?variables=temperature_2m&location=40.7,-74.0&mode=history&start=2024-01-01&end=2024-01-03")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got domain.UnifiedDataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "abc", got.Metadata.RequestID)

	assert.Equal(t, "temperature_2m", fetcher.lastReq.Variables)
	assert.Equal(t, "40.7,-74.0", fetcher.lastReq.Location)
	assert.Equal(t, "history", fetcher.lastReq.Mode)
	assert.Equal(t, "2024-01-01", fetcher.lastReq.StartDate)
	assert.Equal(t, "2024-01-03", fetcher.lastReq.EndDate)
}

func TestHandleUnified_AddressGeocoded(t *testing.T) {
	fetcher := &stubFetcher{ds: &domain.UnifiedDataset{}}
	geocoder := &stubGeocoder{result: domain.GeocodingResult{
		Point:       domain.Point{Lat: 51.5, Lon: -0.12},
		DisplayName: "London",
	}}
	s := newTestServer(t, fetcher, geocoder, nil)

	rec := doRequest(s, "/api/unified?variables=temperature_2m&address=London&mode=forecast&start=2024-01-01&end=2024-01-02")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "51.5,-0.12", fetcher.lastReq.Location)
}

func TestHandleUnified_AddressWithoutGeocoder(t *testing.T) {
	s := newTestServer(t, &stubFetcher{}, nil, nil)

	rec := doRequest(s, "/api/unified?variables=temperature_2m&address=London&mode=forecast&start=2024-01-01&end=2024-01-02")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUnified_GeocodeFailure(t *testing.T) {
	geocoder := &stubGeocoder{err: errors.New("nominatim unavailable")}
	s := newTestServer(t, &stubFetcher{}, geocoder, nil)

	rec := doRequest(s, "/api/unified?variables=temperature_2m&address=Nowhere&mode=forecast&start=2024-01-01&end=2024-01-02")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleUnified_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("resolve variables: %w", domain.ErrUnknownVariable), http.StatusBadRequest},
		{fmt.Errorf("parse location: %w", domain.ErrInvalidLocation), http.StatusBadRequest},
		{fmt.Errorf("parse mode: %w", domain.ErrInvalidMode), http.StatusBadRequest},
		{fmt.Errorf("parse dates: %w", domain.ErrInvalidRange), http.StatusBadRequest},
		{domain.ErrEmptyRange, http.StatusBadRequest},
		{fmt.Errorf("fetch segment: %w", domain.ErrUpstream), http.StatusBadGateway},
		{fmt.Errorf("fetch segment: %w", domain.ErrTimeout), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		s := newTestServer(t, &stubFetcher{err: tc.err}, nil, nil)
		rec := doRequest(s, "/api/unified?variables=temperature_2m&location=1,2&mode=history&start=2024-01-01&end=2024-01-02")

		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)

		var body domain.ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body.Error, tc.err.Error())
	}
}

func TestHandleVariables(t *testing.T) {
	s := newTestServer(t, &stubFetcher{}, nil, nil)

	rec := doRequest(s, "/api/variables")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Variables []struct {
			Name     string `json:"name"`
			Category string `json:"category"`
			Cadence  string `json:"cadence"`
		} `json:"variables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Variables)

	byName := make(map[string]string)
	for _, v := range body.Variables {
		byName[v.Name] = v.Category
	}
	assert.Equal(t, "weather", byName["temperature_2m"])
	assert.Equal(t, "air_quality", byName["pm2_5"])
}

func TestHandleTimezone(t *testing.T) {
	s := newTestServer(t, &stubFetcher{}, nil, &stubTimezones{tz: "America/New_York"})

	rec := doRequest(s, "/api/timezone?location=40.7,-74.0")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "America/New_York", body["timezone"])
}

func TestHandleTimezone_BadLocation(t *testing.T) {
	s := newTestServer(t, &stubFetcher{}, nil, &stubTimezones{tz: "UTC"})

	rec := doRequest(s, "/api/timezone?location=not-a-point")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTimezone_NotConfigured(t *testing.T) {
	s := newTestServer(t, &stubFetcher{}, nil, nil)

	rec := doRequest(s, "/api/timezone?location=40.7,-74.0")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, &stubFetcher{}, nil, nil)

	rec := doRequest(s, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
