package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/skysweep/meteoq/internal/domain"
)

// TimezoneResolver implements domain.TimezoneResolver by asking the forecast
// endpoint for timezone=auto and reading back the resolved IANA name. It
// exists for display-side collaborators; the acquisition core always pins
// UTC.
type TimezoneResolver struct {
	endpoint   string
	httpClient *http.Client
}

// NewTimezoneResolver creates a resolver against the given forecast endpoint.
func NewTimezoneResolver(forecastEndpoint string, timeout time.Duration) *TimezoneResolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TimezoneResolver{
		endpoint:   forecastEndpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// TimezoneAt returns the IANA timezone name at the coordinates.
func (r *TimezoneResolver) TimezoneAt(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var p struct {
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}
	if p.Timezone == "" {
		return "", fmt.Errorf("%w: no timezone in response", domain.ErrUpstream)
	}
	return p.Timezone, nil
}
