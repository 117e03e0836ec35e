package domain

import "context"

// GeocodingResult is a resolved street address or place name.
type GeocodingResult struct {
	Point       Point
	DisplayName string
}

// Geocoder resolves free-form address text to coordinates. It is consumed by
// the HTTP surface, never by the acquisition core.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (GeocodingResult, error)
}

// TimezoneResolver maps coordinates to an IANA timezone name. Display-side
// concern; the core always fetches in UTC.
type TimezoneResolver interface {
	TimezoneAt(ctx context.Context, lat, lon float64) (string, error)
}
