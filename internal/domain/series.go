package domain

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

// Point is a WGS-84 latitude/longitude pair.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// String renders the point in the "lat,lon" form ParseLocation accepts.
func (p Point) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}

// Segment is one bounded unit of fetch work: a variable group routed to a
// single endpoint, over one date sub-range, on one side of the today
// boundary.
type Segment struct {
	Endpoint   string
	Location   Point
	Variables  []VariableDescriptor
	Start      time.Time
	End        time.Time
	Historical bool
}

// Fields returns the distinct provider field names of the segment's
// variables at the given cadence, in variable order.
func (s Segment) Fields(cad Cadence) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range s.Variables {
		if v.Cadence != cad || seen[v.FieldName] {
			continue
		}
		seen[v.FieldName] = true
		out = append(out, v.FieldName)
	}
	return out
}

// NeedsAirQualityDomain reports whether the segment requires the provider's
// explicit historical air-quality source hint (domains=cams_global).
func (s Segment) NeedsAirQualityDomain() bool {
	if !s.Historical {
		return false
	}
	for _, v := range s.Variables {
		if v.Category == CategoryAirQuality {
			return true
		}
	}
	return false
}

// SegmentFetcher issues one provider request per segment. Implementations
// must honor ctx cancellation and bound every call with a timeout.
type SegmentFetcher interface {
	FetchSegment(ctx context.Context, seg Segment) (RawResponse, error)
}

// ColumnBlock is the provider's column-wise series for one cadence: a time
// array plus one value array per field, index-aligned. Values stay raw JSON
// (number, string, or null).
type ColumnBlock struct {
	Times  []string
	Fields map[string][]json.RawMessage
}

// Empty reports whether the block carries no samples.
func (b ColumnBlock) Empty() bool { return len(b.Times) == 0 }

// RawResponse is one endpoint call's payload, transiently owned by the
// fetch client and consumed by the merge.
type RawResponse struct {
	Hourly      ColumnBlock
	HourlyUnits map[string]string
	Daily       ColumnBlock
	DailyUnits  map[string]string
}

// RouteByEndpoint groups descriptors by the endpoint that serves them for
// the requested direction. Group contents preserve descriptor order, and no
// descriptor lands in more than one group. Grouping is what lets one
// provider call carry several variables.
func RouteByEndpoint(descs []VariableDescriptor, historical bool) map[string][]VariableDescriptor {
	groups := make(map[string][]VariableDescriptor)
	for _, d := range descs {
		ep := d.ForecastEndpoint
		if historical {
			ep = d.HistoricalEndpoint
		}
		groups[ep] = append(groups[ep], d)
	}
	return groups
}
