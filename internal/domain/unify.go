package domain

import "time"

// Record key for each cadence's time column.
const (
	HourlyTimeKey = "timestamp_utc"
	DailyTimeKey  = "date"
)

// UnifiedRecord is one row of the unified schema: the time key plus one
// entry per requested field. Missing samples are explicit JSON nulls.
type UnifiedRecord map[string]any

// UnifiedData carries the row-oriented output, one stream per cadence.
type UnifiedData struct {
	Hourly []UnifiedRecord `json:"hourly"`
	Daily  []UnifiedRecord `json:"daily"`
}

// Unify converts merged column-wise series into row-oriented records. Rows
// come out in the merged (ascending) time order, one per distinct timestamp,
// each carrying every field in fields for its cadence. No resampling or
// interpolation happens here; gaps stay null.
func Unify(hourly, daily *MergedSeries, hourlyFields, dailyFields []string) UnifiedData {
	return UnifiedData{
		Hourly: unifyCadence(hourly, HourlyTimeKey, hourlyFields),
		Daily:  unifyCadence(daily, DailyTimeKey, dailyFields),
	}
}

func unifyCadence(m *MergedSeries, timeKey string, fields []string) []UnifiedRecord {
	if m == nil || m.Empty() {
		return []UnifiedRecord{}
	}
	m.EnsureFields(fields)

	rows := make([]UnifiedRecord, 0, len(m.Times))
	for i, ts := range m.Times {
		row := make(UnifiedRecord, len(fields)+1)
		row[timeKey] = ts
		for _, f := range fields {
			row[f] = m.Fields[f][i]
		}
		rows = append(rows, row)
	}
	return rows
}

// Metadata describes the request a dataset answers.
type Metadata struct {
	RequestID   string    `json:"request_id"`
	Variables   []string  `json:"variables"`
	Categories  []string  `json:"categories"`
	Location    Point     `json:"location"`
	Mode        Mode      `json:"mode"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
}

// UnifiedDataset is the final output of an acquisition call.
type UnifiedDataset struct {
	Metadata Metadata          `json:"metadata"`
	Units    map[string]string `json:"units"`
	Data     UnifiedData       `json:"data"`
}

// ErrorBody is the wire shape for a failed call, used by the CLI and the
// HTTP API.
type ErrorBody struct {
	Error string `json:"error"`
}
