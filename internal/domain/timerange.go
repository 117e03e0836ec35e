package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the provider's date format.
const DateLayout = "2006-01-02"

// NewDate returns the UTC midnight for the given calendar day.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD token as a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrInvalidRange, s)
	}
	return t.UTC(), nil
}

// ParseLocation parses a "<lat>,<lon>" token. No bounds check is performed;
// the provider itself accepts out-of-range coordinates.
func ParseLocation(token string) (lat, lon float64, err error) {
	parts := strings.SplitN(token, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q is not \"lat,lon\"", ErrInvalidLocation, token)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad latitude in %q", ErrInvalidLocation, token)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad longitude in %q", ErrInvalidLocation, token)
	}
	return lat, lon, nil
}

// DateRange is an inclusive [Start, End] span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// SplitYears decomposes [start, end] into provider-safe sub-ranges: the first
// ends at Dec 31 of start's year (or at end, whichever is earlier), middle
// sub-ranges are whole calendar years, and the last runs from Jan 1 of end's
// year to end. The archive endpoint rejects spans much longer than a year,
// and cutting on calendar years keeps the partition deterministic.
func SplitYears(start, end time.Time) ([]DateRange, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s",
			ErrInvalidRange, end.Format(DateLayout), start.Format(DateLayout))
	}

	if start.Year() == end.Year() {
		return []DateRange{{Start: start, End: end}}, nil
	}

	ranges := []DateRange{{Start: start, End: NewDate(start.Year(), time.December, 31)}}
	for y := start.Year() + 1; y < end.Year(); y++ {
		ranges = append(ranges, DateRange{
			Start: NewDate(y, time.January, 1),
			End:   NewDate(y, time.December, 31),
		})
	}
	ranges = append(ranges, DateRange{Start: NewDate(end.Year(), time.January, 1), End: end})
	return ranges, nil
}
