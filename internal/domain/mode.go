package domain

import (
	"fmt"
	"strings"
)

// Mode selects which side of the today boundary a request covers.
type Mode string

const (
	ModeHistory  Mode = "history"
	ModeForecast Mode = "forecast"
	ModeBoth     Mode = "both"
)

// ParseMode normalizes a mode token. "historical" is accepted as an alias
// for "history".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "history", "historical":
		return ModeHistory, nil
	case "forecast":
		return ModeForecast, nil
	case "both":
		return ModeBoth, nil
	default:
		return "", fmt.Errorf("%w: %q (want history, historical, forecast, or both)", ErrInvalidMode, s)
	}
}

// WantsHistory reports whether the mode covers dates before today.
func (m Mode) WantsHistory() bool { return m == ModeHistory || m == ModeBoth }

// WantsForecast reports whether the mode covers today and later.
func (m Mode) WantsForecast() bool { return m == ModeForecast || m == ModeBoth }
