package domain

import "errors"

// Sentinel errors for the acquisition taxonomy. Call sites attach detail with
// fmt.Errorf("...: %w", Err...) and consumers branch with errors.Is.
var (
	// ErrUnknownVariable means a requested variable name is not in the catalog.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrInvalidLocation means a location token is not "<lat>,<lon>".
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidMode means the mode is not history, historical, forecast, or both.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrInvalidRange means the end date precedes the start date, or a date
	// failed to parse.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrUpstream means the provider returned a non-success status or an
	// unparseable body.
	ErrUpstream = errors.New("upstream error")

	// ErrTimeout means a provider call exceeded its time budget.
	ErrTimeout = errors.New("request timed out")

	// ErrEmptyRange means the requested window produced no fetchable segment
	// (e.g. mode=forecast with a range entirely in the past).
	ErrEmptyRange = errors.New("requested time range produced no segments to query")
)
