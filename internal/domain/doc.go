// Package domain models unified Open-Meteo time-series acquisition.
//
// # Data Source
//
// All data comes from the Open-Meteo family of public APIs. Three endpoints
// are involved, and which one serves a variable depends on the variable's
// category and on whether the query reaches into the past:
//
//	https://api.open-meteo.com/v1/forecast                 weather forecasts (also ERA5-backed history for solar variables)
//	https://archive-api.open-meteo.com/v1/archive          historical weather reanalysis
//	https://air-quality-api.open-meteo.com/v1/air-quality  air quality, both directions
//
// Every endpoint returns column-wise JSON: one "time" array plus one value
// array per requested field, with a parallel units object:
//
//	{"hourly": {"time": [...], "temperature_2m": [...]},
//	 "hourly_units": {"time": "iso8601", "temperature_2m": "°C"}}
//
// # Provider Conventions
//
// Dates are YYYY-MM-DD and all requests pin timezone=UTC so hourly timestamps
// never shift across segment boundaries. The archive endpoint caps the span
// of a single request near one year, so historical ranges are split at
// calendar-year boundaries before fetching (see [SplitYears]). Historical
// air-quality queries must name an explicit data source; the provider expects
// domains=cams_global.
//
// A value array can contain JSON null where the provider has no sample (very
// recent archive hours, sensor gaps). Values are carried as raw JSON so that
// numbers, strings (sunrise/sunset are ISO timestamps), and nulls all survive
// the merge untouched.
//
// # Merge Semantics
//
// Responses for adjacent date sub-ranges may both report the timestamps at
// the boundary, and responses from different endpoints cover the same
// timestamps with disjoint field sets. [MergedSeries.Append] keeps one entry
// per distinct timestamp in first-seen order and fills each (timestamp, field)
// cell with the first non-null value observed; a null never overwrites data
// and data never overwrites an earlier non-null cell. Cells no response
// covered stay null, keeping every value array index-aligned with the time
// array.
package domain
