package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Category classifies a variable by the provider family that serves it.
type Category string

const (
	CategoryWeather    Category = "weather"
	CategoryAirQuality Category = "air_quality"
	CategorySolar      Category = "solar"
)

// Cadence is the sampling granularity of a variable.
type Cadence string

const (
	CadenceHourly Cadence = "hourly"
	CadenceDaily  Cadence = "daily"
)

// Endpoints holds the three Open-Meteo base URLs. They are injectable so
// tests can point the catalog at local fake servers.
type Endpoints struct {
	Forecast   string
	Archive    string
	AirQuality string
}

// DefaultEndpoints returns the public Open-Meteo endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Forecast:   "https://api.open-meteo.com/v1/forecast",
		Archive:    "https://archive-api.open-meteo.com/v1/archive",
		AirQuality: "https://air-quality-api.open-meteo.com/v1/air-quality",
	}
}

// VariableDescriptor describes one fetchable variable: which provider field
// it maps to, at what cadence, and which endpoint serves it in each
// direction. Descriptors are immutable once the catalog is built.
type VariableDescriptor struct {
	Name               string
	Category           Category
	Cadence            Cadence
	FieldName          string // provider field name; usually equals Name
	HistoricalEndpoint string
	ForecastEndpoint   string
}

// Catalog is the fixed variable registry. It is built once at startup and is
// safe for concurrent lookups; there are no mutation operations.
type Catalog struct {
	vars  map[string]VariableDescriptor
	names []string // sorted
}

// Lookup returns the descriptor for name, or ErrUnknownVariable.
func (c *Catalog) Lookup(name string) (VariableDescriptor, error) {
	d, ok := c.vars[name]
	if !ok {
		return VariableDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	return d, nil
}

// Names returns every registered variable name in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Resolve splits a comma-separated variable list and looks each name up,
// preserving caller order. Whitespace around names is ignored; empty tokens
// and the empty list are rejected as unknown variables.
func (c *Catalog) Resolve(list string) ([]VariableDescriptor, error) {
	tokens := strings.Split(list, ",")
	descs := make([]VariableDescriptor, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		name := strings.TrimSpace(tok)
		d, err := c.Lookup(name)
		if err != nil {
			return nil, err
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		descs = append(descs, d)
	}
	return descs, nil
}

// NewCatalog builds the variable registry against the given endpoints.
func NewCatalog(ep Endpoints) *Catalog {
	c := &Catalog{vars: make(map[string]VariableDescriptor)}

	add := func(d VariableDescriptor) {
		c.vars[d.Name] = d
	}
	addEach := func(cat Category, cad Cadence, hist, fc string, names ...string) {
		for _, n := range names {
			add(VariableDescriptor{
				Name:               n,
				Category:           cat,
				Cadence:            cad,
				FieldName:          n,
				HistoricalEndpoint: hist,
				ForecastEndpoint:   fc,
			})
		}
	}

	// Weather, hourly: archive for history, forecast endpoint otherwise.
	addEach(CategoryWeather, CadenceHourly, ep.Archive, ep.Forecast,
		"temperature_2m",
		"apparent_temperature",
		"relative_humidity_2m",
		"precipitation",
		"precipitation_probability",
		"snowfall",
		"pressure_msl",
		"wind_speed_10m",
		"wind_gusts_10m",
		"wind_direction_10m",
		"visibility",
		"cloud_cover",
		"evapotranspiration",
		"weather_code",
	)

	// Weather, daily.
	addEach(CategoryWeather, CadenceDaily, ep.Archive, ep.Forecast,
		"temperature_2m_max",
		"temperature_2m_min",
		"apparent_temperature_max",
		"apparent_temperature_min",
		"precipitation_sum",
		"rain_sum",
		"showers_sum",
		"snowfall_sum",
		"precipitation_hours",
		"precipitation_probability_max",
		"precipitation_probability_mean",
		"precipitation_probability_min",
		"sunrise",
		"sunset",
		"wind_speed_10m_max",
		"wind_gusts_10m_max",
		"wind_direction_10m_dominant",
	)

	// Daily weather code shares the hourly variable's provider field name.
	add(VariableDescriptor{
		Name:               "weather_code_daily",
		Category:           CategoryWeather,
		Cadence:            CadenceDaily,
		FieldName:          "weather_code",
		HistoricalEndpoint: ep.Archive,
		ForecastEndpoint:   ep.Forecast,
	})

	// Air quality, hourly: one endpoint serves both directions.
	addEach(CategoryAirQuality, CadenceHourly, ep.AirQuality, ep.AirQuality,
		"pm2_5",
		"pm10",
		"nitrogen_dioxide",
		"carbon_monoxide",
		"ozone",
		"sulphur_dioxide",
		"carbon_dioxide",
		"us_aqi",
		"us_aqi_pm2_5",
		"us_aqi_pm10",
		"us_aqi_nitrogen_dioxide",
		"us_aqi_ozone",
		"us_aqi_sulphur_dioxide",
		"us_aqi_carbon_monoxide",
	)

	// Solar, daily: the forecast endpoint serves ERA5-backed history too, so
	// both directions point at it.
	addEach(CategorySolar, CadenceDaily, ep.Forecast, ep.Forecast,
		"uv_index_max",
	)

	c.names = make([]string, 0, len(c.vars))
	for n := range c.vars {
		c.names = append(c.names, n)
	}
	sort.Strings(c.names)
	return c
}
