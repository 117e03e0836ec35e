package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/skysweep/meteoq/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(vals ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(vals))
	for i, v := range vals {
		out[i] = json.RawMessage(v)
	}
	return out
}

func block(times []string, fields map[string][]json.RawMessage) domain.ColumnBlock {
	return domain.ColumnBlock{Times: times, Fields: fields}
}

func TestMergedSeries_SingleBlock(t *testing.T) {
	m := domain.NewMergedSeries()
	m.Append(block(
		[]string{"2024-01-01T00:00", "2024-01-01T01:00"},
		map[string][]json.RawMessage{"temperature_2m": raw("1.5", "2")},
	), map[string]string{"temperature_2m": "°C"})

	require.Equal(t, []string{"2024-01-01T00:00", "2024-01-01T01:00"}, m.Times)
	require.Len(t, m.Fields["temperature_2m"], 2)
	assert.Equal(t, json.RawMessage("1.5"), m.Fields["temperature_2m"][0])
	assert.Equal(t, "°C", m.Units["temperature_2m"])
}

func TestMergedSeries_ConcatenatesChunksInOrder(t *testing.T) {
	m := domain.NewMergedSeries()
	m.Append(block(
		[]string{"2023-12-31T22:00", "2023-12-31T23:00"},
		map[string][]json.RawMessage{"precipitation": raw("0", "0.2")},
	), nil)
	m.Append(block(
		[]string{"2024-01-01T00:00", "2024-01-01T01:00"},
		map[string][]json.RawMessage{"precipitation": raw("0.4", "null")},
	), nil)

	assert.Equal(t, []string{"2023-12-31T22:00", "2023-12-31T23:00", "2024-01-01T00:00", "2024-01-01T01:00"}, m.Times)
	assert.Equal(t, raw("0", "0.2", "0.4", "null"), m.Fields["precipitation"])
}

// A timestamp reported by two adjacent chunks must appear exactly once, with
// the first chunk's value kept.
func TestMergedSeries_DeduplicatesBoundaryTimestamp(t *testing.T) {
	m := domain.NewMergedSeries()
	m.Append(block(
		[]string{"2024-01-01T23:00", "2024-01-02T00:00"},
		map[string][]json.RawMessage{"temperature_2m": raw("5", "6")},
	), nil)
	m.Append(block(
		[]string{"2024-01-02T00:00", "2024-01-02T01:00"},
		map[string][]json.RawMessage{"temperature_2m": raw("9", "7")},
	), nil)

	assert.Equal(t, []string{"2024-01-01T23:00", "2024-01-02T00:00", "2024-01-02T01:00"}, m.Times)
	// First writer wins on the duplicated timestamp.
	assert.Equal(t, raw("5", "6", "7"), m.Fields["temperature_2m"])
}

// Merging responses from different endpoints over the same timestamps must
// union the fields, not smother one endpoint's values with the other's
// padding.
func TestMergedSeries_CrossEndpointFieldUnion(t *testing.T) {
	times := []string{"2024-01-01T00:00", "2024-01-01T01:00"}

	m := domain.NewMergedSeries()
	m.Append(block(times, map[string][]json.RawMessage{"temperature_2m": raw("1", "2")}),
		map[string]string{"temperature_2m": "°C"})
	m.Append(block(times, map[string][]json.RawMessage{"pm2_5": raw("11", "12")}),
		map[string]string{"pm2_5": "μg/m³"})

	assert.Equal(t, times, m.Times)
	assert.Equal(t, raw("1", "2"), m.Fields["temperature_2m"])
	assert.Equal(t, raw("11", "12"), m.Fields["pm2_5"])
	assert.Equal(t, "μg/m³", m.Units["pm2_5"])
}

func TestMergedSeries_PadsAbsentFields(t *testing.T) {
	m := domain.NewMergedSeries()
	m.Append(block(
		[]string{"2024-01-01T00:00"},
		map[string][]json.RawMessage{"temperature_2m": raw("1")},
	), nil)
	m.Append(block(
		[]string{"2024-01-01T01:00"},
		map[string][]json.RawMessage{"wind_speed_10m": raw("3")},
	), nil)

	assert.Equal(t, raw("1", "null"), m.Fields["temperature_2m"])
	assert.Equal(t, raw("null", "3"), m.Fields["wind_speed_10m"])
}

func TestMergedSeries_NullNeverOverwritesValue(t *testing.T) {
	m := domain.NewMergedSeries()
	m.Append(block(
		[]string{"2024-01-01T00:00"},
		map[string][]json.RawMessage{"ozone": raw("42")},
	), nil)
	m.Append(block(
		[]string{"2024-01-01T00:00"},
		map[string][]json.RawMessage{"ozone": raw("null")},
	), nil)

	assert.Equal(t, raw("42"), m.Fields["ozone"])
}

func TestMergedSeries_ValueFillsEarlierNull(t *testing.T) {
	m := domain.NewMergedSeries()
	m.Append(block(
		[]string{"2024-01-01T00:00"},
		map[string][]json.RawMessage{"ozone": raw("null")},
	), nil)
	m.Append(block(
		[]string{"2024-01-01T00:00"},
		map[string][]json.RawMessage{"ozone": raw("42")},
	), nil)

	assert.Equal(t, raw("42"), m.Fields["ozone"])
}

// Distinct timestamp count across all inputs equals the merged length, and
// every field column stays aligned with the time array.
func TestMergedSeries_AlignmentInvariant(t *testing.T) {
	m := domain.NewMergedSeries()
	m.Append(block(
		[]string{"a", "b", "c"},
		map[string][]json.RawMessage{"x": raw("1", "2", "3")},
	), nil)
	m.Append(block(
		[]string{"c", "d"},
		map[string][]json.RawMessage{"x": raw("30", "4"), "y": raw("300", "400")},
	), nil)

	require.Len(t, m.Times, 4)
	for f, col := range m.Fields {
		assert.Len(t, col, len(m.Times), "field %s misaligned", f)
	}
}

func TestIsNull(t *testing.T) {
	assert.True(t, domain.IsNull(nil))
	assert.True(t, domain.IsNull(json.RawMessage("null")))
	assert.False(t, domain.IsNull(json.RawMessage("0")))
	assert.False(t, domain.IsNull(json.RawMessage(`""`)))
}
