package domain

import (
	"bytes"
	"encoding/json"
)

// nullValue is the explicit no-value marker. Gaps are always materialized so
// value arrays never fall out of alignment with the time array.
var nullValue = json.RawMessage("null")

// IsNull reports whether a raw value is the no-value marker.
func IsNull(v json.RawMessage) bool {
	return len(v) == 0 || bytes.Equal(v, nullValue)
}

// MergedSeries accumulates column blocks from several responses into one
// series with a strictly deduplicated time array. After every Append,
// len(Fields[f]) == len(Times) for all f.
type MergedSeries struct {
	Times  []string
	Fields map[string][]json.RawMessage
	Units  map[string]string

	index map[string]int // timestamp -> position in Times
}

// NewMergedSeries returns an empty accumulation.
func NewMergedSeries() *MergedSeries {
	return &MergedSeries{
		Fields: make(map[string][]json.RawMessage),
		Units:  make(map[string]string),
		index:  make(map[string]int),
	}
}

// Empty reports whether no samples have been merged.
func (m *MergedSeries) Empty() bool { return len(m.Times) == 0 }

// Append merges one response block. Timestamps are kept unique in first-seen
// order. Each (timestamp, field) cell takes the first non-null value
// observed for it: a duplicate timestamp at a segment boundary does not
// produce a second row, and a response that lacks a field leaves null
// padding for a later response to fill.
func (m *MergedSeries) Append(block ColumnBlock, units map[string]string) {
	for i, ts := range block.Times {
		pos, ok := m.index[ts]
		if !ok {
			pos = len(m.Times)
			m.index[ts] = pos
			m.Times = append(m.Times, ts)
			for f := range m.Fields {
				m.Fields[f] = append(m.Fields[f], nullValue)
			}
		}

		for f, vals := range block.Fields {
			col, known := m.Fields[f]
			if !known {
				col = m.nullColumn()
				m.Fields[f] = col
			}
			if i >= len(vals) || !IsNull(col[pos]) {
				continue
			}
			if v := vals[i]; !IsNull(v) {
				m.Fields[f][pos] = v
			}
		}
	}

	// Last writer wins; in practice every chunk reports the same unit.
	for f, u := range units {
		m.Units[f] = u
	}
}

// EnsureFields materializes null columns for requested fields the provider
// never reported, so unified rows always carry every requested key.
func (m *MergedSeries) EnsureFields(fields []string) {
	for _, f := range fields {
		if _, ok := m.Fields[f]; !ok {
			m.Fields[f] = m.nullColumn()
		}
	}
}

func (m *MergedSeries) nullColumn() []json.RawMessage {
	col := make([]json.RawMessage, len(m.Times))
	for i := range col {
		col[i] = nullValue
	}
	return col
}
