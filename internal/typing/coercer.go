package typing

import (
	"fmt"

	"caselens/domain/table"
)

// TargetType is the conversion target a caller can request per column.
type TargetType string

const (
	TargetString   TargetType = "string"
	TargetNumeric  TargetType = "numeric"
	TargetDatetime TargetType = "datetime"
	TargetBoolean  TargetType = "boolean"
)

// TypeMapping maps column names to requested target types. Entries for
// columns absent from the table are silently skipped.
type TypeMapping map[string]TargetType

const (
	// autoDetectRate is the stricter threshold the auto-detection
	// heuristic uses, versus the profiler's convertibility flag.
	autoDetectRate = 80.0
)

// Coerce returns a new table with the requested types applied, plus the
// conversion log: one line per processed column, tagged OK, WARN (values
// lost to coercion) or FAIL (column forced back to string). Coercion of
// one column never aborts the rest, and the row count is always
// preserved; only cell values may become null.
func Coerce(t *table.Table, mapping TypeMapping) (*table.Table, []string) {
	out := t.Clone()
	var log []string

	for _, col := range out.Columns() {
		target, requested := mapping[col]
		if !requested {
			continue
		}
		cells, err := out.Column(col)
		if err != nil {
			continue
		}

		converted, entry, err := coerceColumn(col, cells, target)
		if err != nil {
			// Safe fallback: keep the column, stringified.
			converted = stringifyCells(cells)
			entry = fmt.Sprintf("FAIL %s: conversion error, kept as string - %v", col, err)
		}
		if setErr := out.SetColumn(col, converted); setErr != nil {
			log = append(log, fmt.Sprintf("FAIL %s: %v", col, setErr))
			continue
		}
		log = append(log, entry)
	}

	return out, log
}

func coerceColumn(name string, cells []table.Value, target TargetType) ([]table.Value, string, error) {
	switch target {
	case TargetString:
		return stringifyCells(cells), fmt.Sprintf("OK %s: converted to string", name), nil

	case TargetNumeric:
		converted, lost := coerceParsed(cells, func(v table.Value) (table.Value, bool) {
			if v.IsNumeric() {
				return v, true
			}
			if n, ok := ParseNumeric(v.String()); ok {
				return table.NewNumericValue(n), true
			}
			return table.Value{}, false
		})
		if lost > 0 {
			return converted, fmt.Sprintf("WARN %s: converted to numeric (%d values lost)", name, lost), nil
		}
		return converted, fmt.Sprintf("OK %s: converted to numeric", name), nil

	case TargetDatetime:
		converted, lost := coerceParsed(cells, func(v table.Value) (table.Value, bool) {
			if v.IsTimestamp() {
				return v, true
			}
			if ts, ok := ParseDatetime(v.String()); ok {
				return table.NewTimestampValue(ts), true
			}
			return table.Value{}, false
		})
		if lost > 0 {
			return converted, fmt.Sprintf("WARN %s: converted to datetime (%d values lost)", name, lost), nil
		}
		return converted, fmt.Sprintf("OK %s: converted to datetime", name), nil

	case TargetBoolean:
		converted, _ := coerceParsed(cells, func(v table.Value) (table.Value, bool) {
			if v.Type == table.ValueTypeBoolean {
				return v, true
			}
			if b, ok := ParseBoolean(v.String()); ok {
				return table.NewBooleanValue(b), true
			}
			return table.Value{}, false
		})
		return converted, fmt.Sprintf("OK %s: converted to boolean", name), nil

	default:
		return nil, "", fmt.Errorf("unknown target type %q", target)
	}
}

// coerceParsed applies a per-cell parser, turning parse failures into
// nulls, and reports how many previously non-null cells were lost.
func coerceParsed(cells []table.Value, parse func(table.Value) (table.Value, bool)) ([]table.Value, int) {
	out := make([]table.Value, len(cells))
	lost := 0
	for i, v := range cells {
		if v.IsMissing {
			out[i] = table.NewMissingValue()
			continue
		}
		converted, ok := parse(v)
		if !ok {
			out[i] = table.NewMissingValue()
			lost++
			continue
		}
		out[i] = converted
	}
	return out, lost
}

// stringifyCells applies the universal stringification; nulls become
// empty strings.
func stringifyCells(cells []table.Value) []table.Value {
	out := make([]table.Value, len(cells))
	for i, v := range cells {
		if v.IsMissing {
			out[i] = table.NewStringValue("")
			continue
		}
		out[i] = table.NewStringValue(v.String())
	}
	return out
}

// AutoDetect builds a type mapping from column profiles: numeric when the
// numeric success rate clears 80%, else datetime when the datetime rate
// clears 80%, else string.
func AutoDetect(profiles []ColumnProfile) TypeMapping {
	mapping := make(TypeMapping, len(profiles))
	for _, p := range profiles {
		switch {
		case p.CanBeNumeric && p.NumericRate > autoDetectRate:
			mapping[p.Name] = TargetNumeric
		case p.CanBeDatetime && p.DatetimeRate > autoDetectRate:
			mapping[p.Name] = TargetDatetime
		default:
			mapping[p.Name] = TargetString
		}
	}
	return mapping
}
