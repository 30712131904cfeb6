// Package effect implements the single join-matcher used both by the
// effect modifier (which scales a column's values) and the executor
// (which scales fact-node fanout) — one engine serving both call
// sites, per the spec's design note that the effect engine does
// "double duty" rather than each caller growing its own copy of the
// join logic.
package effect

import (
	"fmt"
	"time"

	"github.com/datagen-io/datagen/internal/table"
)

// Spec describes one effect join: scan Table for rows where every
// On mapping (local column name -> effect-table column name) matches
// the driver row's values, and, if a window is declared, where the
// driver's timestamp falls within [WindowStartCol, WindowEndCol] on
// that effect row. Matches combine by Op: product for "mul", sum for
// "add". A matched row missing Field contributes the op's identity
// (1.0 for mul, 0.0 for add); no match at all contributes Default.
type Spec struct {
	Table          string
	On             map[string]string
	WindowStartCol string
	WindowEndCol   string
	Field          string
	Op             string // "mul" or "add"
	Default        float64
}

// Driver is one row's perspective for an effect lookup: its values for
// every key named on the local side of Spec.On, and the timestamp used
// for window intersection (the zero Time if none is available, in
// which case a windowed spec never matches and falls back to Default).
type Driver struct {
	Keys      map[string]interface{}
	Timestamp time.Time
}

// EffectError is raised when a join cannot be resolved.
type EffectError struct {
	Table  string
	Detail string
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("effect error on table %s: %s", e.Table, e.Detail)
}

// Resolve returns one combined multiplier per driver, joining each
// against spec.Table per the matching rule above.
func Resolve(spec Spec, tables *table.Dataset, drivers []Driver) ([]float64, error) {
	target, ok := tables.ByName(spec.Table)
	if !ok {
		return nil, &EffectError{Table: spec.Table, Detail: "effect_table has not been generated yet"}
	}

	onCols := make(map[string]*table.Column, len(spec.On))
	for _, effectCol := range spec.On {
		col, ok := target.ColumnByName(effectCol)
		if !ok {
			return nil, &EffectError{Table: spec.Table, Detail: "on column not found on effect_table: " + effectCol}
		}
		onCols[effectCol] = col
	}

	var startCol, endCol *table.Column
	hasWindow := spec.WindowStartCol != "" && spec.WindowEndCol != ""
	if hasWindow {
		startCol, ok = target.ColumnByName(spec.WindowStartCol)
		if !ok {
			return nil, &EffectError{Table: spec.Table, Detail: "window start column not found: " + spec.WindowStartCol}
		}
		endCol, ok = target.ColumnByName(spec.WindowEndCol)
		if !ok {
			return nil, &EffectError{Table: spec.Table, Detail: "window end column not found: " + spec.WindowEndCol}
		}
	}

	var fieldCol *table.Column
	if spec.Field != "" {
		fieldCol, _ = target.ColumnByName(spec.Field)
	}

	isAdd := spec.Op == "add"

	multipliers := make([]float64, len(drivers))
	for i, drv := range drivers {
		matched := false
		acc := 1.0
		if isAdd {
			acc = 0.0
		}

		for row := 0; row < target.RowCount; row++ {
			if !onMatches(spec.On, onCols, row, drv.Keys) {
				continue
			}
			if hasWindow && !withinWindow(startCol, endCol, row, drv.Timestamp) {
				continue
			}
			matched = true

			contribution := 1.0
			if isAdd {
				contribution = 0.0
			}
			if fieldCol != nil {
				if f, ok := toFloat(fieldCol.Values[row]); ok {
					contribution = f
				}
			}
			if isAdd {
				acc += contribution
			} else {
				acc *= contribution
			}
		}

		if !matched {
			acc = spec.Default
		}
		multipliers[i] = acc
	}
	return multipliers, nil
}

func onMatches(on map[string]string, onCols map[string]*table.Column, row int, keys map[string]interface{}) bool {
	for localKey, effectKey := range on {
		col := onCols[effectKey]
		if col.Values[row] != keys[localKey] {
			return false
		}
	}
	return true
}

func withinWindow(startCol, endCol *table.Column, row int, ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	start, ok := toTime(startCol.Values[row])
	if !ok {
		return false
	}
	end, ok := toTime(endCol.Values[row])
	if !ok {
		return false
	}
	return !ts.Before(start) && !ts.After(end)
}

func toTime(v interface{}) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
