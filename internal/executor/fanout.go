package executor

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/datagen-io/datagen/internal/dataset"
	"github.com/datagen-io/datagen/internal/effect"
	"github.com/datagen-io/datagen/internal/seedfabric"
	"github.com/datagen-io/datagen/internal/table"
)

// fanoutCounts draws one child-row count per driver row under the
// node's declared Fanout distribution, scaling the distribution's mean
// by an effect multiplier when the fact node declares a table-level
// effect modifier (spec's "effect engine double duty": the same
// internal/effect join-matcher the column effect modifier uses also
// scales fanout here, applied before rounding and re-clamping). Each
// driver row's sample comes from its own seed-fabric stream scoped to
// (node.ID, "_fanout", parent_pk_as_string) per spec section 4.2, so
// the fanout draw for one parent row never depends on the presence or
// order of any other parent row.
func fanoutCounts(n *dataset.Node, parent *table.Table, driverKeys []interface{}, tables *table.Dataset, masterSeed uint64, start, end time.Time) ([]int, error) {
	baseMultipliers := make([]float64, len(driverKeys))
	for i := range baseMultipliers {
		baseMultipliers[i] = 1.0
	}

	for _, m := range n.TableModifiers {
		if m.Kind != dataset.ModEffect {
			continue
		}
		spec, onCols, err := parseFanoutEffectSpec(m.Args)
		if err != nil {
			return nil, err
		}
		drivers := buildDrivers(spec, onCols, parent, driverKeys, start, end)
		scaled, err := effect.Resolve(spec, tables, drivers)
		if err != nil {
			return nil, err
		}
		for i, s := range scaled {
			if spec.Op == "add" {
				baseMultipliers[i] += s
			} else {
				baseMultipliers[i] *= s
			}
		}
	}

	counts := make([]int, len(driverKeys))
	for i := range driverKeys {
		rng := seedfabric.Derive(masterSeed, n.ID, "_fanout", fmt.Sprintf("%v", driverKeys[i]))
		var raw float64
		switch n.Fanout.Kind {
		case dataset.FanoutPoisson:
			raw = float64(samplePoisson(rng, n.Fanout.Lambda))
		case dataset.FanoutUniform:
			lo, hi := n.Fanout.Min, n.Fanout.Max
			raw = float64(lo) + rng.Float64()*float64(hi-lo)
		}
		c := int(math.RoundToEven(raw * baseMultipliers[i]))
		if c < n.Fanout.Min {
			c = n.Fanout.Min
		}
		if n.Fanout.Max > 0 && c > n.Fanout.Max {
			c = n.Fanout.Max
		}
		counts[i] = c
	}
	return counts, nil
}

// parseFanoutEffectSpec decodes a table-level effect modifier's args
// into an effect.Spec plus the set of own-node (parent) column names
// its "on" keys reference, using the same effect_table/on/window/map
// shape as the column-level effect modifier (spec section 4.4).
func parseFanoutEffectSpec(args map[string]interface{}) (effect.Spec, map[string]string, error) {
	tableName, _ := args["effect_table"].(string)

	on := map[string]string{}
	if raw, ok := args["on"].(map[string]interface{}); ok {
		for k, v := range raw {
			if s, ok := v.(string); ok {
				on[k] = s
			}
		}
	}

	var startCol, endCol string
	if raw, ok := args["window"].(map[string]interface{}); ok {
		startCol, _ = raw["start_col"].(string)
		endCol, _ = raw["end_col"].(string)
	}

	field, op, def := "", "mul", 1.0
	if raw, ok := args["map"].(map[string]interface{}); ok {
		field, _ = raw["field"].(string)
		if o, ok := raw["op"].(string); ok && o != "" {
			op = o
		}
		if d, ok := toFloat(raw["default"]); ok {
			def = d
		} else if op == "add" {
			def = 0.0
		}
	}

	return effect.Spec{
		Table: tableName, On: on, WindowStartCol: startCol, WindowEndCol: endCol,
		Field: field, Op: op, Default: def,
	}, on, nil
}

// buildDrivers resolves, for every driver (parent) row, its "on" key
// values and a driver timestamp: the parent's own first datetime
// column if any, else the midpoint of the global time window (spec
// section 4.4's resolution order, minus the "current row" case which
// doesn't apply before the child table exists).
func buildDrivers(spec effect.Spec, on map[string]string, parent *table.Table, driverKeys []interface{}, start, end time.Time) []effect.Driver {
	var tsValues []interface{}
	for _, c := range parent.Columns {
		if len(c.Values) > 0 {
			if _, ok := c.Values[0].(time.Time); ok {
				tsValues = c.Values
				break
			}
		}
	}
	midpoint := start.Add(end.Sub(start) / 2)

	keyCols := make(map[string][]interface{}, len(on))
	for localKey := range on {
		if col, ok := parent.ColumnByName(localKey); ok {
			keyCols[localKey] = col.Values
		}
	}

	drivers := make([]effect.Driver, len(driverKeys))
	for i := range driverKeys {
		keys := make(map[string]interface{}, len(keyCols))
		for k, vals := range keyCols {
			keys[k] = vals[i]
		}
		ts := midpoint
		if tsValues != nil {
			if t, ok := tsValues[i].(time.Time); ok {
				ts = t
			}
		}
		drivers[i] = effect.Driver{Keys: keys, Timestamp: ts}
	}
	return drivers
}

func samplePoisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= rng.Float64()
		if p <= l {
			return k - 1
		}
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
