package modifiers

import (
	"time"

	"github.com/datagen-io/datagen/internal/effect"
	"github.com/datagen-io/datagen/internal/gencontext"
)

// applyEffect scales a numeric column by a multiplier joined from a
// sibling "event" table, via internal/effect's shared join-matcher —
// the same engine the executor calls to scale fact-node fanout, so
// effects pull double duty across column- and table-level scaling
// (spec section 4.4/4.9's "effect engine double duty").
func applyEffect(args map[string]interface{}, values []interface{}, ctx gencontext.Context) ([]interface{}, error) {
	spec, err := buildEffectSpec(args, ctx)
	if err != nil {
		return nil, err
	}
	drivers, err := ownTableDrivers(spec, args, ctx, len(values))
	if err != nil {
		return nil, err
	}

	multipliers, err := effect.Resolve(spec, ctx.Tables, drivers)
	if err != nil {
		return nil, &ModifierError{Kind: EffectJoinFail, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "effect", Detail: err.Error()}
	}

	out := make([]interface{}, len(values))
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, &ModifierError{Kind: TypeMismatch, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Modifier: "effect", Detail: "value is not numeric"}
		}
		if spec.Op == "add" {
			out[i] = f + multipliers[i]
		} else {
			out[i] = f * multipliers[i]
		}
	}
	return out, nil
}

// buildEffectSpec decodes the effect modifier args shape documented in
// spec section 4.4: effect_table, on={local_key: effect_key}, window=
// {start_col, end_col}, map={field, op, default}.
func buildEffectSpec(args map[string]interface{}, ctx gencontext.Context) (effect.Spec, error) {
	tableName, _ := args["effect_table"].(string)
	if tableName == "" {
		return effect.Spec{}, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "effect", Detail: "effect_table is required"}
	}

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
	if op != "mul" && op != "add" {
		return effect.Spec{}, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "effect", Detail: "map.op must be mul or add"}
	}

	return effect.Spec{
		Table: tableName, On: on, WindowStartCol: startCol, WindowEndCol: endCol,
		Field: field, Op: op, Default: def,
	}, nil
}

// ownTableDrivers resolves, for every row of the column currently
// being built, the local key values named on the effect's "on" map and
// a driver timestamp: the declared "time_column" if present, else the
// row's own first datetime column, else the midpoint of the global
// time window (spec section 4.4 step 1).
func ownTableDrivers(spec effect.Spec, args map[string]interface{}, ctx gencontext.Context, rowCount int) ([]effect.Driver, error) {
	tbl, ok := ctx.Tables.ByName(ctx.Node.ID)
	if !ok {
		return nil, &ModifierError{Kind: EffectJoinFail, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "effect", Detail: "own table is not registered yet"}
	}

	keyCols := make(map[string][]interface{}, len(spec.On))
	for localKey := range spec.On {
		col, ok := tbl.ColumnByName(localKey)
		if !ok {
			return nil, &ModifierError{Kind: EffectJoinFail, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Modifier: "effect", Detail: "on column not found on own table: " + localKey}
		}
		keyCols[localKey] = col.Values
	}

	var tsValues []interface{}
	if tc, _ := args["time_column"].(string); tc != "" {
		if col, ok := tbl.ColumnByName(tc); ok {
			tsValues = col.Values
		}
	}
	if tsValues == nil {
		for _, c := range tbl.Columns {
			if len(c.Values) > 0 {
				if _, ok := c.Values[0].(time.Time); ok {
					tsValues = c.Values
					break
				}
			}
		}
	}
	midpoint := ctx.Start.Add(ctx.End.Sub(ctx.Start) / 2)

	drivers := make([]effect.Driver, rowCount)
	for i := 0; i < rowCount; i++ {
		keys := make(map[string]interface{}, len(keyCols))
		for k, c := range keyCols {
			keys[k] = c[i]
		}
		ts := midpoint
		if tsValues != nil {
			if t, ok := tsValues[i].(time.Time); ok {
				ts = t
			}
		}
		drivers[i] = effect.Driver{Keys: keys, Timestamp: ts}
	}
	return drivers, nil
}
