package modifiers

import (
	"fmt"
	"log"
	"time"

	"github.com/datagen-io/datagen/internal/gencontext"
)

// applySeasonality scales a numeric column by a per-bucket multiplier
// keyed off a sibling datetime column's day-of-week, hour or month
// (spec section 4.4), so e.g. weekend rows can run higher than weekday
// rows without a separate generator per day. A column with no declared
// time_column and no sibling timestamp can't be bucketed; per spec
// section 4.4's documented failure mode, that surfaces as a warning and
// leaves the column unmodified rather than aborting generation.
func applySeasonality(args map[string]interface{}, values []interface{}, ctx gencontext.Context) ([]interface{}, error) {
	timeColumn, _ := args["time_column"].(string)
	if timeColumn == "" {
		if tbl, ok := ctx.Tables.ByName(ctx.Node.ID); ok {
			for _, c := range tbl.Columns {
				if len(c.Values) > 0 {
					if _, isTime := c.Values[0].(time.Time); isTime {
						timeColumn = c.Name
						break
					}
				}
			}
		}
	}
	if timeColumn == "" {
		log.Printf("WARN: seasonality modifier on %s.%s has no time_column and no sibling timestamp column; applying no bucket weighting", ctx.Node.ID, ctx.Column.Name)
		return values, nil
	}
	dimension, _ := args["dimension"].(string)
	if dimension == "" {
		dimension = "dow"
	}
	rawWeights, ok := args["weights"].(map[string]interface{})
	if !ok || len(rawWeights) == 0 {
		return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "seasonality", Detail: "weights must be a non-empty bucket/multiplier table"}
	}
	weights, err := normalizeSeasonalityWeights(rawWeights, ctx)
	if err != nil {
		return nil, err
	}

	tbl, ok := ctx.Tables.ByName(ctx.Node.ID)
	if !ok {
		return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "seasonality", Detail: "own table is not registered yet"}
	}
	timeCol, ok := tbl.ColumnByName(timeColumn)
	if !ok {
		return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "seasonality", Detail: "time_column not found: " + timeColumn}
	}

	out := make([]interface{}, len(values))
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, &ModifierError{Kind: TypeMismatch, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Modifier: "seasonality", Detail: "value is not numeric"}
		}
		t, ok := timeCol.Values[i].(time.Time)
		if !ok {
			return nil, &ModifierError{Kind: TypeMismatch, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Modifier: "seasonality", Detail: "time_column value is not a timestamp"}
		}

		key := seasonalityBucketKey(dimension, t)
		multiplier := 1.0
		if m, ok := weights[key]; ok {
			multiplier = m
		}
		out[i] = f * multiplier
	}
	return out, nil
}

// normalizeSeasonalityWeights rescales the declared bucket weights so
// their mean is 1 (spec section 4.4: "mean of weights is forced to
// ≈1 by normalization"), so a seasonality modifier reshapes a column's
// distribution across buckets without silently inflating or deflating
// its overall scale.
func normalizeSeasonalityWeights(raw map[string]interface{}, ctx gencontext.Context) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	sum := 0.0
	for k, v := range raw {
		f, ok := toFloat(v)
		if !ok || f < 0 {
			return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Modifier: "seasonality", Detail: "bucket weights must be non-negative numbers"}
		}
		out[k] = f
		sum += f
	}
	mean := sum / float64(len(out))
	if mean <= 0 {
		return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "seasonality", Detail: "bucket weights cannot all be zero"}
	}
	for k, f := range out {
		out[k] = f / mean
	}
	return out, nil
}

func seasonalityBucketKey(dimension string, t time.Time) string {
	switch dimension {
	case "hour":
		return fmt.Sprintf("%d", t.Hour())
	case "month":
		return fmt.Sprintf("%d", int(t.Month())-1)
	default: // dow, Monday=0
		return fmt.Sprintf("%d", (int(t.Weekday())+6)%7)
	}
}
