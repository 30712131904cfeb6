// Package modifiers implements the nine-member modifier pipeline sum
// type, dispatched the same tagged-variant way as internal/generators:
// a switch over dataset.ModifierKind rather than an open plugin
// registry, so the pipeline stays exhaustive and each kind's behavior
// lives in its own file beside the dispatch.
//
// Every modifier takes the column's current values and returns the
// next stage's values; the executor threads a column through its
// declared Modifiers slice in document order before casting to the
// column's final type.
package modifiers

import (
	"math/rand/v2"

	"github.com/datagen-io/datagen/internal/dataset"
	"github.com/datagen-io/datagen/internal/gencontext"
)

// Apply dispatches to the implementation for spec.Kind and returns the
// transformed values.
func Apply(spec dataset.ModifierSpec, values []interface{}, rng *rand.Rand, ctx gencontext.Context) ([]interface{}, error) {
	switch spec.Kind {
	case dataset.ModMultiply:
		return applyMultiply(spec.Args, values, ctx)
	case dataset.ModAdd:
		return applyAdd(spec.Args, values, ctx)
	case dataset.ModClamp:
		return applyClamp(spec.Args, values, ctx)
	case dataset.ModJitter:
		return applyJitter(spec.Args, values, rng, ctx)
	case dataset.ModMapValues:
		return applyMapValues(spec.Args, values, ctx)
	case dataset.ModSeasonality:
		return applySeasonality(spec.Args, values, ctx)
	case dataset.ModTimeJitter:
		return applyTimeJitter(spec.Args, values, rng, ctx)
	case dataset.ModEffect:
		return applyEffect(spec.Args, values, ctx)
	case dataset.ModOutliers:
		return applyOutliers(spec.Args, values, rng, ctx)
	default:
		return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: string(spec.Kind), Detail: "unknown modifier kind reached dispatch"}
	}
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
	default:
		return 0, false
	}
}
