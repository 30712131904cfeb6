package modifiers

import (
	"math/rand/v2"

	"github.com/datagen-io/datagen/internal/gencontext"
)

// applyJitter adds independent Gaussian noise with the declared
// standard deviation to every numeric value.
func applyJitter(args map[string]interface{}, values []interface{}, rng *rand.Rand, ctx gencontext.Context) ([]interface{}, error) {
	stddev, ok := toFloat(args["stddev"])
	if !ok || stddev < 0 {
		return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "jitter", Detail: "stddev must be a non-negative number"}
	}

	out := make([]interface{}, len(values))
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, &ModifierError{Kind: TypeMismatch, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Modifier: "jitter", Detail: "value is not numeric"}
		}
		out[i] = f + rng.NormFloat64()*stddev
	}
	return out, nil
}
