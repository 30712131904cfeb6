package modifiers

import (
	"math"
	"math/rand/v2"

	"github.com/datagen-io/datagen/internal/gencontext"
)

// applyOutliers replaces a declared share of values with either a
// spike (multiplied by a magnitude) or a drop (divided by it), the
// magnitude itself sampled per occurrence from a declared distribution
// (spec section 4.4), giving the validator's behavioral checks
// something to detect and the dataset a realistic long tail.
func applyOutliers(args map[string]interface{}, values []interface{}, rng *rand.Rand, ctx gencontext.Context) ([]interface{}, error) {
	rate, ok := toFloat(args["rate"])
	if !ok || rate < 0 || rate > 1 {
		return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "outliers", Detail: "rate must be between 0 and 1"}
	}
	magnitude, err := parseOutlierMagnitude(args, ctx)
	if err != nil {
		return nil, err
	}

	out := make([]interface{}, len(values))
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, &ModifierError{Kind: TypeMismatch, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Modifier: "outliers", Detail: "value is not numeric"}
		}
		if rng.Float64() < rate {
			m := sampleOutlierMagnitude(magnitude, rng)
			if rng.Float64() < 0.5 {
				f *= m // spike
			} else {
				f /= m // drop
			}
		}
		out[i] = f
	}
	return out, nil
}

// outlierMagnitude is the parsed form of the "magnitude" distribution
// declared on an outliers modifier.
type outlierMagnitude struct {
	kind string // "fixed", "uniform", "normal"
	a, b float64
}

// parseOutlierMagnitude reads a "magnitude" distribution object
// ({type: uniform, min, max} or {type: normal, mean, stddev}), falling
// back to a legacy bare "factor" number as a fixed magnitude for
// schema documents written before the declared-distribution form.
func parseOutlierMagnitude(args map[string]interface{}, ctx gencontext.Context) (outlierMagnitude, error) {
	badParam := func(detail string) (outlierMagnitude, error) {
		return outlierMagnitude{}, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "outliers", Detail: detail}
	}

	raw, ok := args["magnitude"].(map[string]interface{})
	if !ok {
		if factor, ok := toFloat(args["factor"]); ok {
			return outlierMagnitude{kind: "fixed", a: factor}, nil
		}
		return badParam("magnitude (a declared distribution) is required")
	}

	kind, _ := raw["type"].(string)
	if kind == "" {
		kind = "uniform"
	}
	switch kind {
	case "uniform":
		lo, _ := toFloat(raw["min"])
		hi, ok := toFloat(raw["max"])
		if !ok || hi <= lo {
			return badParam("uniform magnitude requires min < max")
		}
		return outlierMagnitude{kind: "uniform", a: lo, b: hi}, nil
	case "normal":
		mean, _ := toFloat(raw["mean"])
		stddev, ok := toFloat(raw["stddev"])
		if !ok || stddev < 0 {
			return badParam("normal magnitude requires non-negative stddev")
		}
		return outlierMagnitude{kind: "normal", a: mean, b: stddev}, nil
	default:
		return badParam("unknown magnitude distribution type: " + kind)
	}
}

// sampleOutlierMagnitude draws a single magnitude, floored well above
// zero so it can always be divided into for a drop.
func sampleOutlierMagnitude(m outlierMagnitude, rng *rand.Rand) float64 {
	var v float64
	switch m.kind {
	case "fixed":
		v = m.a
	case "normal":
		v = m.a + rng.NormFloat64()*m.b
	default: // uniform
		v = m.a + rng.Float64()*(m.b-m.a)
	}
	v = math.Abs(v)
	if v < 1e-6 {
		v = 1e-6
	}
	return v
}
