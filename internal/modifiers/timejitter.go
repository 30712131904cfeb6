package modifiers

import (
	"math/rand/v2"
	"time"

	"github.com/datagen-io/datagen/internal/gencontext"
)

// applyTimeJitter perturbs a datetime column by Gaussian noise in
// seconds, clamping any result outside the dataset timeframe to the
// nearer boundary rather than resampling. A resample loop would need
// an unbounded retry under adversarial stddev/timeframe combinations;
// clamping keeps the operation single-pass and deterministic.
func applyTimeJitter(args map[string]interface{}, values []interface{}, rng *rand.Rand, ctx gencontext.Context) ([]interface{}, error) {
	stddevSeconds, ok := toFloat(args["stddev_seconds"])
	if !ok || stddevSeconds < 0 {
		return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "time_jitter", Detail: "stddev_seconds must be a non-negative number"}
	}

	out := make([]interface{}, len(values))
	for i, v := range values {
		t, ok := v.(time.Time)
		if !ok {
			return nil, &ModifierError{Kind: TypeMismatch, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Modifier: "time_jitter", Detail: "value is not a timestamp"}
		}
		offset := time.Duration(rng.NormFloat64() * stddevSeconds * float64(time.Second))
		jittered := t.Add(offset)
		if !ctx.Start.IsZero() && jittered.Before(ctx.Start) {
			jittered = ctx.Start
		}
		if !ctx.End.IsZero() && jittered.After(ctx.End) {
			jittered = ctx.End
		}
		out[i] = jittered
	}
	return out, nil
}
