package generators

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/datagen-io/datagen/internal/gencontext"
)

// generateDatetimeSeries builds the set of candidate instants at the
// declared frequency within the dataset timeframe (or an explicit
// "within" override), weights each candidate by the product of every
// declared pattern's dimension bucket (composite multiplication across
// hour/dow/month per spec section 4.3), then samples row_count
// instants with replacement from that weighted grid using the same
// cumulative-weight sampler the choice generator uses. Uniform when no
// pattern is declared.
func generateDatetimeSeries(params map[string]interface{}, rowCount int, rng *rand.Rand, ctx gencontext.Context) ([]interface{}, error) {
	start, end, err := datetimeWindow(params, ctx)
	if err != nil {
		return nil, err
	}

	freqStr, _ := toString(params["freq"])
	step, err := parseFreq(freqStr)
	if err != nil {
		return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "datetime_series", Detail: err.Error()}
	}

	candidates := buildCandidates(start, end, step)
	if len(candidates) == 0 {
		return nil, &GeneratorError{Kind: EmptyDomain, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "datetime_series", Detail: "timeframe/freq produced no candidate instants"}
	}

	patterns, err := parsePatterns(params, ctx)
	if err != nil {
		return nil, err
	}

	weights := make([]float64, len(candidates))
	for i, c := range candidates {
		w := 1.0
		for _, p := range patterns {
			w *= p.weightFor(c)
		}
		weights[i] = w
	}

	cumulative := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		total += w
		cumulative[i] = total
	}
	if total <= 0 {
		return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "datetime_series", Detail: "pattern weights sum to zero"}
	}

	values := make([]interface{}, rowCount)
	for i := 0; i < rowCount; i++ {
		t := rng.Float64() * total
		idx := sampleCumulative(cumulative, t)
		values[i] = candidates[idx]
	}
	return values, nil
}

// datetimeWindow resolves the "within" parameter: either the literal
// string "timeframe" (the default, meaning the dataset's global
// window) or an explicit {start, end} override.
func datetimeWindow(params map[string]interface{}, ctx gencontext.Context) (time.Time, time.Time, error) {
	within := params["within"]
	if within == nil {
		if ctx.Start.IsZero() || ctx.End.IsZero() || !ctx.End.After(ctx.Start) {
			return time.Time{}, time.Time{}, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Generator: "datetime_series", Detail: "dataset timeframe is not set or is empty"}
		}
		return ctx.Start, ctx.End, nil
	}
	if s, ok := toString(within); ok {
		if s == "timeframe" || s == "" {
			if ctx.Start.IsZero() || ctx.End.IsZero() || !ctx.End.After(ctx.Start) {
				return time.Time{}, time.Time{}, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
					Generator: "datetime_series", Detail: "dataset timeframe is not set or is empty"}
			}
			return ctx.Start, ctx.End, nil
		}
		return time.Time{}, time.Time{}, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "datetime_series", Detail: "unknown within value: " + s}
	}
	m, ok := within.(map[string]interface{})
	if !ok {
		return time.Time{}, time.Time{}, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "datetime_series", Detail: "within must be \"timeframe\" or {start, end}"}
	}
	startStr, _ := toString(m["start"])
	endStr, _ := toString(m["end"])
	start, err1 := time.Parse(time.RFC3339, startStr)
	end, err2 := time.Parse(time.RFC3339, endStr)
	if err1 != nil || err2 != nil || !end.After(start) {
		return time.Time{}, time.Time{}, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "datetime_series", Detail: "within.start/within.end must be valid RFC3339 instants with end after start"}
	}
	return start, end, nil
}

// parseFreq accepts pandas-style frequency codes ("H", "D", "min"/"T",
// or "<n><unit>" like "15min") as well as Go duration strings ("1h30m")
// as a fallback, since the teacher's faker/config layer already leans
// on plain string knobs rather than a richer duration type.
func parseFreq(freq string) (time.Duration, error) {
	freq = strings.TrimSpace(freq)
	if freq == "" {
		return 0, fmt.Errorf("freq is required")
	}
	switch freq {
	case "H", "h":
		return time.Hour, nil
	case "D", "d":
		return 24 * time.Hour, nil
	case "min", "T":
		return time.Minute, nil
	case "S", "s":
		return time.Second, nil
	}

	i := 0
	for i < len(freq) && (freq[i] >= '0' && freq[i] <= '9') {
		i++
	}
	if i > 0 {
		n, err := strconv.Atoi(freq[:i])
		if err == nil && n > 0 {
			unit := freq[i:]
			switch unit {
			case "H", "h":
				return time.Duration(n) * time.Hour, nil
			case "D", "d":
				return time.Duration(n) * 24 * time.Hour, nil
			case "min", "T":
				return time.Duration(n) * time.Minute, nil
			case "S", "s":
				return time.Duration(n) * time.Second, nil
			}
		}
	}

	d, err := time.ParseDuration(freq)
	if err != nil {
		return 0, fmt.Errorf("unrecognized freq: %s", freq)
	}
	return d, nil
}

func buildCandidates(start, end time.Time, step time.Duration) []time.Time {
	if step <= 0 {
		return nil
	}
	n := int(end.Sub(start)/step) + 1
	if n <= 0 {
		return nil
	}
	candidates := make([]time.Time, 0, n)
	for t := start; !t.After(end); t = t.Add(step) {
		candidates = append(candidates, t)
	}
	return candidates
}

// pattern is one resolved {dimension, weights} declaration.
type pattern struct {
	dimension string // hour, dow, month
	weights   []float64
}

func (p pattern) weightFor(t time.Time) float64 {
	var bucket int
	switch p.dimension {
	case "hour":
		bucket = t.Hour()
	case "dow":
		bucket = (int(t.Weekday()) + 6) % 7 // Monday=0, matching spec scenario 4's "Mon=0"
	case "month":
		bucket = int(t.Month()) - 1
	default:
		return 1.0
	}
	if bucket < 0 || bucket >= len(p.weights) {
		return 1.0
	}
	return p.weights[bucket]
}

var patternDimensionSize = map[string]int{"hour": 24, "dow": 7, "month": 12}

func parsePatterns(params map[string]interface{}, ctx gencontext.Context) ([]pattern, error) {
	raw, ok := params["patterns"].([]interface{})
	if !ok {
		// A single inline pattern (not wrapped in a list) is accepted too.
		if single, ok := params["pattern"].(map[string]interface{}); ok {
			raw = []interface{}{single}
		}
	}

	var out []pattern
	for _, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Generator: "datetime_series", Detail: "each pattern must be an object with dimension and weights"}
		}
		dim, _ := toString(m["dimension"])
		size, known := patternDimensionSize[dim]
		if !known {
			return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Generator: "datetime_series", Detail: "unknown pattern dimension: " + dim}
		}
		weights, ok := floatSlice(m["weights"])
		if !ok || len(weights) != size {
			return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Generator: "datetime_series", Detail: fmt.Sprintf("dimension %s requires %d weights", dim, size)}
		}
		out = append(out, pattern{dimension: dim, weights: weights})
	}
	return out, nil
}

func floatSlice(v interface{}) ([]float64, bool) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]float64, len(raw))
	for i, r := range raw {
		f, ok := toFloat(r)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
