package generators

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/datagen-io/datagen/internal/gencontext"
)

// generateChoice draws rowCount values from a fixed option list under
// one of four weighting schemes: uniform (default), explicit
// per-option weights, zipf@alpha rank weighting, and head_tail (a head
// share split uniformly, the remainder a Zipf-like tail with its own
// alpha). Spec section 6 encodes the non-uniform kinds as a single
// `weights_kind` string ("zipf@1.5", "head_tail@{0.6,1.5}") rather than
// separate fields, so that shape is parsed here rather than demanding
// the schema document spell out per-kind field names. Go's stdlib
// rand.Zipf requires its exponent parameter s > 1, but any alpha > 0
// must be accepted here, so a custom cumulative-weight sampler is used
// for every mode instead of mixing stdlib Zipf with hand-rolled
// weighting for the other three.
func generateChoice(params map[string]interface{}, rowCount int, rng *rand.Rand, ctx gencontext.Context) ([]interface{}, error) {
	raw, err := resolveChoices(params["choices"], ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, &GeneratorError{Kind: EmptyDomain, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "choice", Detail: "choices must be a non-empty list"}
	}

	spec, err := parseWeightsKind(params, ctx)
	if err != nil {
		return nil, err
	}

	weights, err := choiceWeights(spec, raw, params, ctx)
	if err != nil {
		return nil, err
	}

	cumulative := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		total += w
		cumulative[i] = total
	}

	values := make([]interface{}, rowCount)
	for i := 0; i < rowCount; i++ {
		t := rng.Float64() * total
		idx := sampleCumulative(cumulative, t)
		values[i] = raw[idx]
	}
	return values, nil
}

// resolveChoices accepts choices as an inline list or as a
// "table.column" string referencing an already-generated column (spec
// section 4.3: "choices (inline or referenced by table.column)"). A
// referenced column is read as-is, duplicates included, so a skewed
// parent distribution carries through to the choice unless weighted
// otherwise.
func resolveChoices(v interface{}, ctx gencontext.Context) ([]interface{}, error) {
	switch c := v.(type) {
	case []interface{}:
		return c, nil
	case string:
		tableName, columnName := splitRef(c)
		if tableName == "" || columnName == "" {
			return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Generator: "choice", Detail: "choices string must be of the form table.column"}
		}
		t, ok := ctx.Tables.ByName(tableName)
		if !ok {
			return nil, &GeneratorError{Kind: ReferenceUnresolved, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Generator: "choice", Detail: "choices references a table that has not been generated yet: " + tableName}
		}
		col, ok := t.ColumnByName(columnName)
		if !ok {
			return nil, &GeneratorError{Kind: ReferenceUnresolved, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Generator: "choice", Detail: "choices references a column not found on " + tableName + ": " + columnName}
		}
		return col.Values, nil
	default:
		return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "choice", Detail: "choices must be a non-empty list or a table.column reference"}
	}
}

// weightsKindSpec is the parsed form of a `weights_kind` string.
type weightsKindSpec struct {
	mode      string
	alpha     float64 // zipf
	headShare float64 // head_tail
	tailAlpha float64 // head_tail
}

// parseWeightsKind decodes the `weights_kind` field in the encoding
// documented by spec section 6: a bare name ("uniform", "explicit") or
// a "name@params" string, where params is either a single number
// (zipf) or a brace-enclosed pair (head_tail). A bare "mode" field is
// also accepted as a looser alias for schema authors who spell the
// kind and its numeric knobs as separate fields instead of the
// encoded string.
func parseWeightsKind(params map[string]interface{}, ctx gencontext.Context) (weightsKindSpec, error) {
	badParam := func(detail string) (weightsKindSpec, error) {
		return weightsKindSpec{}, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "choice", Detail: detail}
	}

	raw, hasKind := toString(params["weights_kind"])
	if !hasKind {
		raw, hasKind = toString(params["mode"])
	}
	if !hasKind || raw == "" {
		return weightsKindSpec{mode: "uniform"}, nil
	}

	name, rest, hasArgs := strings.Cut(raw, "@")
	switch name {
	case "uniform", "explicit":
		return weightsKindSpec{mode: name}, nil
	case "zipf":
		if alpha, ok := toFloat(params["alpha"]); ok {
			return weightsKindSpec{mode: "zipf", alpha: alpha}, nil
		}
		if !hasArgs {
			return badParam("zipf weights_kind requires an @alpha suffix")
		}
		alpha, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return badParam("zipf weights_kind alpha is not numeric: " + rest)
		}
		return weightsKindSpec{mode: "zipf", alpha: alpha}, nil
	case "head_tail":
		if hs, ok := toFloat(params["head_share"]); ok {
			ta, _ := toFloat(params["tail_alpha"])
			return weightsKindSpec{mode: "head_tail", headShare: hs, tailAlpha: ta}, nil
		}
		if !hasArgs {
			return badParam("head_tail weights_kind requires an @{head_share,tail_alpha} suffix")
		}
		pair := strings.TrimSuffix(strings.TrimPrefix(rest, "{"), "}")
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return badParam("head_tail weights_kind requires two comma-separated numbers: " + rest)
		}
		headShare, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		tailAlpha, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			return badParam("head_tail weights_kind values are not numeric: " + rest)
		}
		return weightsKindSpec{mode: "head_tail", headShare: headShare, tailAlpha: tailAlpha}, nil
	default:
		return badParam("unknown weights_kind: " + raw)
	}
}

func choiceWeights(spec weightsKindSpec, raw []interface{}, params map[string]interface{}, ctx gencontext.Context) ([]float64, error) {
	n := len(raw)
	weights := make([]float64, n)

	switch spec.mode {
	case "uniform":
		for i := range weights {
			weights[i] = 1
		}
	case "explicit":
		explicit, ok := params["weights"].([]interface{})
		if !ok || len(explicit) != n {
			return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Generator: "choice", Detail: "explicit mode requires one weight per choice"}
		}
		for i, w := range explicit {
			f, ok := toFloat(w)
			if !ok || f < 0 {
				return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
					Generator: "choice", Detail: "explicit weights must be non-negative numbers"}
			}
			weights[i] = f
		}
	case "zipf":
		if spec.alpha <= 0 {
			return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Generator: "choice", Detail: "zipf mode requires alpha > 0"}
		}
		for i := range weights {
			weights[i] = 1.0 / math.Pow(float64(i+1), spec.alpha)
		}
	case "head_tail":
		if spec.headShare <= 0 || spec.headShare >= 1 {
			return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Generator: "choice", Detail: "head_tail mode requires 0 < head_share < 1"}
		}
		headCount := int(math.Ceil(spec.headShare * float64(n)))
		if headCount < 1 {
			headCount = 1
		}
		if headCount >= n {
			headCount = n - 1
		}
		tailAlpha := spec.tailAlpha
		if tailAlpha <= 0 {
			tailAlpha = 1
		}
		headWeight := spec.headShare / float64(headCount)
		for i := 0; i < headCount; i++ {
			weights[i] = headWeight
		}
		tailMass := 1 - spec.headShare
		tailRaw := make([]float64, n-headCount)
		tailTotal := 0.0
		for i := range tailRaw {
			tailRaw[i] = 1.0 / math.Pow(float64(i+1), tailAlpha)
			tailTotal += tailRaw[i]
		}
		for i, w := range tailRaw {
			weights[headCount+i] = tailMass * w / tailTotal
		}
	default:
		return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "choice", Detail: "unknown choice mode: " + spec.mode}
	}
	return weights, nil
}

// sampleCumulative returns the first index whose cumulative weight
// exceeds t, shared by the choice and datetime_series generators so
// both read the same threshold convention.
func sampleCumulative(cumulative []float64, t float64) int {
	for i, c := range cumulative {
		if t < c {
			return i
		}
	}
	return len(cumulative) - 1
}
