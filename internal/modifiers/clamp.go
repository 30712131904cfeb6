package modifiers

import "github.com/datagen-io/datagen/internal/gencontext"

// applyClamp bounds every numeric value to [min, max]. Either bound
// may be omitted to clamp one side only.
func applyClamp(args map[string]interface{}, values []interface{}, ctx gencontext.Context) ([]interface{}, error) {
	hasMin, min := false, 0.0
	if m, ok := toFloat(args["min"]); ok {
		hasMin, min = true, m
	}
	hasMax, max := false, 0.0
	if m, ok := toFloat(args["max"]); ok {
		hasMax, max = true, m
	}
	if !hasMin && !hasMax {
		return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "clamp", Detail: "at least one of min, max is required"}
	}

	out := make([]interface{}, len(values))
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, &ModifierError{Kind: TypeMismatch, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Modifier: "clamp", Detail: "value is not numeric"}
		}
		if hasMin && f < min {
			f = min
		}
		if hasMax && f > max {
			f = max
		}
		out[i] = f
	}
	return out, nil
}
