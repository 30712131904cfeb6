package modifiers

import "github.com/datagen-io/datagen/internal/gencontext"

// applyMultiply scales every numeric value by a constant factor.
func applyMultiply(args map[string]interface{}, values []interface{}, ctx gencontext.Context) ([]interface{}, error) {
	factor, ok := toFloat(args["factor"])
	if !ok {
		return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "multiply", Detail: "factor must be numeric"}
	}

	out := make([]interface{}, len(values))
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, &ModifierError{Kind: TypeMismatch, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Modifier: "multiply", Detail: "value is not numeric"}
		}
		out[i] = f * factor
	}
	return out, nil
}
