package modifiers

import "github.com/datagen-io/datagen/internal/gencontext"

// applyAdd shifts every numeric value by a constant amount.
func applyAdd(args map[string]interface{}, values []interface{}, ctx gencontext.Context) ([]interface{}, error) {
	amount, ok := toFloat(args["amount"])
	if !ok {
		return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "add", Detail: "amount must be numeric"}
	}

	out := make([]interface{}, len(values))
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, &ModifierError{Kind: TypeMismatch, Node: ctx.Node.ID, Column: ctx.Column.Name,
				Modifier: "add", Detail: "value is not numeric"}
		}
		out[i] = f + amount
	}
	return out, nil
}
