package modifiers

import (
	"fmt"

	"github.com/datagen-io/datagen/internal/gencontext"
)

// applyMapValues rewrites each value through a fixed lookup table,
// passing values with no matching key through unchanged unless a
// "default" is declared.
func applyMapValues(args map[string]interface{}, values []interface{}, ctx gencontext.Context) ([]interface{}, error) {
	mapping, ok := args["mapping"].(map[string]interface{})
	if !ok || len(mapping) == 0 {
		return nil, &ModifierError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Modifier: "map_values", Detail: "mapping must be a non-empty key/value table"}
	}
	defaultValue, hasDefault := args["default"]

	out := make([]interface{}, len(values))
	for i, v := range values {
		key := fmt.Sprintf("%v", v)
		if mapped, ok := mapping[key]; ok {
			out[i] = mapped
		} else if hasDefault {
			out[i] = defaultValue
		} else {
			out[i] = v
		}
	}
	return out, nil
}
