package generators

import "github.com/datagen-io/datagen/internal/gencontext"

// generateEnumList emits a fixed literal list (spec section 4.3's
// enum_list kind), one value per row in declared order. Vocab nodes
// set their row count to len(values) during parsing, so in the common
// case rowCount equals len(values) exactly; a mismatch cycles the list
// rather than failing, so the same generator also serves an entity or
// fact column that merely wants to cycle a short fixed list.
func generateEnumList(params map[string]interface{}, rowCount int, ctx gencontext.Context) ([]interface{}, error) {
	raw, ok := params["values"].([]interface{})
	if !ok {
		return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "enum_list", Detail: "values must be a non-empty list"}
	}
	if len(raw) == 0 {
		return nil, &GeneratorError{Kind: EmptyDomain, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "enum_list", Detail: "values must be a non-empty list"}
	}

	values := make([]interface{}, rowCount)
	for i := 0; i < rowCount; i++ {
		values[i] = raw[i%len(raw)]
	}
	return values, nil
}
