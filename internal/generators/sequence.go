package generators

import "github.com/datagen-io/datagen/internal/gencontext"

// generateSequence produces start, start+step, start+2*step, ... with
// no randomness, mirroring spec section 4.3's sequence kind.
func generateSequence(params map[string]interface{}, rowCount int, ctx gencontext.Context) ([]interface{}, error) {
	start, ok := toFloat(params["start"])
	if !ok {
		return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "sequence", Detail: "start must be numeric"}
	}
	step, ok := toFloat(params["step"])
	if !ok {
		return nil, &GeneratorError{Kind: BadParameter, Node: ctx.Node.ID, Column: ctx.Column.Name,
			Generator: "sequence", Detail: "step must be numeric"}
	}

	isInt := isWholeNumber(start) && isWholeNumber(step)

	values := make([]interface{}, rowCount)
	for i := 0; i < rowCount; i++ {
		v := start + step*float64(i)
		if isInt {
			values[i] = int64(v)
		} else {
			values[i] = v
		}
	}
	return values, nil
}

func isWholeNumber(f float64) bool {
	return f == float64(int64(f))
}
