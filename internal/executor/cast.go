package executor

import (
	"fmt"
	"time"

	"github.com/datagen-io/datagen/internal/dataset"
)

// TypeCastErrorKind classifies why a generated value couldn't be cast
// to its column's declared type.
type TypeCastErrorKind string

const (
	UnsupportedCast TypeCastErrorKind = "UnsupportedCast"
	NullNotAllowed  TypeCastErrorKind = "NullNotAllowed"
)

// TypeCastError is raised when the executor's final cast pass can't
// coerce a modifier pipeline's output into the column's declared type.
type TypeCastError struct {
	Kind   TypeCastErrorKind
	Node   string
	Column string
	Type   dataset.ColumnType
	Value  interface{}
}

func (e *TypeCastError) Error() string {
	return fmt.Sprintf("type cast error [%s] at %s.%s: cannot cast %v (%T) to %s", e.Kind, e.Node, e.Column, e.Value, e.Value, e.Type)
}

// castColumn converts each value to col.Type, leaving nil (SQL NULL)
// values untouched as long as the column is nullable.
func castColumn(nodeID string, col *dataset.Column, values []interface{}) ([]interface{}, error) {
	out := make([]interface{}, len(values))
	for i, v := range values {
		if v == nil {
			if !col.Nullable {
				return nil, &TypeCastError{Kind: NullNotAllowed, Node: nodeID, Column: col.Name, Type: col.Type, Value: v}
			}
			out[i] = nil
			continue
		}

		cast, ok := castValue(col.Type, v)
		if !ok {
			return nil, &TypeCastError{Kind: UnsupportedCast, Node: nodeID, Column: col.Name, Type: col.Type, Value: v}
		}
		out[i] = cast
	}
	return out, nil
}

func castValue(typ dataset.ColumnType, v interface{}) (interface{}, bool) {
	switch typ {
	case dataset.TypeInt:
		switch n := v.(type) {
		case int64:
			return n, true
		case int:
			return int64(n), true
		case float64:
			return int64(n), true
		}
	case dataset.TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, true
		case int64:
			return float64(n), true
		case int:
			return float64(n), true
		}
	case dataset.TypeString:
		switch n := v.(type) {
		case string:
			return n, true
		default:
			return fmt.Sprintf("%v", n), true
		}
	case dataset.TypeBool:
		if b, ok := v.(bool); ok {
			return b, true
		}
	case dataset.TypeDate, dataset.TypeDatetime:
		if t, ok := v.(time.Time); ok {
			if typ == dataset.TypeDate {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), true
			}
			return t, true
		}
	}
	return nil, false
}
