package dataset

import "fmt"

// SchemaErrorKind classifies why parse_schema rejected a document.
type SchemaErrorKind string

const (
	UnknownField   SchemaErrorKind = "UnknownField"
	MissingField   SchemaErrorKind = "MissingField"
	TypeMismatch   SchemaErrorKind = "TypeMismatch"
	DuplicateId    SchemaErrorKind = "DuplicateId"
	BadReference   SchemaErrorKind = "BadReference"
	BadParameter   SchemaErrorKind = "BadParameter"
)

// SchemaError is raised only during parse_schema; it names the path in
// the document, the offending value, and a human explanation.
type SchemaError struct {
	Kind   SchemaErrorKind
	Path   string
	Value  interface{}
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("schema error [%s] at %s: %s (value: %v)", e.Kind, e.Path, e.Detail, e.Value)
	}
	return fmt.Sprintf("schema error [%s] at %s: %s", e.Kind, e.Path, e.Detail)
}

func newSchemaError(kind SchemaErrorKind, path, detail string, value interface{}) *SchemaError {
	return &SchemaError{Kind: kind, Path: path, Value: value, Detail: detail}
}
