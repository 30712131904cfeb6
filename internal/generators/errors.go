package generators

import "fmt"

// GeneratorErrorKind classifies why a generator kind failed to produce
// a column.
type GeneratorErrorKind string

const (
	BadParameter GeneratorErrorKind = "BadParameter"
	// EmptyDomain marks a choice/enum_list/datetime_series generator
	// whose candidate set came out empty (spec section 4.3's EmptyDomain).
	EmptyDomain GeneratorErrorKind = "EmptyDomain"
	// ReferenceUnresolved marks a choice/faker generator whose
	// referenced table or column does not exist. The lookup generator
	// reports this case as a LookupError and the expression generator
	// as EvalFailure.
	ReferenceUnresolved GeneratorErrorKind = "ReferenceUnresolved"
	LookupFailure       GeneratorErrorKind = "LookupFailure"
	EvalFailure         GeneratorErrorKind = "EvalFailure"
	Cancelled           GeneratorErrorKind = "Cancelled"
)

// GeneratorError is raised when a generator kind cannot produce a
// value for a column, naming the node/column and the offending kind.
type GeneratorError struct {
	Kind      GeneratorErrorKind
	Node      string
	Column    string
	Generator string
	Detail    string
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("generator error [%s] at %s.%s (%s): %s", e.Kind, e.Node, e.Column, e.Generator, e.Detail)
}

// LookupError is raised specifically by the lookup generator kind when
// it cannot resolve a reference, kept distinct from GeneratorError per
// the error taxonomy in spec section 7 so callers can tell a bad
// reference apart from a bad parameter. Table/Keys/RowIndex are only
// populated for a failed "on" join (no parent row matched every join
// key for that row); a plain unkeyed lookup only fails via Detail.
type LookupError struct {
	Node     string
	Column   string
	From     string
	Table    string
	Keys     map[string]interface{}
	RowIndex int
	Detail   string
}

func (e *LookupError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("lookup error at %s.%s (from %s): no row in %s matches keys %v at row %d: %s",
			e.Node, e.Column, e.From, e.Table, e.Keys, e.RowIndex, e.Detail)
	}
	return fmt.Sprintf("lookup error at %s.%s (from %s): %s", e.Node, e.Column, e.From, e.Detail)
}
