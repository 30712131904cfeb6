package modifiers

import "fmt"

// ModifierErrorKind classifies why a modifier kind failed to apply.
type ModifierErrorKind string

const (
	BadParameter   ModifierErrorKind = "BadParameter"
	TypeMismatch   ModifierErrorKind = "TypeMismatch"
	EffectJoinFail ModifierErrorKind = "EffectJoinFail"
)

// ModifierError is raised when a modifier in a column's pipeline
// cannot be applied.
type ModifierError struct {
	Kind     ModifierErrorKind
	Node     string
	Column   string
	Modifier string
	Detail   string
}

func (e *ModifierError) Error() string {
	return fmt.Sprintf("modifier error [%s] at %s.%s (%s): %s", e.Kind, e.Node, e.Column, e.Modifier, e.Detail)
}
