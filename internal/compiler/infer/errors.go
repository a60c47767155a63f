package infer

import (
	"fmt"

	"github.com/metac-lang/metac/internal/compiler/ast"
)

// ErrorCode represents a specific constraint inference error code
type ErrorCode string

const (
	// ErrContradictoryLenBounds indicates conflicting length bounds within one class.
	ErrContradictoryLenBounds ErrorCode = "INF101"
	// ErrContradictoryMergedLenBounds indicates length bounds that became contradictory after the ancestor merge.
	ErrContradictoryMergedLenBounds ErrorCode = "INF102"

	// ErrUnknownProperty indicates a matched idiom references a property not present on the class.
	ErrUnknownProperty ErrorCode = "INF200"

	// ErrSetOfPrimitivesTypeMismatch indicates a property type that differs from the constant set's primitive type.
	ErrSetOfPrimitivesTypeMismatch ErrorCode = "INF300"
	// ErrSetOfEnumLiteralsTypeMismatch indicates a property type that is not the constant set's enumeration.
	ErrSetOfEnumLiteralsTypeMismatch ErrorCode = "INF301"
	// ErrEmptyMergedSet indicates an ancestor merge that constrained a property to an empty set.
	ErrEmptyMergedSet ErrorCode = "INF302"
)

// Error represents a constraint inference error tied to the meta-model
// construct that caused it. Node points to the originating expression where
// one exists; it is nil for errors detected only during reduction or merge.
type Error struct {
	Code     ErrorCode
	Message  string
	Node     ast.ExprNode
	Location ast.SourceLocation
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Location.Line > 0 {
		return fmt.Sprintf("%d:%d: %s [%s]",
			e.Location.Line, e.Location.Column, e.Message, e.Code)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Code)
}

// newError creates an inference error attached to the given node
func newError(code ErrorCode, node ast.ExprNode, format string, args ...interface{}) *Error {
	err := &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Node:    node,
	}
	if node != nil {
		err.Location = node.Location()
	}
	return err
}
