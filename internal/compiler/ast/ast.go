// Package ast defines the expression tree for meta-model invariants.
// An invariant body is a boolean expression over the properties of a class or
// over `self` of a constrained primitive. The set of node kinds is closed:
// every consumer dispatches with an exhaustive type switch.
package ast

// SourceLocation tracks the position of an expression node in the model source
type SourceLocation struct {
	Line   int // Line number (1-indexed)
	Column int // Column number (1-indexed)
}

// ExprNode is the interface for all invariant expression nodes
type ExprNode interface {
	exprNode()
	Location() SourceLocation
}

// Comparator enumerates the comparison operators
type Comparator int

const (
	Lt Comparator = iota // <
	Le                   // <=
	Eq                   // ==
	Ne                   // !=
	Gt                   // >
	Ge                   // >=
)

// String returns the source form of the comparator
func (c Comparator) String() string {
	switch c {
	case Lt:
		return "<"
	case Le:
		return "<="
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return "unknown"
	}
}

// Flipped returns the comparator equivalent to swapping the two operands.
// For example, `C < x` holds exactly when `x > C`.
func (c Comparator) Flipped() Comparator {
	switch c {
	case Lt:
		return Gt
	case Le:
		return Ge
	case Gt:
		return Lt
	case Ge:
		return Le
	default:
		// == and != are symmetric.
		return c
	}
}
