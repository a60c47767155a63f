// Package infer derives machine-checkable schema constraints from the
// invariants of the meta-model: length bounds, regular-expression patterns
// and set-membership constraints.
//
// The inference recognizes a fixed vocabulary of syntactic idioms and is
// deliberately not exhaustive: an invariant outside the vocabulary simply
// contributes no constraint. The actual invariants may therefore be tighter
// than the inferred constraints, and consumers must not assume completeness.
package infer

import (
	"github.com/metac-lang/metac/internal/compiler/model"
)

// LenConstraint is the inferred constraint on the `len` of something.
// Both bounds are inclusive: MinValue <= len <= MaxValue; a nil bound is
// unconstrained on that side.
type LenConstraint struct {
	MinValue *int
	MaxValue *int
}

// Copy creates a copy of the constraint.
// Merge passes adjust bounds per branch and must not alias.
func (l *LenConstraint) Copy() *LenConstraint {
	result := &LenConstraint{}
	if l.MinValue != nil {
		value := *l.MinValue
		result.MinValue = &value
	}
	if l.MaxValue != nil {
		value := *l.MaxValue
		result.MaxValue = &value
	}
	return result
}

// PatternConstraint constrains a string to comply to a regular expression
type PatternConstraint struct {
	Pattern string
}

// SetOfPrimitivesConstraint constrains a property to a set of primitive
// literals, all of the same primitive type
type SetOfPrimitivesConstraint struct {
	AType    model.PrimitiveType
	Literals []*model.PrimitiveSetLiteral
}

// SetOfEnumerationLiteralsConstraint constrains a property to a subset of an
// enumeration's literals
type SetOfEnumerationLiteralsConstraint struct {
	Enumeration *model.Enumeration
	Literals    []*model.EnumerationLiteral
}

// ConstraintsByProperty represents all the inferred property constraints of
// a class. The constraints coming from constrained primitives are in-lined
// and hence also included.
//
// Properties lists the constrained properties in class declaration order so
// that diagnostics and dumps are reproducible; the maps are keyed by
// property identity.
type ConstraintsByProperty struct {
	Properties []*model.Property

	LenConstraintsByProperty           map[*model.Property]*LenConstraint
	PatternsByProperty                 map[*model.Property][]PatternConstraint
	SetOfPrimitivesByProperty          map[*model.Property]*SetOfPrimitivesConstraint
	SetOfEnumerationLiteralsByProperty map[*model.Property]*SetOfEnumerationLiteralsConstraint
}

// newConstraintsByProperty creates an empty aggregate
func newConstraintsByProperty() *ConstraintsByProperty {
	return &ConstraintsByProperty{
		LenConstraintsByProperty:           make(map[*model.Property]*LenConstraint),
		PatternsByProperty:                 make(map[*model.Property][]PatternConstraint),
		SetOfPrimitivesByProperty:          make(map[*model.Property]*SetOfPrimitivesConstraint),
		SetOfEnumerationLiteralsByProperty: make(map[*model.Property]*SetOfEnumerationLiteralsConstraint),
	}
}

// observeProperty records the property in the ordered list on first touch
func (c *ConstraintsByProperty) observeProperty(prop *model.Property) {
	_, inLen := c.LenConstraintsByProperty[prop]
	_, inPatterns := c.PatternsByProperty[prop]
	_, inPrimitives := c.SetOfPrimitivesByProperty[prop]
	_, inEnumLiterals := c.SetOfEnumerationLiteralsByProperty[prop]
	if !inLen && !inPatterns && !inPrimitives && !inEnumLiterals {
		c.Properties = append(c.Properties, prop)
	}
}

// SetLenConstraint records the length constraint for the property
func (c *ConstraintsByProperty) SetLenConstraint(prop *model.Property, constraint *LenConstraint) {
	c.observeProperty(prop)
	c.LenConstraintsByProperty[prop] = constraint
}

// SetPatterns records the pattern conjunction for the property
func (c *ConstraintsByProperty) SetPatterns(prop *model.Property, patterns []PatternConstraint) {
	c.observeProperty(prop)
	c.PatternsByProperty[prop] = patterns
}

// SetSetOfPrimitives records the primitive-set constraint for the property
func (c *ConstraintsByProperty) SetSetOfPrimitives(
	prop *model.Property, constraint *SetOfPrimitivesConstraint,
) {
	c.observeProperty(prop)
	c.SetOfPrimitivesByProperty[prop] = constraint
}

// SetSetOfEnumerationLiterals records the enumeration-set constraint for the property
func (c *ConstraintsByProperty) SetSetOfEnumerationLiterals(
	prop *model.Property, constraint *SetOfEnumerationLiteralsConstraint,
) {
	c.observeProperty(prop)
	c.SetOfEnumerationLiteralsByProperty[prop] = constraint
}

// maxWithNil returns the maximum of the two bounds, treating nil as absent
func maxWithNil(a, b *int) *int {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a > *b {
		return a
	}
	return b
}

// minWithNil returns the minimum of the two bounds, treating nil as absent
func minWithNil(a, b *int) *int {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a < *b {
		return a
	}
	return b
}

func intPtr(value int) *int {
	return &value
}
