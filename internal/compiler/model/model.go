// Package model defines the intermediate representation of the meta-model:
// classes with properties and invariants, enumerations, constrained
// primitives, module-level constants and pattern-verification functions.
// The loader builds a SymbolTable once; afterwards everything is read-only.
package model

import (
	"github.com/metac-lang/metac/internal/compiler/ast"
)

// Type is a named type of the meta-model: an enumeration, a constrained
// primitive or a class.
type Type interface {
	TypeName() string
}

// EnumerationLiteral is a single literal of an enumeration.
// The Handle is a stable integer assigned at model construction and is used
// as the identity key wherever literal identity (not value) matters: two
// enumerations may coincidentally share a literal's underlying value.
type EnumerationLiteral struct {
	Name   string
	Value  string
	Handle int
}

// Enumeration is a closed set of literals
type Enumeration struct {
	Name     string
	Literals []*EnumerationLiteral

	literalsByName map[string]*EnumerationLiteral
}

// TypeName returns the name of the enumeration.
func (e *Enumeration) TypeName() string { return e.Name }

// LiteralByName looks up a literal by its name
func (e *Enumeration) LiteralByName(name string) (*EnumerationLiteral, bool) {
	lit, ok := e.literalsByName[name]
	return lit, ok
}

// NewEnumeration creates an enumeration and indexes its literals by name.
// Literal handles are assigned later, once for the whole symbol table.
func NewEnumeration(name string, literals []*EnumerationLiteral) *Enumeration {
	byName := make(map[string]*EnumerationLiteral, len(literals))
	for _, lit := range literals {
		byName[lit.Name] = lit
	}
	return &Enumeration{
		Name:           name,
		Literals:       literals,
		literalsByName: byName,
	}
}

// Invariant is a boolean predicate attached to a class or a constrained
// primitive. SpecifiedFor references the type on which the invariant was
// textually declared, even when the invariant is enumerated through a
// descendant's inherited list.
type Invariant struct {
	Description  string
	Body         ast.ExprNode
	SpecifiedFor Type
}

// Property belongs to exactly one class. Properties are compared by pointer
// identity when used as map keys: two classes may have same-named but
// distinct properties.
type Property struct {
	Name           string
	TypeAnnotation TypeAnnotation
	SpecifiedFor   *Class
}

// Class is a class of the meta-model
type Class struct {
	Name string

	// Inheritances are the direct ancestors in declaration order.
	Inheritances []*Class

	// Properties lists own and inherited properties in declaration order.
	Properties []*Property

	// Invariants lists the inherited invariants followed by the own ones.
	// Use Invariant.SpecifiedFor to tell them apart.
	Invariants []*Invariant

	propertiesByName map[string]*Property
}

// TypeName returns the name of the class.
func (c *Class) TypeName() string { return c.Name }

// PropertyByName looks up a property by its name
func (c *Class) PropertyByName(name string) (*Property, bool) {
	prop, ok := c.propertiesByName[name]
	return prop, ok
}

// NewClass creates a class and indexes its properties by name
func NewClass(
	name string,
	inheritances []*Class,
	properties []*Property,
	invariants []*Invariant,
) *Class {
	byName := make(map[string]*Property, len(properties))
	for _, prop := range properties {
		byName[prop.Name] = prop
	}
	return &Class{
		Name:             name,
		Inheritances:     inheritances,
		Properties:       properties,
		Invariants:       invariants,
		propertiesByName: byName,
	}
}

// ConstrainedPrimitive is a primitive type refined by invariants on `self`
type ConstrainedPrimitive struct {
	Name         string
	Constrainee  PrimitiveType
	Inheritances []*ConstrainedPrimitive
	Invariants   []*Invariant
}

// TypeName returns the name of the constrained primitive.
func (c *ConstrainedPrimitive) TypeName() string { return c.Name }

// PrimitiveSetLiteral is a single literal of a constant set of primitives.
// Value is one of: bool, int64, float64, string; it is comparable and usable
// as a map key.
type PrimitiveSetLiteral struct {
	Value interface{}
	AType PrimitiveType
}

// Constant is a module-level named constant
type Constant interface {
	constant()
	ConstantName() string
}

// ConstantPrimitive is a single primitive value, e.g. a numeric limit
type ConstantPrimitive struct {
	Name  string
	AType PrimitiveType
	Value interface{}
}

func (c *ConstantPrimitive) constant() {}

// ConstantName returns the name of the constant.
func (c *ConstantPrimitive) ConstantName() string { return c.Name }

// ConstantSetOfPrimitives is a named set of primitive literals, all of AType
type ConstantSetOfPrimitives struct {
	Name     string
	AType    PrimitiveType
	Literals []*PrimitiveSetLiteral
}

func (c *ConstantSetOfPrimitives) constant() {}

// ConstantName returns the name of the constant.
func (c *ConstantSetOfPrimitives) ConstantName() string { return c.Name }

// ConstantSetOfEnumerationLiterals is a named subset of an enumeration's
// literals
type ConstantSetOfEnumerationLiterals struct {
	Name        string
	Enumeration *Enumeration
	Literals    []*EnumerationLiteral
}

func (c *ConstantSetOfEnumerationLiterals) constant() {}

// ConstantName returns the name of the constant.
func (c *ConstantSetOfEnumerationLiterals) ConstantName() string { return c.Name }

// PatternVerification is a verification function whose body is a single
// regular-expression match against its argument. The pattern is extracted
// once during model loading.
type PatternVerification struct {
	Name    string
	Pattern string
}

// PatternVerificationsByName maps pattern verifications by their function name
type PatternVerificationsByName map[string]*PatternVerification

// MapPatternVerificationsByName indexes the pattern verifications by name
func MapPatternVerificationsByName(
	verifications []*PatternVerification,
) PatternVerificationsByName {
	result := make(PatternVerificationsByName, len(verifications))
	for _, verification := range verifications {
		result[verification.Name] = verification
	}
	return result
}

// SymbolTable holds the finalized meta-model
type SymbolTable struct {
	// Types lists all named types in declaration order.
	Types []Type

	// TypesTopologicallySorted lists the types so that every ancestor
	// precedes all of its descendants. Computed once by Finalize.
	TypesTopologicallySorted []Type

	Constants     []Constant
	Verifications []*PatternVerification

	constantsByName map[string]Constant
}

// Classes returns the classes in declaration order
func (s *SymbolTable) Classes() []*Class {
	result := make([]*Class, 0, len(s.Types))
	for _, t := range s.Types {
		if cls, ok := t.(*Class); ok {
			result = append(result, cls)
		}
	}
	return result
}

// ConstrainedPrimitives returns the constrained primitives in declaration order
func (s *SymbolTable) ConstrainedPrimitives() []*ConstrainedPrimitive {
	result := make([]*ConstrainedPrimitive, 0, len(s.Types))
	for _, t := range s.Types {
		if primitive, ok := t.(*ConstrainedPrimitive); ok {
			result = append(result, primitive)
		}
	}
	return result
}

// ConstantByName looks up a module-level constant by its name
func (s *SymbolTable) ConstantByName(name string) (Constant, bool) {
	constant, ok := s.constantsByName[name]
	return constant, ok
}

// NewSymbolTable builds the symbol table and finalizes it: constants are
// indexed by name, enumeration literals receive their stable handles and
// the topological order over the inheritance DAG is computed.
func NewSymbolTable(
	types []Type,
	constants []Constant,
	verifications []*PatternVerification,
) (*SymbolTable, error) {
	constantsByName := make(map[string]Constant, len(constants))
	for _, constant := range constants {
		constantsByName[constant.ConstantName()] = constant
	}

	handle := 0
	for _, t := range types {
		enumeration, ok := t.(*Enumeration)
		if !ok {
			continue
		}
		for _, literal := range enumeration.Literals {
			literal.Handle = handle
			handle++
		}
	}

	sorted, err := TopologicalSort(types)
	if err != nil {
		return nil, err
	}

	return &SymbolTable{
		Types:                    types,
		TypesTopologicallySorted: sorted,
		Constants:                constants,
		Verifications:            verifications,
		constantsByName:          constantsByName,
	}, nil
}
