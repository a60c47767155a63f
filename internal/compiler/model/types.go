package model

import "fmt"

// PrimitiveType enumerates the primitive types of the meta-model
type PrimitiveType int

const (
	Bool PrimitiveType = iota
	Int
	Float
	Str
	ByteArray
)

// String returns the source form of the primitive type
func (p PrimitiveType) String() string {
	switch p {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		return "str"
	case ByteArray:
		return "bytearray"
	default:
		return "unknown"
	}
}

// TypeAnnotation is the interface for all property type annotations
type TypeAnnotation interface {
	typeAnnotation()
	String() string
}

// PrimitiveTypeAnnotation annotates a property with a primitive type
type PrimitiveTypeAnnotation struct {
	AType PrimitiveType
}

func (p *PrimitiveTypeAnnotation) typeAnnotation() {}

func (p *PrimitiveTypeAnnotation) String() string {
	return p.AType.String()
}

// OurTypeAnnotation annotates a property with a type of the meta-model:
// an enumeration, a constrained primitive or a class.
type OurTypeAnnotation struct {
	OurType Type
}

func (o *OurTypeAnnotation) typeAnnotation() {}

func (o *OurTypeAnnotation) String() string {
	return o.OurType.TypeName()
}

// ListTypeAnnotation annotates a property as a list of items
type ListTypeAnnotation struct {
	Items TypeAnnotation
}

func (l *ListTypeAnnotation) typeAnnotation() {}

func (l *ListTypeAnnotation) String() string {
	return fmt.Sprintf("List[%s]", l.Items.String())
}

// OptionalTypeAnnotation wraps another annotation to mark the property optional
type OptionalTypeAnnotation struct {
	Value TypeAnnotation
}

func (o *OptionalTypeAnnotation) typeAnnotation() {}

func (o *OptionalTypeAnnotation) String() string {
	return fmt.Sprintf("Optional[%s]", o.Value.String())
}

// BeneathOptional unwraps the optional wrapper, if any.
// Constraints apply to the value of a property even when it is optional;
// cardinality is a separate concern.
func BeneathOptional(annotation TypeAnnotation) TypeAnnotation {
	if optional, ok := annotation.(*OptionalTypeAnnotation); ok {
		return optional.Value
	}
	return annotation
}

// TryPrimitiveType resolves the annotation to a primitive type, if possible.
// A constrained primitive resolves to its constrainee.
func TryPrimitiveType(annotation TypeAnnotation) (PrimitiveType, bool) {
	switch a := annotation.(type) {
	case *PrimitiveTypeAnnotation:
		return a.AType, true
	case *OurTypeAnnotation:
		if constrained, ok := a.OurType.(*ConstrainedPrimitive); ok {
			return constrained.Constrainee, true
		}
		return 0, false
	default:
		return 0, false
	}
}
