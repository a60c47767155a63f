package infer

import (
	"github.com/metac-lang/metac/internal/compiler/model"
)

// SetConstraintsByProperty groups the set constraints by the class properties
type SetConstraintsByProperty struct {
	SetOfPrimitivesByProperty          map[*model.Property]*SetOfPrimitivesConstraint
	SetOfEnumerationLiteralsByProperty map[*model.Property]*SetOfEnumerationLiteralsConstraint
}

// IntersectSetOfPrimitivesConstraints computes the intersection over all the
// primitive set literals. A literal survives if it appears, by value, in
// every constraint of the list. The list must not be empty.
func IntersectSetOfPrimitivesConstraints(
	constraints []*SetOfPrimitivesConstraint,
) *SetOfPrimitivesConstraint {
	if len(constraints) == 0 {
		panic("expected at least one set-of-primitives constraint")
	}

	first := constraints[0]

	// Count in how many of the remaining constraints each candidate literal
	// appears; keep the ones seen in all of them.
	countByValue := make(map[interface{}]int, len(first.Literals))
	for _, literal := range first.Literals {
		countByValue[literal.Value] = 0
	}

	observed := 0
	for _, constraint := range constraints[1:] {
		for _, literal := range constraint.Literals {
			if _, ok := countByValue[literal.Value]; ok {
				countByValue[literal.Value]++
			}
		}
		observed++
	}

	intersection := make([]*model.PrimitiveSetLiteral, 0, len(first.Literals))
	for _, literal := range first.Literals {
		if countByValue[literal.Value] == observed {
			intersection = append(intersection, literal)
		}
	}

	return &SetOfPrimitivesConstraint{
		AType:    first.AType,
		Literals: intersection,
	}
}

// IntersectSetOfEnumerationLiteralsConstraints computes the intersection
// over all the enumeration literals. Literals are compared by their stable
// handle, not by value: two enumerations may coincidentally share a
// literal's underlying value. The list must not be empty and all the
// constraints must refer to the same enumeration.
func IntersectSetOfEnumerationLiteralsConstraints(
	constraints []*SetOfEnumerationLiteralsConstraint,
) *SetOfEnumerationLiteralsConstraint {
	if len(constraints) == 0 {
		panic("expected at least one set-of-enumeration-literals constraint")
	}

	first := constraints[0]

	countByHandle := make(map[int]int, len(first.Literals))
	for _, literal := range first.Literals {
		countByHandle[literal.Handle] = 0
	}

	observed := 0
	for _, constraint := range constraints[1:] {
		for _, literal := range constraint.Literals {
			if _, ok := countByHandle[literal.Handle]; ok {
				countByHandle[literal.Handle]++
			}
		}
		observed++
	}

	intersection := make([]*model.EnumerationLiteral, 0, len(first.Literals))
	for _, literal := range first.Literals {
		if countByHandle[literal.Handle] == observed {
			intersection = append(intersection, literal)
		}
	}

	return &SetOfEnumerationLiteralsConstraint{
		Enumeration: first.Enumeration,
		Literals:    intersection,
	}
}

// InferSetConstraintsFromInvariants matches all the named constant sets that
// a property needs to belong to.
//
// Even if a property is optional, the constraint is still inferred. The
// constraints are not exhaustive; only invariants involving constant sets
// are considered. All the errors of the class are collected before giving
// up on it.
func InferSetConstraintsFromInvariants(
	cls *model.Class,
	symbolTable *model.SymbolTable,
) (*SetConstraintsByProperty, []*Error) {
	var errors []*Error

	setsOfPrimitivesByProperty := make(map[*model.Property][]*SetOfPrimitivesConstraint)
	setsOfEnumLiteralsByProperty := make(map[*model.Property][]*SetOfEnumerationLiteralsConstraint)
	var propsInOrder []*model.Property

	observe := func(prop *model.Property) {
		_, inPrimitives := setsOfPrimitivesByProperty[prop]
		_, inEnumLiterals := setsOfEnumLiteralsByProperty[prop]
		if !inPrimitives && !inEnumLiterals {
			propsInOrder = append(propsInOrder, prop)
		}
	}

	for _, invariant := range cls.Invariants {
		// Only the genuine invariants of the class count here; the
		// ancestors' invariants are handled by the merge pass.
		if invariant.SpecifiedFor != model.Type(cls) {
			continue
		}

		// Match `not (self.something is not None) or self.something in X`
		node := invariant.Body
		if conditional := matchConditionalOnProp(invariant.Body); conditional != nil {
			node = conditional.consequent
		}

		// Match `self.something in X`, possibly inside a conjunction.
		var matches []*propNameInNamedContainer
		for _, value := range conjuncts(node) {
			if match := matchPropInNamedContainer(value); match != nil {
				matches = append(matches, match)
			}
		}

		for _, match := range matches {
			prop, ok := cls.PropertyByName(match.propName)
			if !ok {
				errors = append(errors, newError(
					ErrUnknownProperty, match.node.Member,
					"the property %s does not belong to the class %s",
					match.propName, cls.Name))
				continue
			}

			constant, ok := symbolTable.ConstantByName(match.containerName)
			if !ok {
				continue
			}

			typeAnnotation := model.BeneathOptional(prop.TypeAnnotation)

			switch container := constant.(type) {
			case *model.ConstantPrimitive:
				// A single primitive value is not a set-membership idiom.
				continue

			case *model.ConstantSetOfPrimitives:
				propPrimitiveType, ok := model.TryPrimitiveType(typeAnnotation)
				if !ok || propPrimitiveType != container.AType {
					errors = append(errors, newError(
						ErrSetOfPrimitivesTypeMismatch, match.node.Container,
						"the container is a constant set of %s's while the property %s in class %s has type %s",
						container.AType, prop.Name, cls.Name, prop.TypeAnnotation))
					continue
				}

				observe(prop)
				setsOfPrimitivesByProperty[prop] = append(
					setsOfPrimitivesByProperty[prop],
					&SetOfPrimitivesConstraint{
						AType:    container.AType,
						Literals: container.Literals,
					})

			case *model.ConstantSetOfEnumerationLiterals:
				ourType, ok := typeAnnotation.(*model.OurTypeAnnotation)
				if !ok || ourType.OurType != model.Type(container.Enumeration) {
					errors = append(errors, newError(
						ErrSetOfEnumLiteralsTypeMismatch, match.node.Container,
						"the container is a constant set of enumeration literals of %s while the property %s in class %s has type %s",
						container.Enumeration.Name, prop.Name, cls.Name,
						prop.TypeAnnotation))
					continue
				}

				observe(prop)
				setsOfEnumLiteralsByProperty[prop] = append(
					setsOfEnumLiteralsByProperty[prop],
					&SetOfEnumerationLiteralsConstraint{
						Enumeration: container.Enumeration,
						Literals:    container.Literals,
					})
			}
		}
	}

	if len(errors) > 0 {
		return nil, errors
	}

	result := &SetConstraintsByProperty{
		SetOfPrimitivesByProperty:          make(map[*model.Property]*SetOfPrimitivesConstraint),
		SetOfEnumerationLiteralsByProperty: make(map[*model.Property]*SetOfEnumerationLiteralsConstraint),
	}

	for _, prop := range propsInOrder {
		if constraints := setsOfPrimitivesByProperty[prop]; len(constraints) > 0 {
			result.SetOfPrimitivesByProperty[prop] =
				IntersectSetOfPrimitivesConstraints(constraints)
		}

		if constraints := setsOfEnumLiteralsByProperty[prop]; len(constraints) > 0 {
			result.SetOfEnumerationLiteralsByProperty[prop] =
				IntersectSetOfEnumerationLiteralsConstraints(constraints)
		}
	}

	return result, nil
}
