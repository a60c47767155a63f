package infer

import (
	"fmt"

	"github.com/metac-lang/metac/internal/compiler/model"
)

// InferLenConstraintsByConstrainedPrimitive infers the constraints on
// `len(self)` of all the constrained primitives.
//
// Two passes: the first infers every primitive's own constraint, the second
// walks the primitives in topological order and narrows each one's bounds
// with the already-narrowed bounds of its ancestors. A descendant must
// satisfy all the ancestor constraints on top of its own.
func InferLenConstraintsByConstrainedPrimitive(
	symbolTable *model.SymbolTable,
) (map[*model.ConstrainedPrimitive]*LenConstraint, []*Error) {
	var errors []*Error

	firstPass := make(map[*model.ConstrainedPrimitive]*LenConstraint)

	for _, constrainedPrimitive := range symbolTable.ConstrainedPrimitives() {
		lenConstraint, lenErrors := InferLenConstraintOfSelf(constrainedPrimitive)
		if lenErrors != nil {
			errors = append(errors, lenErrors...)
			continue
		}

		firstPass[constrainedPrimitive] = lenConstraint
	}

	if len(errors) > 0 {
		return nil, errors
	}

	secondPass := make(map[*model.ConstrainedPrimitive]*LenConstraint)

	for _, ourType := range symbolTable.TypesTopologicallySorted {
		constrainedPrimitive, ok := ourType.(*model.ConstrainedPrimitive)
		if !ok {
			continue
		}

		// Copy so that the narrowing of a descendant never touches the
		// ancestor's finalized bounds.
		lenConstraint := firstPass[constrainedPrimitive].Copy()

		for _, inheritance := range constrainedPrimitive.Inheritances {
			inherited, ok := secondPass[inheritance]
			if !ok {
				panic(fmt.Sprintf(
					"expected topological order: %s processed before its parent %s",
					constrainedPrimitive.Name, inheritance.Name))
			}

			lenConstraint.MinValue = maxWithNil(
				lenConstraint.MinValue, inherited.MinValue)
			lenConstraint.MaxValue = minWithNil(
				lenConstraint.MaxValue, inherited.MaxValue)
		}

		secondPass[constrainedPrimitive] = lenConstraint
	}

	return secondPass, nil
}

// InferPatternConstraintsByConstrainedPrimitive infers the pattern
// constraints of all the constrained strings.
//
// Two passes like the length inference: own patterns first, then the
// ancestors' already-stacked patterns are prepended in topological order.
func InferPatternConstraintsByConstrainedPrimitive(
	symbolTable *model.SymbolTable,
	verifications model.PatternVerificationsByName,
) map[*model.ConstrainedPrimitive][]PatternConstraint {
	firstPass := make(map[*model.ConstrainedPrimitive][]PatternConstraint)

	for _, constrainedPrimitive := range symbolTable.ConstrainedPrimitives() {
		if constrainedPrimitive.Constrainee != model.Str {
			continue
		}

		firstPass[constrainedPrimitive] = InferPatternsOnSelf(
			constrainedPrimitive, verifications)
	}

	secondPass := make(map[*model.ConstrainedPrimitive][]PatternConstraint)

	for _, ourType := range symbolTable.TypesTopologicallySorted {
		constrainedPrimitive, ok := ourType.(*model.ConstrainedPrimitive)
		if !ok {
			continue
		}

		own, ok := firstPass[constrainedPrimitive]
		if !ok {
			continue
		}

		patterns := make([]PatternConstraint, 0, len(own))

		for _, inheritance := range constrainedPrimitive.Inheritances {
			inherited, ok := secondPass[inheritance]
			if !ok {
				panic(fmt.Sprintf(
					"expected topological order: %s processed before its parent %s",
					constrainedPrimitive.Name, inheritance.Name))
			}

			patterns = append(patterns, inherited...)
		}

		patterns = append(patterns, own...)

		secondPass[constrainedPrimitive] = patterns
	}

	return secondPass
}

// InferConstraintsByClass infers the constraints of every class from its own
// invariants and in-lines the constraints of constrained primitives on the
// class that defines the property.
//
// The in-lining is skipped in descendant classes to avoid repeating the same
// constraints in the schemas; schema engines stack inherited constraints
// structurally. For consumers without such stacking, see
// MergeConstraintsWithAncestors.
//
// A class with any error does not get a result, but the inference of the
// other classes proceeds so that all the errors are reported in one run. If
// any class failed, no result is returned at all: valid and invalid per-class
// results must never be mixed.
func InferConstraintsByClass(
	symbolTable *model.SymbolTable,
) (map[*model.Class]*ConstraintsByProperty, []*Error) {
	var errors []*Error

	verifications := model.MapPatternVerificationsByName(symbolTable.Verifications)

	lenByConstrainedPrimitive, lenErrors :=
		InferLenConstraintsByConstrainedPrimitive(symbolTable)
	if lenErrors != nil {
		return nil, lenErrors
	}

	patternsByConstrainedPrimitive := InferPatternConstraintsByConstrainedPrimitive(
		symbolTable, verifications)

	result := make(map[*model.Class]*ConstraintsByProperty)

	for _, cls := range symbolTable.Classes() {
		lenFromInvariants, classLenErrors := LenConstraintsFromInvariants(cls)
		if classLenErrors != nil {
			errors = append(errors, classLenErrors...)
			continue
		}

		patternsFromInvariants := PatternsFromInvariants(cls, verifications)

		constraints := newConstraintsByProperty()
		classFailed := false

		for _, prop := range cls.Properties {
			typeAnnotation := model.BeneathOptional(prop.TypeAnnotation)

			var fromType *LenConstraint
			fromInvariants := lenFromInvariants[prop]

			if ourType, ok := typeAnnotation.(*model.OurTypeAnnotation); ok {
				constrainedPrimitive, isConstrained :=
					ourType.OurType.(*model.ConstrainedPrimitive)
				if isConstrained && prop.SpecifiedFor == cls {
					fromType = lenByConstrainedPrimitive[constrainedPrimitive]
				}
			}

			// Both the type constraint and the invariants need to hold, so
			// the bounds are narrowed to the stricter ones.
			switch {
			case fromType == nil && fromInvariants == nil:
				// Nothing inferred for this property.

			case fromType != nil && fromInvariants == nil:
				if fromType.MinValue != nil || fromType.MaxValue != nil {
					constraints.SetLenConstraint(prop, fromType)
				}

			case fromType == nil && fromInvariants != nil:
				if fromInvariants.MinValue != nil || fromInvariants.MaxValue != nil {
					constraints.SetLenConstraint(prop, fromInvariants)
				}

			default:
				minValue := maxWithNil(fromType.MinValue, fromInvariants.MinValue)
				maxValue := minWithNil(fromType.MaxValue, fromInvariants.MaxValue)

				if minValue != nil && maxValue != nil && *minValue > *maxValue {
					errors = append(errors, newError(
						ErrContradictoryLenBounds, nil,
						"the inferred minimum and maximum value on len(.) of the property %s of the class %s is contradictory: minimum = %d, maximum = %d; please check the invariants and any involved constrained primitives",
						prop.Name, cls.Name, *minValue, *maxValue))
					classFailed = true
					continue
				}

				if minValue != nil || maxValue != nil {
					constraints.SetLenConstraint(prop, &LenConstraint{
						MinValue: minValue, MaxValue: maxValue})
				}
			}
		}

		for _, prop := range cls.Properties {
			typeAnnotation := model.BeneathOptional(prop.TypeAnnotation)

			var fromType []PatternConstraint
			fromInvariants := patternsFromInvariants[prop]

			if ourType, ok := typeAnnotation.(*model.OurTypeAnnotation); ok {
				constrainedPrimitive, isConstrained :=
					ourType.OurType.(*model.ConstrainedPrimitive)
				if isConstrained && prop.SpecifiedFor == cls {
					fromType = patternsByConstrainedPrimitive[constrainedPrimitive]
				}
			}

			merged := make([]PatternConstraint, 0, len(fromType)+len(fromInvariants))
			merged = append(merged, fromType...)
			merged = append(merged, fromInvariants...)

			if len(merged) > 0 {
				constraints.SetPatterns(prop, merged)
			}
		}

		setConstraints, setErrors := InferSetConstraintsFromInvariants(cls, symbolTable)
		if setErrors != nil {
			errors = append(errors, setErrors...)
			continue
		}

		for _, prop := range cls.Properties {
			if constraint, ok := setConstraints.SetOfPrimitivesByProperty[prop]; ok {
				constraints.SetSetOfPrimitives(prop, constraint)
			}
			if constraint, ok := setConstraints.SetOfEnumerationLiteralsByProperty[prop]; ok {
				constraints.SetSetOfEnumerationLiterals(prop, constraint)
			}
		}

		if classFailed {
			continue
		}

		result[cls] = constraints
	}

	if len(errors) > 0 {
		return nil, errors
	}

	return result, nil
}

// MergeConstraintsWithAncestors merges the constraints of every class with
// the constraints of all its ancestors.
//
// Schemas usually should not inherit the constraints explicitly, as most
// schema engines stack them for you. Flattened consumers, such as test-data
// generators, need one self-contained constraint set per class; they should
// use this function.
//
// Length constraints are merged by picking the smallest interval that fits;
// patterns are stacked, own first, then each ancestor's in declaration
// order. Contradictory merged bounds and empty merged sets are fatal since
// they imply that no instance can ever satisfy both the class's and an
// ancestor's invariants.
func MergeConstraintsWithAncestors(
	symbolTable *model.SymbolTable,
	constraintsByClass map[*model.Class]*ConstraintsByProperty,
) (map[*model.Class]*ConstraintsByProperty, *Error) {
	merged := make(map[*model.Class]*ConstraintsByProperty)

	for _, ourType := range symbolTable.TypesTopologicallySorted {
		cls, ok := ourType.(*model.Class)
		if !ok {
			continue
		}

		own := constraintsByClass[cls]
		result := newConstraintsByProperty()

		for _, prop := range cls.Properties {
			// Ancestors are finalized before their descendants due to the
			// topological order, so each parent lookup below is already a
			// fully merged constraint set.

			var lenConstraints []*LenConstraint

			if ownLen, ok := own.LenConstraintsByProperty[prop]; ok {
				lenConstraints = append(lenConstraints, ownLen)
			}

			for _, parent := range cls.Inheritances {
				if parentLen, ok := merged[parent].LenConstraintsByProperty[prop]; ok {
					lenConstraints = append(lenConstraints, parentLen)
				}
			}

			var minValue, maxValue *int
			for _, lenConstraint := range lenConstraints {
				minValue = maxWithNil(minValue, lenConstraint.MinValue)
				maxValue = minWithNil(maxValue, lenConstraint.MaxValue)
			}

			if minValue != nil && maxValue != nil && *minValue > *maxValue {
				return nil, newError(
					ErrContradictoryMergedLenBounds, nil,
					"could not stack the length constraints on the property %s of the class %s as they are contradicting: min_value == %d and max_value == %d; please check the invariants and the invariants of all the ancestors",
					prop.Name, cls.Name, *minValue, *maxValue)
			}

			if minValue != nil || maxValue != nil {
				result.SetLenConstraint(prop, &LenConstraint{
					MinValue: minValue, MaxValue: maxValue})
			}

			var patterns []PatternConstraint
			ownPatternSet := make(map[string]bool)

			if ownPatterns, ok := own.PatternsByProperty[prop]; ok {
				patterns = append(patterns, ownPatterns...)
				for _, pattern := range ownPatterns {
					ownPatternSet[pattern.Pattern] = true
				}
			}

			for _, parent := range cls.Inheritances {
				for _, parentPattern := range merged[parent].PatternsByProperty[prop] {
					// An inherited constrained primitive would otherwise
					// contribute the same pattern twice: once through the
					// parent and once through the in-lined primitive.
					if !ownPatternSet[parentPattern.Pattern] {
						patterns = append(patterns, parentPattern)
					}
				}
			}

			if len(patterns) > 0 {
				result.SetPatterns(prop, patterns)
			}

			var setsOfPrimitives []*SetOfPrimitivesConstraint

			if ownSet, ok := own.SetOfPrimitivesByProperty[prop]; ok {
				setsOfPrimitives = append(setsOfPrimitives, ownSet)
			}

			for _, parent := range cls.Inheritances {
				if parentSet, ok := merged[parent].SetOfPrimitivesByProperty[prop]; ok {
					setsOfPrimitives = append(setsOfPrimitives, parentSet)
				}
			}

			if len(setsOfPrimitives) > 0 {
				result.SetSetOfPrimitives(prop,
					IntersectSetOfPrimitivesConstraints(setsOfPrimitives))
			}

			var setsOfEnumLiterals []*SetOfEnumerationLiteralsConstraint

			if ownSet, ok := own.SetOfEnumerationLiteralsByProperty[prop]; ok {
				setsOfEnumLiterals = append(setsOfEnumLiterals, ownSet)
			}

			for _, parent := range cls.Inheritances {
				if parentSet, ok := merged[parent].SetOfEnumerationLiteralsByProperty[prop]; ok {
					setsOfEnumLiterals = append(setsOfEnumLiterals, parentSet)
				}
			}

			if len(setsOfEnumLiterals) > 0 {
				result.SetSetOfEnumerationLiterals(prop,
					IntersectSetOfEnumerationLiteralsConstraints(setsOfEnumLiterals))
			}
		}

		merged[cls] = result
	}

	for _, ourType := range symbolTable.TypesTopologicallySorted {
		cls, ok := ourType.(*model.Class)
		if !ok {
			continue
		}

		constraints := merged[cls]
		for _, prop := range constraints.Properties {
			if setOfPrimitives, ok := constraints.SetOfPrimitivesByProperty[prop]; ok {
				if len(setOfPrimitives.Literals) == 0 {
					return nil, newError(
						ErrEmptyMergedSet, nil,
						"the property %s of the class %s is constrained to an empty set of primitive literals",
						prop.Name, cls.Name)
				}
			}

			if setOfEnumLiterals, ok := constraints.SetOfEnumerationLiteralsByProperty[prop]; ok {
				if len(setOfEnumLiterals.Literals) == 0 {
					return nil, newError(
						ErrEmptyMergedSet, nil,
						"the property %s of the class %s is constrained to an empty set of enumeration literals",
						prop.Name, cls.Name)
				}
			}
		}
	}

	return merged, nil
}
