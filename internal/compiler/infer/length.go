package infer

import (
	"fmt"

	"github.com/metac-lang/metac/internal/compiler/ast"
	"github.com/metac-lang/metac/internal/compiler/model"
)

// lenBoundKind enumerates the directional length constraints as they are
// derived directly from single invariants, before reduction
type lenBoundKind int

const (
	minLength   lenBoundKind = iota // len >= value
	maxLength                       // len <= value
	exactLength                     // len == value
)

// directedLenConstraint is a single directional constraint together with the
// expression node it was derived from, for diagnostics
type directedLenConstraint struct {
	kind  lenBoundKind
	value int
	node  ast.ExprNode
}

// lenConstraintOnMemberOrName represents a match on an expression like
// `len(self.something) < 42` or `len(self) == 42`
type lenConstraintOnMemberOrName struct {
	memberOrName ast.ExprNode
	constraint   directedLenConstraint
}

// matchLenOnMemberOrName matches expressions like `len(self.something)`
// and returns the member or name the length is taken of. Any malformed
// `len` call, e.g. with two arguments, is not a match.
func matchLenOnMemberOrName(node ast.ExprNode) (ast.ExprNode, bool) {
	match := matchSingleArgFunctionOnMemberOrName(node)
	if match == nil {
		return nil, false
	}

	if match.functionName != "len" {
		return nil, false
	}

	return match.memberOrName, true
}

// classifyLenComparison translates a comparison with the constant on the
// right into a directional constraint. `len(x) != C` is intentionally
// dropped as there is no meaningful way to represent it simply in a schema.
func classifyLenComparison(
	op ast.Comparator, constant int64, node ast.ExprNode,
) (directedLenConstraint, bool) {
	value := int(constant)

	switch op {
	case ast.Lt:
		// len(x) < C
		return directedLenConstraint{kind: maxLength, value: value - 1, node: node}, true
	case ast.Le:
		// len(x) <= C
		return directedLenConstraint{kind: maxLength, value: value, node: node}, true
	case ast.Eq:
		// len(x) == C
		return directedLenConstraint{kind: exactLength, value: value, node: node}, true
	case ast.Gt:
		// len(x) > C
		return directedLenConstraint{kind: minLength, value: value + 1, node: node}, true
	case ast.Ge:
		// len(x) >= C
		return directedLenConstraint{kind: minLength, value: value, node: node}, true
	default:
		return directedLenConstraint{}, false
	}
}

// matchLenConstraintOnMemberOrName matches a constraint on the `len` of a
// member or a name, e.g. `len(self.something) < 42` or `42 < len(self)`.
// A left-constant form is algebraically flipped to the equivalent
// right-constant form before classification.
func matchLenConstraintOnMemberOrName(node ast.ExprNode) *lenConstraintOnMemberOrName {
	comparison, ok := node.(*ast.Comparison)
	if !ok {
		return nil
	}

	// len(self.something) OP 42
	if memberOrName, ok := matchLenOnMemberOrName(comparison.Left); ok {
		if constant, ok := matchIntConstant(comparison.Right); ok {
			constraint, ok := classifyLenComparison(comparison.Op, constant, node)
			if !ok {
				return nil
			}
			return &lenConstraintOnMemberOrName{
				memberOrName: memberOrName,
				constraint:   constraint,
			}
		}
	}

	// 42 OP len(self.something)
	if constant, ok := matchIntConstant(comparison.Left); ok {
		if memberOrName, ok := matchLenOnMemberOrName(comparison.Right); ok {
			constraint, ok := classifyLenComparison(
				comparison.Op.Flipped(), constant, node)
			if !ok {
				return nil
			}
			return &lenConstraintOnMemberOrName{
				memberOrName: memberOrName,
				constraint:   constraint,
			}
		}
	}

	return nil
}

// lenConstraintOnProperty represents a len constraint on a class property
type lenConstraintOnProperty struct {
	propName   string
	constraint directedLenConstraint
}

// matchLenConstraintOnProperty matches a len constraint on a property such
// as `len(self.something) < 42`
func matchLenConstraintOnProperty(node ast.ExprNode) *lenConstraintOnProperty {
	match := matchLenConstraintOnMemberOrName(node)
	if match == nil {
		return nil
	}

	propName, ok := matchProperty(match.memberOrName)
	if !ok {
		return nil
	}

	return &lenConstraintOnProperty{
		propName:   propName,
		constraint: match.constraint,
	}
}

// reduceLenConstraints reduces a list of directional constraints to a range
// that encompasses all of them. All contradictions are collected and
// reported together rather than stopping at the first.
func reduceLenConstraints(
	constraints []directedLenConstraint,
) (*LenConstraint, []string) {
	var minLen, maxLen, exactLen *int
	var errors []string

	for _, constraint := range constraints {
		value := constraint.value
		switch constraint.kind {
		case minLength:
			if minLen == nil || value > *minLen {
				minLen = intPtr(value)
			}
		case maxLength:
			if maxLen == nil || value < *maxLen {
				maxLen = intPtr(value)
			}
		case exactLength:
			if exactLen != nil && *exactLen != value {
				errors = append(errors, fmt.Sprintf(
					"the exact length, %d, contradicts another exactly expected length %d.",
					*exactLen, value))
			}
			exactLen = intPtr(value)
		}
	}

	if exactLen != nil {
		if minLen != nil && *minLen > *exactLen {
			errors = append(errors, fmt.Sprintf(
				"the minimum length, %d, contradicts the exactly expected length %d.",
				*minLen, *exactLen))
		}

		if maxLen != nil && *exactLen > *maxLen {
			errors = append(errors, fmt.Sprintf(
				"the maximum length, %d, contradicts the exactly expected length %d.",
				*maxLen, *exactLen))
		}
	}

	if minLen != nil && maxLen != nil && *minLen > *maxLen {
		errors = append(errors, fmt.Sprintf(
			"the minimum length, %d, contradicts the maximum length %d.",
			*minLen, *maxLen))
	}

	if len(errors) > 0 {
		return nil, errors
	}

	if exactLen != nil {
		minLen = intPtr(*exactLen)
		maxLen = intPtr(*exactLen)
	}

	return &LenConstraint{MinValue: minLen, MaxValue: maxLen}, nil
}

// LenConstraintsFromInvariants infers the constraints on `len` for every
// property of the class.
//
// Even if a property is optional, the constraint is still inferred: schemas
// separate value constraints from cardinality. The constraints are not
// exhaustive; only invariants involving integer constants are considered.
func LenConstraintsFromInvariants(
	cls *model.Class,
) (map[*model.Property]*LenConstraint, []*Error) {
	// A single pass over the invariants instead of one pass per property
	// keeps the time complexity linear.
	constraintsByPropName := make(map[string][]directedLenConstraint)
	var propNames []string

	var errors []*Error

	for _, invariant := range cls.Invariants {
		// Only the genuine invariants of the class count here; the
		// ancestors' invariants are handled by the merge pass.
		if invariant.SpecifiedFor != model.Type(cls) {
			continue
		}

		var match *lenConstraintOnProperty

		// Match `self.something is None or len(self.something) < X`
		if conditional := matchConditionalOnProp(invariant.Body); conditional != nil {
			match = matchLenConstraintOnProperty(conditional.consequent)
		} else {
			// Match `len(self.something) < X`
			match = matchLenConstraintOnProperty(invariant.Body)
		}

		if match == nil {
			continue
		}

		if _, ok := cls.PropertyByName(match.propName); !ok {
			errors = append(errors, newError(
				ErrUnknownProperty, invariant.Body,
				"the property %s does not appear in the properties of the class %s",
				match.propName, cls.Name))
			continue
		}

		if _, seen := constraintsByPropName[match.propName]; !seen {
			propNames = append(propNames, match.propName)
		}
		constraintsByPropName[match.propName] = append(
			constraintsByPropName[match.propName], match.constraint)
	}

	if len(errors) > 0 {
		return nil, errors
	}

	result := make(map[*model.Property]*LenConstraint, len(constraintsByPropName))

	for _, propName := range propNames {
		reduced, reductionErrors := reduceLenConstraints(constraintsByPropName[propName])

		if reductionErrors != nil {
			for _, reductionError := range reductionErrors {
				errors = append(errors, newError(
					ErrContradictoryLenBounds, nil,
					"the property %s of the class %s has conflicting invariants on the length: %s",
					propName, cls.Name, reductionError))
			}
			continue
		}

		prop, ok := cls.PropertyByName(propName)
		if !ok {
			// Checked during collection.
			panic("expected the property " + propName + " in the class " + cls.Name)
		}

		result[prop] = reduced
	}

	if len(errors) > 0 {
		return nil, errors
	}

	return result, nil
}

// LengthablePrimitives lists the primitive types for which a length
// constraint is meaningful
var LengthablePrimitives = map[model.PrimitiveType]bool{
	model.Str:       true,
	model.ByteArray: true,
}

// InferLenConstraintOfSelf infers the constraint on `len(self)` of a
// constrained primitive. Only its genuine invariants are considered; the
// narrowing over the ancestors is a separate pass.
func InferLenConstraintOfSelf(
	constrainedPrimitive *model.ConstrainedPrimitive,
) (*LenConstraint, []*Error) {
	var constraints []directedLenConstraint

	for _, invariant := range constrainedPrimitive.Invariants {
		if invariant.SpecifiedFor != model.Type(constrainedPrimitive) {
			continue
		}

		// Match something like `len(self) < 42`.
		match := matchLenConstraintOnMemberOrName(invariant.Body)
		if match == nil {
			// Not an idiom we understand; no constraint inferred.
			continue
		}

		if matchSelf(match.memberOrName) {
			constraints = append(constraints, match.constraint)
		}
	}

	reduced, reductionErrors := reduceLenConstraints(constraints)

	if reductionErrors != nil {
		errors := make([]*Error, 0, len(reductionErrors))
		for _, reductionError := range reductionErrors {
			errors = append(errors, newError(
				ErrContradictoryLenBounds, nil,
				"%s has conflicting invariants on the length: %s",
				constrainedPrimitive.Name, reductionError))
		}
		return nil, errors
	}

	return reduced, nil
}
