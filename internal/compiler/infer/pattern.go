package infer

import (
	"github.com/metac-lang/metac/internal/compiler/ast"
	"github.com/metac-lang/metac/internal/compiler/model"
)

// patternConstraintOnProperty represents a match on an expression like
// `is_id_short(self.something)` where the function is a registered
// pattern verification
type patternConstraintOnProperty struct {
	propName   string
	constraint PatternConstraint
}

// matchPatternConstraintOnProperty matches a pattern constraint on a
// property. A call to a function outside the registry is not a match.
func matchPatternConstraintOnProperty(
	node ast.ExprNode,
	verifications model.PatternVerificationsByName,
) *patternConstraintOnProperty {
	call, ok := node.(*ast.FunctionCall)
	if !ok {
		return nil
	}

	if len(call.Args) != 1 {
		return nil
	}

	propName, ok := matchProperty(call.Args[0])
	if !ok {
		return nil
	}

	verification, ok := verifications[call.Name]
	if !ok {
		return nil
	}

	return &patternConstraintOnProperty{
		propName:   propName,
		constraint: PatternConstraint{Pattern: verification.Pattern},
	}
}

// PatternsFromInvariants infers the pattern constraints for every property
// of the class.
//
// Multiple patterns on one property form a conjunction: all of them need to
// be satisfied. They are kept in discovery order and never deduplicated,
// since two verification functions may share the same regular expression.
// There are no error conditions; absence of a match means no pattern.
func PatternsFromInvariants(
	cls *model.Class,
	verifications model.PatternVerificationsByName,
) map[*model.Property][]PatternConstraint {
	// A single pass over the invariants instead of one pass per property
	// keeps the time complexity linear.
	var matches []*patternConstraintOnProperty

	for _, invariant := range cls.Invariants {
		// Only the genuine invariants of the class count here; the
		// ancestors' invariants are handled by the merge pass.
		if invariant.SpecifiedFor != model.Type(cls) {
			continue
		}

		// Match `self.something is None or is_id_short(self.something)`,
		// with the consequent possibly a conjunction.
		if conditional := matchConditionalOnProp(invariant.Body); conditional != nil {
			for _, node := range conjuncts(conditional.consequent) {
				match := matchPatternConstraintOnProperty(node, verifications)
				if match != nil && match.propName == conditional.propName {
					matches = append(matches, match)
				}
			}
			continue
		}

		// Match `is_id_short(self.something)`, possibly inside a
		// conjunction; non-matching conjuncts are dropped.
		for _, node := range conjuncts(invariant.Body) {
			match := matchPatternConstraintOnProperty(node, verifications)
			if match != nil {
				matches = append(matches, match)
			}
		}
	}

	result := make(map[*model.Property][]PatternConstraint)

	for _, match := range matches {
		prop, ok := cls.PropertyByName(match.propName)
		if !ok {
			continue
		}

		result[prop] = append(result[prop], match.constraint)
	}

	return result
}

// matchPatternOnSelf matches a pattern constraint on `self` of a
// constrained primitive
func matchPatternOnSelf(
	node ast.ExprNode,
	verifications model.PatternVerificationsByName,
) *PatternConstraint {
	call, ok := node.(*ast.FunctionCall)
	if !ok {
		return nil
	}

	if len(call.Args) != 1 {
		return nil
	}

	if !matchSelf(call.Args[0]) {
		return nil
	}

	verification, ok := verifications[call.Name]
	if !ok {
		return nil
	}

	return &PatternConstraint{Pattern: verification.Pattern}
}

// InferPatternsOnSelf infers the pattern constraints of a constrained
// string. Only its genuine invariants are considered; stacking over the
// ancestors is a separate pass.
func InferPatternsOnSelf(
	constrainedPrimitive *model.ConstrainedPrimitive,
	verifications model.PatternVerificationsByName,
) []PatternConstraint {
	var result []PatternConstraint

	for _, invariant := range constrainedPrimitive.Invariants {
		if invariant.SpecifiedFor != model.Type(constrainedPrimitive) {
			continue
		}

		// Match `is_id_short(self)`, possibly inside a conjunction such
		// as `is_id_short(self) and is_mime(self)`.
		for _, node := range conjuncts(invariant.Body) {
			match := matchPatternOnSelf(node, verifications)
			if match != nil {
				result = append(result, *match)
			}
		}
	}

	return result
}
