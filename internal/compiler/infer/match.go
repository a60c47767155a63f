package infer

import (
	"github.com/metac-lang/metac/internal/compiler/ast"
)

// The matchers recognize a small, fixed vocabulary of invariant shapes.
// They are pure and total: any shape outside the vocabulary yields a nil
// match, never an error.

// matchProperty matches an access to a property, i.e. `self.something`,
// and returns the property name
func matchProperty(node ast.ExprNode) (string, bool) {
	member, ok := node.(*ast.Member)
	if !ok {
		return "", false
	}

	instance, ok := member.Instance.(*ast.Name)
	if !ok || instance.Identifier != "self" {
		return "", false
	}

	return member.Name, true
}

// matchSelf matches a bare reference to `self`
func matchSelf(node ast.ExprNode) bool {
	name, ok := node.(*ast.Name)
	return ok && name.Identifier == "self"
}

// singleArgFunctionOnMemberOrName represents a match of a call of a function
// with a single argument which is a member access or a name
type singleArgFunctionOnMemberOrName struct {
	functionName string
	memberOrName ast.ExprNode
}

// matchSingleArgFunctionOnMemberOrName matches calls like `f(self.x)` or
// `f(self)`. Calls with any other argument count or shape do not match.
func matchSingleArgFunctionOnMemberOrName(
	node ast.ExprNode,
) *singleArgFunctionOnMemberOrName {
	call, ok := node.(*ast.FunctionCall)
	if !ok {
		return nil
	}

	if len(call.Args) != 1 {
		return nil
	}

	arg := call.Args[0]
	switch arg.(type) {
	case *ast.Member, *ast.Name:
		return &singleArgFunctionOnMemberOrName{
			functionName: call.Name,
			memberOrName: arg,
		}
	default:
		return nil
	}
}

// conditionalOnProp represents an invariant conditioned on an optional
// property: the consequent holds whenever the property is set
type conditionalOnProp struct {
	propName   string
	consequent ast.ExprNode
}

// matchConditionalOnProp matches `not (self.prop is not None) or CONSEQUENT`
// (parsed as an implication) and the equivalent
// `self.prop is None or CONSEQUENT`
func matchConditionalOnProp(node ast.ExprNode) *conditionalOnProp {
	switch n := node.(type) {
	case *ast.Implication:
		antecedent, ok := n.Antecedent.(*ast.IsNotNone)
		if !ok {
			return nil
		}

		propName, ok := matchProperty(antecedent.Value)
		if !ok {
			return nil
		}

		return &conditionalOnProp{propName: propName, consequent: n.Consequent}

	case *ast.Or:
		if len(n.Values) != 2 {
			return nil
		}

		isNone, ok := n.Values[0].(*ast.IsNone)
		if !ok {
			return nil
		}

		propName, ok := matchProperty(isNone.Value)
		if !ok {
			return nil
		}

		return &conditionalOnProp{propName: propName, consequent: n.Values[1]}

	default:
		return nil
	}
}

// propNameInNamedContainer represents a match of `self.prop in NAME` where
// NAME is expected to resolve to a module-level constant
type propNameInNamedContainer struct {
	propName      string
	containerName string
	node          *ast.IsIn
}

// matchPropInNamedContainer matches the expression `self.something in Something`
func matchPropInNamedContainer(node ast.ExprNode) *propNameInNamedContainer {
	isIn, ok := node.(*ast.IsIn)
	if !ok {
		return nil
	}

	propName, ok := matchProperty(isIn.Member)
	if !ok {
		return nil
	}

	container, ok := isIn.Container.(*ast.Name)
	if !ok {
		return nil
	}

	return &propNameInNamedContainer{
		propName:      propName,
		containerName: container.Identifier,
		node:          isIn,
	}
}

// matchIntConstant matches an integer constant
func matchIntConstant(node ast.ExprNode) (int64, bool) {
	constant, ok := node.(*ast.Constant)
	if !ok {
		return 0, false
	}

	value, ok := constant.Value.(int64)
	return value, ok
}

// conjuncts returns the conjuncts of a boolean AND, or the node itself as a
// single conjunct. Non-matching conjuncts of an AND are dropped by the
// callers, not treated as errors.
func conjuncts(node ast.ExprNode) []ast.ExprNode {
	if and, ok := node.(*ast.And); ok {
		return and.Values
	}
	return []ast.ExprNode{node}
}
