package infer

import (
	"testing"

	"github.com/metac-lang/metac/compiler/parser"
	"github.com/metac-lang/metac/internal/compiler/ast"
	"github.com/metac-lang/metac/internal/compiler/model"
)

func mustParse(t *testing.T, source string) ast.ExprNode {
	t.Helper()

	node, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", source, err)
	}
	return node
}

func strProperty(name string) *model.Property {
	return &model.Property{
		Name:           name,
		TypeAnnotation: &model.PrimitiveTypeAnnotation{AType: model.Str},
	}
}

func optionalStrProperty(name string) *model.Property {
	return &model.Property{
		Name: name,
		TypeAnnotation: &model.OptionalTypeAnnotation{
			Value: &model.PrimitiveTypeAnnotation{AType: model.Str},
		},
	}
}

// buildClass creates a class whose invariants are parsed from the given
// sources and marked as specified on the class itself
func buildClass(
	t *testing.T,
	name string,
	properties []*model.Property,
	invariantSources []string,
) *model.Class {
	t.Helper()

	invariants := make([]*model.Invariant, 0, len(invariantSources))
	for _, source := range invariantSources {
		invariants = append(invariants, &model.Invariant{
			Description: source,
			Body:        mustParse(t, source),
		})
	}

	cls := model.NewClass(name, nil, properties, invariants)
	for _, prop := range properties {
		prop.SpecifiedFor = cls
	}
	for _, invariant := range invariants {
		invariant.SpecifiedFor = cls
	}
	return cls
}

// buildConstrainedString creates a constrained string primitive with parsed
// invariants on self
func buildConstrainedString(
	t *testing.T,
	name string,
	inheritances []*model.ConstrainedPrimitive,
	invariantSources []string,
) *model.ConstrainedPrimitive {
	t.Helper()

	primitive := &model.ConstrainedPrimitive{
		Name:         name,
		Constrainee:  model.Str,
		Inheritances: inheritances,
	}

	var invariants []*model.Invariant
	seen := make(map[*model.Invariant]bool)
	for _, parent := range inheritances {
		for _, invariant := range parent.Invariants {
			if !seen[invariant] {
				seen[invariant] = true
				invariants = append(invariants, invariant)
			}
		}
	}

	for _, source := range invariantSources {
		invariants = append(invariants, &model.Invariant{
			Description:  source,
			Body:         mustParse(t, source),
			SpecifiedFor: primitive,
		})
	}
	primitive.Invariants = invariants

	return primitive
}

// buildSymbolTable wraps model.NewSymbolTable and fails the test on a cycle
func buildSymbolTable(
	t *testing.T,
	types []model.Type,
	constants []model.Constant,
	verifications []*model.PatternVerification,
) *model.SymbolTable {
	t.Helper()

	symbolTable, err := model.NewSymbolTable(types, constants, verifications)
	if err != nil {
		t.Fatalf("failed to build the symbol table: %v", err)
	}
	return symbolTable
}
