package infer

import (
	"strings"
	"testing"

	"github.com/metac-lang/metac/internal/compiler/model"
)

// classWithConstrainedProp builds a class with one property typed by the
// given constrained primitive plus the given own invariants
func classWithConstrainedProp(
	t *testing.T,
	name string,
	propName string,
	primitive *model.ConstrainedPrimitive,
	invariantSources []string,
) *model.Class {
	t.Helper()

	prop := &model.Property{
		Name:           propName,
		TypeAnnotation: &model.OurTypeAnnotation{OurType: primitive},
	}
	cls := buildClass(t, name, []*model.Property{prop}, invariantSources)
	return cls
}

func TestInferConstraintsByClass_InlinesConstrainedPrimitive(t *testing.T) {
	primitive := buildConstrainedString(t, "Non_empty_string", nil,
		[]string{"len(self) >= 1"})

	cls := classWithConstrainedProp(t, "Something", "id", primitive,
		[]string{"len(self.id) <= 6"})

	symbolTable := buildSymbolTable(t,
		[]model.Type{primitive, cls}, nil, nil)

	result, errors := InferConstraintsByClass(symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors)
	}

	prop, _ := cls.PropertyByName("id")
	got := result[cls].LenConstraintsByProperty[prop]
	if got == nil {
		t.Fatal("expected a length constraint")
	}
	if !equalIntPtr(got.MinValue, intPtr(1)) || !equalIntPtr(got.MaxValue, intPtr(6)) {
		t.Errorf("got [%v, %v], want [1, 6]",
			fmtIntPtr(got.MinValue), fmtIntPtr(got.MaxValue))
	}
}

func TestInferConstraintsByClass_NarrowsTypeAgainstInvariants(t *testing.T) {
	primitive := buildConstrainedString(t, "Longish_string", nil,
		[]string{"len(self) >= 4"})

	cls := classWithConstrainedProp(t, "Something", "id", primitive,
		[]string{"len(self.id) >= 6"})

	symbolTable := buildSymbolTable(t,
		[]model.Type{primitive, cls}, nil, nil)

	result, errors := InferConstraintsByClass(symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors)
	}

	prop, _ := cls.PropertyByName("id")
	got := result[cls].LenConstraintsByProperty[prop]
	if !equalIntPtr(got.MinValue, intPtr(6)) {
		t.Errorf("the stricter minimum must win; got %v, want 6",
			fmtIntPtr(got.MinValue))
	}
}

func TestInferConstraintsByClass_ContradictionBetweenTypeAndInvariants(t *testing.T) {
	primitive := buildConstrainedString(t, "Short_string", nil,
		[]string{"len(self) <= 3"})

	cls := classWithConstrainedProp(t, "Something", "id", primitive,
		[]string{"len(self.id) >= 7"})

	symbolTable := buildSymbolTable(t,
		[]model.Type{primitive, cls}, nil, nil)

	result, errors := InferConstraintsByClass(symbolTable)
	if result != nil {
		t.Fatal("expected no result on contradiction")
	}
	if len(errors) != 1 {
		t.Fatalf("expected one error, got %d: %v", len(errors), errors)
	}
	if !strings.Contains(errors[0].Message, "minimum = 7, maximum = 3") {
		t.Errorf("unexpected message: %s", errors[0].Message)
	}
}

func TestInferConstraintsByClass_ConstrainedPrimitiveAncestorNarrowing(t *testing.T) {
	parent := buildConstrainedString(t, "Non_empty_string", nil,
		[]string{"len(self) >= 1"})
	child := buildConstrainedString(t, "Bounded_string",
		[]*model.ConstrainedPrimitive{parent},
		[]string{"len(self) <= 128"})

	cls := classWithConstrainedProp(t, "Something", "id", child, nil)

	symbolTable := buildSymbolTable(t,
		[]model.Type{parent, child, cls}, nil, nil)

	result, errors := InferConstraintsByClass(symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors)
	}

	prop, _ := cls.PropertyByName("id")
	got := result[cls].LenConstraintsByProperty[prop]
	if !equalIntPtr(got.MinValue, intPtr(1)) || !equalIntPtr(got.MaxValue, intPtr(128)) {
		t.Errorf("got [%v, %v], want [1, 128]",
			fmtIntPtr(got.MinValue), fmtIntPtr(got.MaxValue))
	}
}

func TestInferConstraintsByClass_NoInliningOnInheritedProperty(t *testing.T) {
	primitive := buildConstrainedString(t, "Non_empty_string", nil,
		[]string{"len(self) >= 1"})

	parent := classWithConstrainedProp(t, "Parent", "id", primitive, nil)

	prop, _ := parent.PropertyByName("id")
	child := model.NewClass("Child", []*model.Class{parent},
		[]*model.Property{prop}, nil)

	symbolTable := buildSymbolTable(t,
		[]model.Type{primitive, parent, child}, nil, nil)

	result, errors := InferConstraintsByClass(symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors)
	}

	if _, ok := result[parent].LenConstraintsByProperty[prop]; !ok {
		t.Error("the defining class must in-line the primitive's constraint")
	}
	if _, ok := result[child].LenConstraintsByProperty[prop]; ok {
		t.Error("a descendant must not repeat the in-lined constraint")
	}
}

func TestInferConstraintsByClass_AtomicFailure(t *testing.T) {
	valid := buildClass(t, "Valid",
		[]*model.Property{strProperty("name")},
		[]string{"len(self.name) >= 1"})

	invalid := buildClass(t, "Invalid",
		[]*model.Property{strProperty("name")},
		[]string{"len(self.name) >= 11", "len(self.name) <= 2"})

	symbolTable := buildSymbolTable(t,
		[]model.Type{valid, invalid}, nil, nil)

	result, errors := InferConstraintsByClass(symbolTable)
	if result != nil {
		t.Error("one failing class must fail the whole inference")
	}
	if len(errors) == 0 {
		t.Error("expected the errors of the failing class")
	}
}

func mergedOverHierarchy(
	t *testing.T,
	parentInvariants, childInvariants []string,
) (*model.Class, *model.Class, map[*model.Class]*ConstraintsByProperty, *Error) {
	t.Helper()

	parent := buildClass(t, "Parent",
		[]*model.Property{strProperty("name")},
		parentInvariants)

	prop, _ := parent.PropertyByName("name")

	childInvariantNodes := make([]*model.Invariant, 0)
	childInvariantNodes = append(childInvariantNodes, parent.Invariants...)
	child := model.NewClass("Child", []*model.Class{parent},
		[]*model.Property{prop}, childInvariantNodes)

	for _, source := range childInvariants {
		invariant := &model.Invariant{
			Description:  source,
			Body:         mustParse(t, source),
			SpecifiedFor: child,
		}
		child.Invariants = append(child.Invariants, invariant)
	}

	symbolTable := buildSymbolTable(t,
		[]model.Type{parent, child}, nil, nil)

	constraintsByClass, errors := InferConstraintsByClass(symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected inference errors: %v", errors)
	}

	merged, mergeErr := MergeConstraintsWithAncestors(symbolTable, constraintsByClass)
	return parent, child, merged, mergeErr
}

func TestMergeConstraintsWithAncestors_NarrowsLen(t *testing.T) {
	parent, child, merged, err := mergedOverHierarchy(t,
		[]string{"len(self.name) >= 1"},
		[]string{"len(self.name) <= 10"})
	if err != nil {
		t.Fatalf("unexpected merge error: %v", err)
	}

	prop, _ := parent.PropertyByName("name")
	got := merged[child].LenConstraintsByProperty[prop]
	if got == nil {
		t.Fatal("expected a merged length constraint")
	}
	if !equalIntPtr(got.MinValue, intPtr(1)) || !equalIntPtr(got.MaxValue, intPtr(10)) {
		t.Errorf("got [%v, %v], want [1, 10]",
			fmtIntPtr(got.MinValue), fmtIntPtr(got.MaxValue))
	}
}

func TestMergeConstraintsWithAncestors_ContradictionIsFatal(t *testing.T) {
	_, _, merged, err := mergedOverHierarchy(t,
		[]string{"len(self.name) <= 10"},
		[]string{"len(self.name) >= 11"})

	if merged != nil {
		t.Error("expected no result on a merge contradiction")
	}
	if err == nil {
		t.Fatal("expected a merge error")
	}
	if err.Code != ErrContradictoryMergedLenBounds {
		t.Errorf("got code %s, want %s", err.Code, ErrContradictoryMergedLenBounds)
	}
	if !strings.Contains(err.Message, "min_value == 11 and max_value == 10") {
		t.Errorf("unexpected message: %s", err.Message)
	}
}

func TestMergeConstraintsWithAncestors_SetIntersection(t *testing.T) {
	enumeration := model.NewEnumeration("Kind", []*model.EnumerationLiteral{
		{Name: "Template", Value: "Template"},
		{Name: "Instance", Value: "Instance"},
	})
	template, _ := enumeration.LiteralByName("Template")
	instance, _ := enumeration.LiteralByName("Instance")

	kindProp := &model.Property{
		Name:           "kind",
		TypeAnnotation: &model.OurTypeAnnotation{OurType: enumeration},
	}

	parent := buildClass(t, "Parent", []*model.Property{kindProp},
		[]string{"self.kind in All_kinds"})
	kindProp.SpecifiedFor = parent

	child := model.NewClass("Child", []*model.Class{parent},
		[]*model.Property{kindProp}, parent.Invariants)
	childInvariant := &model.Invariant{
		Description:  "self.kind in Template_kinds",
		Body:         mustParse(t, "self.kind in Template_kinds"),
		SpecifiedFor: child,
	}
	child.Invariants = append(child.Invariants, childInvariant)

	constants := []model.Constant{
		&model.ConstantSetOfEnumerationLiterals{
			Name:        "All_kinds",
			Enumeration: enumeration,
			Literals:    []*model.EnumerationLiteral{template, instance},
		},
		&model.ConstantSetOfEnumerationLiterals{
			Name:        "Template_kinds",
			Enumeration: enumeration,
			Literals:    []*model.EnumerationLiteral{template},
		},
	}

	symbolTable := buildSymbolTable(t,
		[]model.Type{enumeration, parent, child}, constants, nil)

	constraintsByClass, errors := InferConstraintsByClass(symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected inference errors: %v", errors)
	}

	merged, mergeErr := MergeConstraintsWithAncestors(symbolTable, constraintsByClass)
	if mergeErr != nil {
		t.Fatalf("unexpected merge error: %v", mergeErr)
	}

	got := merged[child].SetOfEnumerationLiteralsByProperty[kindProp]
	if got == nil {
		t.Fatal("expected a merged enumeration set constraint")
	}
	if len(got.Literals) != 1 || got.Literals[0].Name != "Template" {
		t.Errorf("got %v, want [Template]", got.Literals)
	}
}

func TestMergeConstraintsWithAncestors_EmptyMergedSetIsFatal(t *testing.T) {
	enumeration := model.NewEnumeration("Kind", []*model.EnumerationLiteral{
		{Name: "Template", Value: "Template"},
		{Name: "Instance", Value: "Instance"},
	})
	template, _ := enumeration.LiteralByName("Template")
	instance, _ := enumeration.LiteralByName("Instance")

	kindProp := &model.Property{
		Name:           "kind",
		TypeAnnotation: &model.OurTypeAnnotation{OurType: enumeration},
	}

	parent := buildClass(t, "Parent", []*model.Property{kindProp},
		[]string{"self.kind in Template_kinds"})
	kindProp.SpecifiedFor = parent

	child := model.NewClass("Child", []*model.Class{parent},
		[]*model.Property{kindProp}, parent.Invariants)
	child.Invariants = append(child.Invariants, &model.Invariant{
		Description:  "self.kind in Instance_kinds",
		Body:         mustParse(t, "self.kind in Instance_kinds"),
		SpecifiedFor: child,
	})

	constants := []model.Constant{
		&model.ConstantSetOfEnumerationLiterals{
			Name:        "Template_kinds",
			Enumeration: enumeration,
			Literals:    []*model.EnumerationLiteral{template},
		},
		&model.ConstantSetOfEnumerationLiterals{
			Name:        "Instance_kinds",
			Enumeration: enumeration,
			Literals:    []*model.EnumerationLiteral{instance},
		},
	}

	symbolTable := buildSymbolTable(t,
		[]model.Type{enumeration, parent, child}, constants, nil)

	constraintsByClass, errors := InferConstraintsByClass(symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected inference errors: %v", errors)
	}

	merged, mergeErr := MergeConstraintsWithAncestors(symbolTable, constraintsByClass)
	if merged != nil {
		t.Error("expected no result for an empty merged set")
	}
	if mergeErr == nil {
		t.Fatal("expected a merge error")
	}
	if mergeErr.Code != ErrEmptyMergedSet {
		t.Errorf("got code %s, want %s", mergeErr.Code, ErrEmptyMergedSet)
	}
}

func TestMergeConstraintsWithAncestors_PatternStackingDeduplicatesOwn(t *testing.T) {
	// The same constrained primitive types the property in the parent and the
	// child in-lines nothing; the parent's pattern must not be doubled when
	// both levels contribute it.
	verification := &model.PatternVerification{
		Name: "matches_id_short", Pattern: "^[a-zA-Z][a-zA-Z0-9_]*$"}

	parent := buildClass(t, "Parent",
		[]*model.Property{strProperty("name")},
		[]string{"matches_id_short(self.name)"})

	prop, _ := parent.PropertyByName("name")

	child := model.NewClass("Child", []*model.Class{parent},
		[]*model.Property{prop}, parent.Invariants)
	child.Invariants = append(child.Invariants, &model.Invariant{
		Description:  "matches_id_short(self.name)",
		Body:         mustParse(t, "matches_id_short(self.name)"),
		SpecifiedFor: child,
	})

	symbolTable := buildSymbolTable(t,
		[]model.Type{parent, child}, nil,
		[]*model.PatternVerification{verification})

	constraintsByClass, errors := InferConstraintsByClass(symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected inference errors: %v", errors)
	}

	merged, mergeErr := MergeConstraintsWithAncestors(symbolTable, constraintsByClass)
	if mergeErr != nil {
		t.Fatalf("unexpected merge error: %v", mergeErr)
	}

	got := merged[child].PatternsByProperty[prop]
	if len(got) != 1 {
		t.Errorf("a pattern already present on the child must not be inherited again; got %d patterns",
			len(got))
	}
}
