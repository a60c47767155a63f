package infer

import (
	"strings"
	"testing"

	"github.com/metac-lang/metac/internal/compiler/model"
)

func strLiteral(value string) *model.PrimitiveSetLiteral {
	return &model.PrimitiveSetLiteral{Value: value, AType: model.Str}
}

func TestIntersectSetOfPrimitivesConstraints(t *testing.T) {
	first := &SetOfPrimitivesConstraint{
		AType:    model.Str,
		Literals: []*model.PrimitiveSetLiteral{strLiteral("x"), strLiteral("y"), strLiteral("z")},
	}
	second := &SetOfPrimitivesConstraint{
		AType:    model.Str,
		Literals: []*model.PrimitiveSetLiteral{strLiteral("y"), strLiteral("z"), strLiteral("w")},
	}

	got := IntersectSetOfPrimitivesConstraints(
		[]*SetOfPrimitivesConstraint{first, second})

	values := make([]string, len(got.Literals))
	for i, literal := range got.Literals {
		values[i] = literal.Value.(string)
	}

	if len(values) != 2 || values[0] != "y" || values[1] != "z" {
		t.Errorf("got %v, want [y z]", values)
	}
}

func TestIntersectSetOfPrimitivesConstraints_ByValueNotIdentity(t *testing.T) {
	// The two constraints use distinct literal pointers with equal values;
	// the intersection must match on the value.
	first := &SetOfPrimitivesConstraint{
		AType:    model.Str,
		Literals: []*model.PrimitiveSetLiteral{strLiteral("x")},
	}
	second := &SetOfPrimitivesConstraint{
		AType:    model.Str,
		Literals: []*model.PrimitiveSetLiteral{strLiteral("x")},
	}

	got := IntersectSetOfPrimitivesConstraints(
		[]*SetOfPrimitivesConstraint{first, second})
	if len(got.Literals) != 1 {
		t.Errorf("expected the equal values to intersect, got %d literals",
			len(got.Literals))
	}
}

func TestIntersectSetOfEnumerationLiteralsConstraints(t *testing.T) {
	enumeration := model.NewEnumeration("Kind", []*model.EnumerationLiteral{
		{Name: "Template", Value: "Template", Handle: 0},
		{Name: "Instance", Value: "Instance", Handle: 1},
	})

	template, _ := enumeration.LiteralByName("Template")
	instance, _ := enumeration.LiteralByName("Instance")

	first := &SetOfEnumerationLiteralsConstraint{
		Enumeration: enumeration,
		Literals:    []*model.EnumerationLiteral{template, instance},
	}
	second := &SetOfEnumerationLiteralsConstraint{
		Enumeration: enumeration,
		Literals:    []*model.EnumerationLiteral{instance},
	}

	got := IntersectSetOfEnumerationLiteralsConstraints(
		[]*SetOfEnumerationLiteralsConstraint{first, second})

	if len(got.Literals) != 1 || got.Literals[0] != instance {
		t.Errorf("expected exactly the literal Instance, got %v", got.Literals)
	}
}

func TestIntersectSetOfEnumerationLiteralsConstraints_ByHandleNotValue(t *testing.T) {
	// Two literals share the underlying value but have different handles; the
	// coincidence of values must not make them intersect.
	first := &SetOfEnumerationLiteralsConstraint{
		Literals: []*model.EnumerationLiteral{
			{Name: "Template", Value: "SAME", Handle: 0},
		},
	}
	second := &SetOfEnumerationLiteralsConstraint{
		Literals: []*model.EnumerationLiteral{
			{Name: "Other", Value: "SAME", Handle: 7},
		},
	}

	got := IntersectSetOfEnumerationLiteralsConstraints(
		[]*SetOfEnumerationLiteralsConstraint{first, second})
	if len(got.Literals) != 0 {
		t.Errorf("literals with distinct handles must not intersect, got %d",
			len(got.Literals))
	}
}

func setTestSymbolTable(t *testing.T, cls *model.Class) *model.SymbolTable {
	t.Helper()

	enumeration := model.NewEnumeration("Kind", []*model.EnumerationLiteral{
		{Name: "Template", Value: "Template"},
		{Name: "Instance", Value: "Instance"},
	})
	template, _ := enumeration.LiteralByName("Template")
	instance, _ := enumeration.LiteralByName("Instance")

	constants := []model.Constant{
		&model.ConstantSetOfPrimitives{
			Name:  "Valid_categories",
			AType: model.Str,
			Literals: []*model.PrimitiveSetLiteral{
				strLiteral("CONSTANT"), strLiteral("PARAMETER"), strLiteral("VARIABLE"),
			},
		},
		&model.ConstantSetOfPrimitives{
			Name:  "Narrow_categories",
			AType: model.Str,
			Literals: []*model.PrimitiveSetLiteral{
				strLiteral("PARAMETER"), strLiteral("VARIABLE"),
			},
		},
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
		&model.ConstantPrimitive{
			Name:  "Max_depth",
			AType: model.Int,
			Value: int64(8),
		},
	}

	return buildSymbolTable(t,
		[]model.Type{enumeration, cls}, constants, nil)
}

func TestInferSetConstraintsFromInvariants_Primitives(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{strProperty("category")},
		[]string{"self.category in Valid_categories"})
	symbolTable := setTestSymbolTable(t, cls)

	got, errors := InferSetConstraintsFromInvariants(cls, symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors)
	}

	prop, _ := cls.PropertyByName("category")
	constraint := got.SetOfPrimitivesByProperty[prop]
	if constraint == nil {
		t.Fatal("expected a set constraint")
	}
	if len(constraint.Literals) != 3 {
		t.Errorf("expected three literals, got %d", len(constraint.Literals))
	}
}

func TestInferSetConstraintsFromInvariants_IntersectionOverInvariants(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{strProperty("category")},
		[]string{
			"self.category in Valid_categories",
			"self.category in Narrow_categories",
		})
	symbolTable := setTestSymbolTable(t, cls)

	got, errors := InferSetConstraintsFromInvariants(cls, symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors)
	}

	prop, _ := cls.PropertyByName("category")
	constraint := got.SetOfPrimitivesByProperty[prop]

	values := make([]string, len(constraint.Literals))
	for i, literal := range constraint.Literals {
		values[i] = literal.Value.(string)
	}
	if len(values) != 2 || values[0] != "PARAMETER" || values[1] != "VARIABLE" {
		t.Errorf("got %v, want [PARAMETER VARIABLE]", values)
	}
}

func TestInferSetConstraintsFromInvariants_EnumLiterals(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{
			{
				Name: "kind",
				TypeAnnotation: &model.OptionalTypeAnnotation{
					Value: &model.OurTypeAnnotation{},
				},
			},
		},
		[]string{"not (self.kind is not None) or self.kind in Template_kinds"})

	symbolTable := setTestSymbolTable(t, cls)

	// Bind the property type to the enumeration of the symbol table.
	enumeration := symbolTable.Types[0].(*model.Enumeration)
	prop, _ := cls.PropertyByName("kind")
	prop.TypeAnnotation = &model.OptionalTypeAnnotation{
		Value: &model.OurTypeAnnotation{OurType: enumeration},
	}

	got, errors := InferSetConstraintsFromInvariants(cls, symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors)
	}

	constraint := got.SetOfEnumerationLiteralsByProperty[prop]
	if constraint == nil {
		t.Fatal("expected an enumeration set constraint")
	}
	if len(constraint.Literals) != 1 || constraint.Literals[0].Name != "Template" {
		t.Errorf("got %v, want [Template]", constraint.Literals)
	}
}

func TestInferSetConstraintsFromInvariants_PrimitiveTypeMismatch(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{
			{
				Name:           "category",
				TypeAnnotation: &model.PrimitiveTypeAnnotation{AType: model.Int},
			},
		},
		[]string{"self.category in Valid_categories"})
	symbolTable := setTestSymbolTable(t, cls)

	got, errors := InferSetConstraintsFromInvariants(cls, symbolTable)
	if got != nil {
		t.Fatal("expected no result on a type mismatch")
	}
	if len(errors) != 1 {
		t.Fatalf("expected one error, got %d", len(errors))
	}
	if errors[0].Code != ErrSetOfPrimitivesTypeMismatch {
		t.Errorf("got code %s, want %s", errors[0].Code, ErrSetOfPrimitivesTypeMismatch)
	}
	if !strings.Contains(errors[0].Message, "constant set of str's") {
		t.Errorf("unexpected message: %s", errors[0].Message)
	}
}

func TestInferSetConstraintsFromInvariants_EnumTypeMismatch(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{strProperty("kind")},
		[]string{"self.kind in Template_kinds"})
	symbolTable := setTestSymbolTable(t, cls)

	got, errors := InferSetConstraintsFromInvariants(cls, symbolTable)
	if got != nil {
		t.Fatal("expected no result on a type mismatch")
	}
	if len(errors) != 1 {
		t.Fatalf("expected one error, got %d", len(errors))
	}
	if errors[0].Code != ErrSetOfEnumLiteralsTypeMismatch {
		t.Errorf("got code %s, want %s", errors[0].Code, ErrSetOfEnumLiteralsTypeMismatch)
	}
}

func TestInferSetConstraintsFromInvariants_UnknownConstantSkipped(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{strProperty("category")},
		[]string{"self.category in No_such_constant"})
	symbolTable := setTestSymbolTable(t, cls)

	got, errors := InferSetConstraintsFromInvariants(cls, symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors)
	}
	if len(got.SetOfPrimitivesByProperty) != 0 {
		t.Error("an unknown container name must be silently skipped")
	}
}

func TestInferSetConstraintsFromInvariants_SinglePrimitiveConstantIgnored(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{strProperty("category")},
		[]string{"self.category in Max_depth"})
	symbolTable := setTestSymbolTable(t, cls)

	got, errors := InferSetConstraintsFromInvariants(cls, symbolTable)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors)
	}
	if len(got.SetOfPrimitivesByProperty) != 0 {
		t.Error("membership in a single primitive constant is not a set idiom")
	}
}

func TestInferSetConstraintsFromInvariants_UnknownProperty(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{strProperty("category")},
		[]string{"self.catgory in Valid_categories"})
	symbolTable := setTestSymbolTable(t, cls)

	got, errors := InferSetConstraintsFromInvariants(cls, symbolTable)
	if got != nil {
		t.Fatal("expected no result")
	}
	if len(errors) != 1 || errors[0].Code != ErrUnknownProperty {
		t.Fatalf("expected a single unknown-property error, got %v", errors)
	}
}
