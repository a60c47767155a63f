package codegen

import (
	"fmt"
	"strings"

	"github.com/metac-lang/metac/internal/compiler/infer"
	"github.com/metac-lang/metac/internal/compiler/model"
)

// MarkdownGenerator renders a human-readable reference of the meta-model:
// the enumerations, the constrained primitives and the classes with their
// properties, invariants and inferred constraints.
type MarkdownGenerator struct {
	symbolTable        *model.SymbolTable
	constraintsByClass map[*model.Class]*infer.ConstraintsByProperty
}

// NewMarkdownGenerator creates a generator over the merged per-class
// constraints
func NewMarkdownGenerator(
	symbolTable *model.SymbolTable,
	constraintsByClass map[*model.Class]*infer.ConstraintsByProperty,
) *MarkdownGenerator {
	return &MarkdownGenerator{
		symbolTable:        symbolTable,
		constraintsByClass: constraintsByClass,
	}
}

// Generate renders the complete reference as a single Markdown document
func (g *MarkdownGenerator) Generate(title string) []byte {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	enumerations := g.enumerations()
	primitives := g.symbolTable.ConstrainedPrimitives()
	classes := g.symbolTable.Classes()

	buf.WriteString("## Contents\n\n")
	if len(enumerations) > 0 {
		buf.WriteString("- [Enumerations](#enumerations)\n")
	}
	if len(primitives) > 0 {
		buf.WriteString("- [Constrained primitives](#constrained-primitives)\n")
	}
	if len(classes) > 0 {
		buf.WriteString("- [Classes](#classes)\n")
	}
	buf.WriteString("\n")

	if len(enumerations) > 0 {
		buf.WriteString("## Enumerations\n\n")
		for _, enumeration := range enumerations {
			g.writeEnumeration(&buf, enumeration)
		}
	}

	if len(primitives) > 0 {
		buf.WriteString("## Constrained primitives\n\n")
		for _, primitive := range primitives {
			g.writeConstrainedPrimitive(&buf, primitive)
		}
	}

	if len(classes) > 0 {
		buf.WriteString("## Classes\n\n")
		for _, cls := range classes {
			g.writeClass(&buf, cls)
		}
	}

	return []byte(buf.String())
}

func (g *MarkdownGenerator) enumerations() []*model.Enumeration {
	var result []*model.Enumeration
	for _, t := range g.symbolTable.Types {
		if enumeration, ok := t.(*model.Enumeration); ok {
			result = append(result, enumeration)
		}
	}
	return result
}

func (g *MarkdownGenerator) writeEnumeration(
	buf *strings.Builder, enumeration *model.Enumeration,
) {
	buf.WriteString(fmt.Sprintf("### %s\n\n", enumeration.Name))

	buf.WriteString("| Literal | Value |\n")
	buf.WriteString("|---------|-------|\n")
	for _, literal := range enumeration.Literals {
		buf.WriteString(fmt.Sprintf("| %s | `%s` |\n", literal.Name, literal.Value))
	}
	buf.WriteString("\n")
}

func (g *MarkdownGenerator) writeConstrainedPrimitive(
	buf *strings.Builder, primitive *model.ConstrainedPrimitive,
) {
	buf.WriteString(fmt.Sprintf("### %s\n\n", primitive.Name))
	buf.WriteString(fmt.Sprintf("Constrains `%s`.\n\n", primitive.Constrainee))

	if len(primitive.Inheritances) > 0 {
		parents := make([]string, len(primitive.Inheritances))
		for i, parent := range primitive.Inheritances {
			parents[i] = parent.Name
		}
		buf.WriteString(fmt.Sprintf(
			"Inherits: %s.\n\n", strings.Join(parents, ", ")))
	}

	g.writeInvariants(buf, primitive.Invariants)
}

func (g *MarkdownGenerator) writeClass(buf *strings.Builder, cls *model.Class) {
	buf.WriteString(fmt.Sprintf("### %s\n\n", cls.Name))

	if len(cls.Inheritances) > 0 {
		parents := make([]string, len(cls.Inheritances))
		for i, parent := range cls.Inheritances {
			parents[i] = parent.Name
		}
		buf.WriteString(fmt.Sprintf(
			"Inherits: %s.\n\n", strings.Join(parents, ", ")))
	}

	constraints := g.constraintsByClass[cls]

	if len(cls.Properties) == 0 {
		buf.WriteString("No properties.\n\n")
	} else {
		buf.WriteString("| Property | Type | Required | Constraints |\n")
		buf.WriteString("|----------|------|----------|-------------|\n")
		for _, prop := range cls.Properties {
			required := "Yes"
			if _, optional := prop.TypeAnnotation.(*model.OptionalTypeAnnotation); optional {
				required = "No"
			}
			buf.WriteString(fmt.Sprintf("| %s | `%s` | %s | %s |\n",
				prop.Name,
				typeAnnotationText(prop.TypeAnnotation),
				required,
				propertyConstraintText(prop, constraints)))
		}
		buf.WriteString("\n")
	}

	g.writeInvariants(buf, cls.Invariants)
}

func (g *MarkdownGenerator) writeInvariants(
	buf *strings.Builder, invariants []*model.Invariant,
) {
	if len(invariants) == 0 {
		return
	}

	buf.WriteString("Invariants:\n\n")
	for _, invariant := range invariants {
		description := invariant.Description
		if description == "" {
			description = "(no description)"
		}
		buf.WriteString(fmt.Sprintf("- %s\n", description))
	}
	buf.WriteString("\n")
}

// typeAnnotationText renders a type annotation back into its source form
func typeAnnotationText(annotation model.TypeAnnotation) string {
	switch a := annotation.(type) {
	case *model.PrimitiveTypeAnnotation:
		return a.AType.String()
	case *model.OurTypeAnnotation:
		return a.OurType.TypeName()
	case *model.ListTypeAnnotation:
		return fmt.Sprintf("List[%s]", typeAnnotationText(a.Items))
	case *model.OptionalTypeAnnotation:
		return fmt.Sprintf("Optional[%s]", typeAnnotationText(a.Value))
	default:
		panic(fmt.Sprintf("unexpected type annotation %T", annotation))
	}
}

// propertyConstraintText summarizes the inferred constraints of a property
// in one table cell
func propertyConstraintText(
	prop *model.Property, constraints *infer.ConstraintsByProperty,
) string {
	if constraints == nil {
		return "—"
	}

	var parts []string

	if lenConstraint, ok := constraints.LenConstraintsByProperty[prop]; ok {
		if lenConstraint.MinValue != nil {
			parts = append(parts,
				fmt.Sprintf("min length %d", *lenConstraint.MinValue))
		}
		if lenConstraint.MaxValue != nil {
			parts = append(parts,
				fmt.Sprintf("max length %d", *lenConstraint.MaxValue))
		}
	}

	if patterns, ok := constraints.PatternsByProperty[prop]; ok {
		for _, pattern := range patterns {
			parts = append(parts, fmt.Sprintf("matches `%s`", pattern.Pattern))
		}
	}

	if setConstraint, ok := constraints.SetOfPrimitivesByProperty[prop]; ok {
		values := make([]string, len(setConstraint.Literals))
		for i, literal := range setConstraint.Literals {
			values[i] = fmt.Sprintf("`%v`", literal.Value)
		}
		parts = append(parts, "one of "+strings.Join(values, ", "))
	}

	if setConstraint, ok := constraints.SetOfEnumerationLiteralsByProperty[prop]; ok {
		values := make([]string, len(setConstraint.Literals))
		for i, literal := range setConstraint.Literals {
			values[i] = literal.Name
		}
		parts = append(parts, "one of "+strings.Join(values, ", "))
	}

	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, "; ")
}
