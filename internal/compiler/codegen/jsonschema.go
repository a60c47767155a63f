// Package codegen turns a loaded meta-model and its inferred constraints
// into generated artifacts. The only backend at the moment is JSON Schema.
package codegen

import (
	"encoding/json"
	"fmt"

	"github.com/metac-lang/metac/internal/compiler/infer"
	"github.com/metac-lang/metac/internal/compiler/model"
)

// SchemaGenerator emits a JSON Schema document for the meta-model.
// It consumes only the constraint tables, never the invariant expressions:
// whatever the inference could not capture is simply absent from the schema.
type SchemaGenerator struct {
	symbolTable        *model.SymbolTable
	constraintsByClass map[*model.Class]*infer.ConstraintsByProperty
	verifications      model.PatternVerificationsByName
}

// NewSchemaGenerator creates a generator over the merged per-class constraints
func NewSchemaGenerator(
	symbolTable *model.SymbolTable,
	constraintsByClass map[*model.Class]*infer.ConstraintsByProperty,
) *SchemaGenerator {
	return &SchemaGenerator{
		symbolTable:        symbolTable,
		constraintsByClass: constraintsByClass,
		verifications: model.MapPatternVerificationsByName(
			symbolTable.Verifications),
	}
}

// Generate renders the complete schema document as indented JSON
func (g *SchemaGenerator) Generate(title string) ([]byte, error) {
	// Definitions of constrained primitives stand alone in the document, so
	// they need their bounds and patterns narrowed over their ancestors;
	// nothing in the schema references the ancestors for them.
	lenByPrimitive, lenErrors :=
		infer.InferLenConstraintsByConstrainedPrimitive(g.symbolTable)
	if len(lenErrors) > 0 {
		return nil, fmt.Errorf(
			"contradictory length constraints on a constrained primitive: %s",
			lenErrors[0].Message)
	}

	patternsByPrimitive := infer.InferPatternConstraintsByConstrainedPrimitive(
		g.symbolTable, g.verifications)

	definitions := make(map[string]interface{}, len(g.symbolTable.Types))

	for _, t := range g.symbolTable.Types {
		switch typ := t.(type) {
		case *model.Enumeration:
			definitions[typ.Name] = enumerationSchema(typ)

		case *model.ConstrainedPrimitive:
			definitions[typ.Name] = constrainedPrimitiveSchema(
				typ, lenByPrimitive[typ], patternsByPrimitive[typ])

		case *model.Class:
			definitions[typ.Name] = g.classSchema(typ)
		}
	}

	document := map[string]interface{}{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"title":       title,
		"definitions": definitions,
	}

	return json.MarshalIndent(document, "", "  ")
}

func enumerationSchema(enumeration *model.Enumeration) map[string]interface{} {
	values := make([]string, len(enumeration.Literals))
	for i, literal := range enumeration.Literals {
		values[i] = literal.Value
	}
	return map[string]interface{}{
		"type": "string",
		"enum": values,
	}
}

// constrainedPrimitiveSchema renders a constrained primitive as a named
// definition carrying its length bounds and patterns, narrowed over its
// ancestors
func constrainedPrimitiveSchema(
	primitive *model.ConstrainedPrimitive,
	lenConstraint *infer.LenConstraint,
	patterns []infer.PatternConstraint,
) map[string]interface{} {
	schema := primitiveSchema(primitive.Constrainee)

	if primitive.Constrainee == model.Str {
		applyStringLenConstraint(schema, lenConstraint)
		applyPatterns(schema, patterns)
	}

	return schema
}

func (g *SchemaGenerator) classSchema(cls *model.Class) map[string]interface{} {
	properties := make(map[string]interface{}, len(cls.Properties))
	var required []string

	constraints := g.constraintsByClass[cls]

	for _, prop := range cls.Properties {
		properties[prop.Name] = g.propertySchema(prop, constraints)

		if _, optional := prop.TypeAnnotation.(*model.OptionalTypeAnnotation); !optional {
			required = append(required, prop.Name)
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (g *SchemaGenerator) propertySchema(
	prop *model.Property,
	constraints *infer.ConstraintsByProperty,
) map[string]interface{} {
	annotation := model.BeneathOptional(prop.TypeAnnotation)
	schema := typeAnnotationSchema(annotation)

	if constraints == nil {
		return schema
	}

	if lenConstraint, ok := constraints.LenConstraintsByProperty[prop]; ok {
		if _, isList := annotation.(*model.ListTypeAnnotation); isList {
			applyListLenConstraint(schema, lenConstraint)
		} else {
			applyStringLenConstraint(schema, lenConstraint)
		}
	}

	if patterns, ok := constraints.PatternsByProperty[prop]; ok {
		applyPatterns(schema, patterns)
	}

	if setConstraint, ok := constraints.SetOfPrimitivesByProperty[prop]; ok {
		values := make([]interface{}, len(setConstraint.Literals))
		for i, literal := range setConstraint.Literals {
			values[i] = literal.Value
		}
		schema["enum"] = values
	}

	if setConstraint, ok := constraints.SetOfEnumerationLiteralsByProperty[prop]; ok {
		values := make([]string, len(setConstraint.Literals))
		for i, literal := range setConstraint.Literals {
			values[i] = literal.Value
		}
		schema["enum"] = values
	}

	return schema
}

func typeAnnotationSchema(annotation model.TypeAnnotation) map[string]interface{} {
	switch a := annotation.(type) {
	case *model.PrimitiveTypeAnnotation:
		return primitiveSchema(a.AType)

	case *model.OurTypeAnnotation:
		return map[string]interface{}{
			"$ref": "#/definitions/" + a.OurType.TypeName(),
		}

	case *model.ListTypeAnnotation:
		return map[string]interface{}{
			"type":  "array",
			"items": typeAnnotationSchema(a.Items),
		}

	default:
		panic(fmt.Sprintf("unexpected type annotation %T", annotation))
	}
}

func primitiveSchema(primitive model.PrimitiveType) map[string]interface{} {
	switch primitive {
	case model.Bool:
		return map[string]interface{}{"type": "boolean"}
	case model.Int:
		return map[string]interface{}{"type": "integer"}
	case model.Float:
		return map[string]interface{}{"type": "number"}
	case model.Str:
		return map[string]interface{}{"type": "string"}
	case model.ByteArray:
		return map[string]interface{}{
			"type":            "string",
			"contentEncoding": "base64",
		}
	default:
		panic(fmt.Sprintf("unexpected primitive type %v", primitive))
	}
}

func applyStringLenConstraint(
	schema map[string]interface{}, lenConstraint *infer.LenConstraint,
) {
	if lenConstraint == nil {
		return
	}
	if lenConstraint.MinValue != nil {
		schema["minLength"] = *lenConstraint.MinValue
	}
	if lenConstraint.MaxValue != nil {
		schema["maxLength"] = *lenConstraint.MaxValue
	}
}

func applyListLenConstraint(
	schema map[string]interface{}, lenConstraint *infer.LenConstraint,
) {
	if lenConstraint == nil {
		return
	}
	if lenConstraint.MinValue != nil {
		schema["minItems"] = *lenConstraint.MinValue
	}
	if lenConstraint.MaxValue != nil {
		schema["maxItems"] = *lenConstraint.MaxValue
	}
}

// applyPatterns attaches the patterns to the schema. A single pattern goes
// directly on the schema; several become an allOf since JSON Schema allows
// only one `pattern` keyword per schema object.
func applyPatterns(
	schema map[string]interface{}, patterns []infer.PatternConstraint,
) {
	switch len(patterns) {
	case 0:
	case 1:
		schema["pattern"] = patterns[0].Pattern
	default:
		all := make([]interface{}, len(patterns))
		for i, pattern := range patterns {
			all[i] = map[string]interface{}{"pattern": pattern.Pattern}
		}
		schema["allOf"] = all
	}
}
