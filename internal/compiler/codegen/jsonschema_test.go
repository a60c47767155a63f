package codegen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metac-lang/metac/internal/compiler/infer"
	"github.com/metac-lang/metac/internal/compiler/loader"
	"github.com/metac-lang/metac/internal/compiler/model"
)

const schemaTestModel = `
enumerations:
  - name: Modelling_kind
    literals:
      - name: Template
      - name: Instance

constrained_primitives:
  - name: Non_empty_string
    constrainee: str
    invariants:
      - description: The value must not be empty.
        body: "len(self) >= 1"

verifications:
  - name: matches_id_short
    pattern: "^[a-zA-Z][a-zA-Z0-9_]*$"

constants:
  - name: Valid_categories
    kind: set_of_primitives
    a_type: str
    literals: [CONSTANT, PARAMETER, VARIABLE]

classes:
  - name: Referable
    properties:
      - name: id_short
        type: Optional[str]
      - name: category
        type: Optional[str]
      - name: description
        type: str
      - name: extensions
        type: List[Non_empty_string]
    invariants:
      - description: ID-short must match the pattern.
        body: "not (self.id_short is not None) or matches_id_short(self.id_short)"
      - description: The category must be one of the valid ones.
        body: "not (self.category is not None) or self.category in Valid_categories"
      - description: The description must not be too long.
        body: "len(self.description) <= 1023"
      - description: There must not be too many extensions.
        body: "len(self.extensions) <= 10"
`

func generateSchema(t *testing.T) map[string]interface{} {
	t.Helper()

	symbolTable, errs := loader.LoadBytes([]byte(schemaTestModel))
	require.Empty(t, errs)

	constraintsByClass, inferErrs := infer.InferConstraintsByClass(symbolTable)
	require.Empty(t, inferErrs)

	merged, mergeErr := infer.MergeConstraintsWithAncestors(
		symbolTable, constraintsByClass)
	require.Nil(t, mergeErr)

	data, err := NewSchemaGenerator(symbolTable, merged).Generate("Test schema")
	require.NoError(t, err)

	var document map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &document))
	return document
}

func definition(
	t *testing.T, document map[string]interface{}, name string,
) map[string]interface{} {
	t.Helper()

	definitions, ok := document["definitions"].(map[string]interface{})
	require.True(t, ok, "expected a definitions object")

	def, ok := definitions[name].(map[string]interface{})
	require.True(t, ok, "expected a definition for %s", name)
	return def
}

func property(
	t *testing.T, classSchema map[string]interface{}, name string,
) map[string]interface{} {
	t.Helper()

	properties, ok := classSchema["properties"].(map[string]interface{})
	require.True(t, ok, "expected a properties object")

	prop, ok := properties[name].(map[string]interface{})
	require.True(t, ok, "expected the property %s", name)
	return prop
}

func TestGenerate_Document(t *testing.T) {
	document := generateSchema(t)

	assert.Equal(t,
		"https://json-schema.org/draft/2020-12/schema", document["$schema"])
	assert.Equal(t, "Test schema", document["title"])
}

func TestGenerate_Enumeration(t *testing.T) {
	document := generateSchema(t)
	def := definition(t, document, "Modelling_kind")

	assert.Equal(t, "string", def["type"])
	assert.Equal(t, []interface{}{"Template", "Instance"}, def["enum"])
}

func TestGenerate_ConstrainedPrimitive(t *testing.T) {
	document := generateSchema(t)
	def := definition(t, document, "Non_empty_string")

	assert.Equal(t, "string", def["type"])
	// JSON numbers decode as float64.
	assert.Equal(t, float64(1), def["minLength"])
}

func TestGenerate_RequiredExcludesOptionals(t *testing.T) {
	document := generateSchema(t)
	def := definition(t, document, "Referable")

	assert.Equal(t, "object", def["type"])
	assert.Equal(t,
		[]interface{}{"description", "extensions"}, def["required"])
}

func TestGenerate_PatternOnProperty(t *testing.T) {
	document := generateSchema(t)
	def := definition(t, document, "Referable")

	idShort := property(t, def, "id_short")
	assert.Equal(t, "string", idShort["type"])
	assert.Equal(t, "^[a-zA-Z][a-zA-Z0-9_]*$", idShort["pattern"])
}

func TestGenerate_EnumFromSetConstraint(t *testing.T) {
	document := generateSchema(t)
	def := definition(t, document, "Referable")

	category := property(t, def, "category")
	assert.Equal(t,
		[]interface{}{"CONSTANT", "PARAMETER", "VARIABLE"}, category["enum"])
}

func TestGenerate_StringLength(t *testing.T) {
	document := generateSchema(t)
	def := definition(t, document, "Referable")

	description := property(t, def, "description")
	assert.Equal(t, float64(1023), description["maxLength"])
	assert.NotContains(t, description, "minLength")
}

func TestGenerate_ListLengthAndRef(t *testing.T) {
	document := generateSchema(t)
	def := definition(t, document, "Referable")

	extensions := property(t, def, "extensions")
	assert.Equal(t, "array", extensions["type"])
	assert.Equal(t, float64(10), extensions["maxItems"])

	items, ok := extensions["items"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "#/definitions/Non_empty_string", items["$ref"])
}

func TestGenerate_DescendantPrimitiveCarriesAncestorConstraints(t *testing.T) {
	source := `
verifications:
  - name: matches_id_short
    pattern: "^[a-zA-Z][a-zA-Z0-9_]*$"

constrained_primitives:
  - name: Id_short_string
    constrainee: str
    invariants:
      - description: The value must not be empty.
        body: "len(self) >= 1"
      - description: The value must match the ID-short pattern.
        body: "matches_id_short(self)"
  - name: Bounded_id_short_string
    constrainee: str
    inherits: [Id_short_string]
    invariants:
      - description: The value must be reasonably short.
        body: "len(self) <= 128"
`
	symbolTable, errs := loader.LoadBytes([]byte(source))
	require.Empty(t, errs)

	data, err := NewSchemaGenerator(
		symbolTable, map[*model.Class]*infer.ConstraintsByProperty{}).
		Generate("Primitives")
	require.NoError(t, err)

	var document map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &document))

	// The descendant's definition stands alone, so it must carry the
	// ancestor's bounds and pattern on top of its own.
	bounded := definition(t, document, "Bounded_id_short_string")
	assert.Equal(t, float64(1), bounded["minLength"])
	assert.Equal(t, float64(128), bounded["maxLength"])
	assert.Equal(t, "^[a-zA-Z][a-zA-Z0-9_]*$", bounded["pattern"])

	parent := definition(t, document, "Id_short_string")
	assert.NotContains(t, parent, "maxLength")
}

func TestGenerate_ContradictoryPrimitiveFails(t *testing.T) {
	source := `
constrained_primitives:
  - name: Impossible
    constrainee: str
    invariants:
      - description: The value must be long.
        body: "len(self) >= 10"
      - description: The value must be short.
        body: "len(self) <= 3"
`
	symbolTable, errs := loader.LoadBytes([]byte(source))
	require.Empty(t, errs)

	generator := NewSchemaGenerator(
		symbolTable, map[*model.Class]*infer.ConstraintsByProperty{})

	_, err := generator.Generate("Broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Impossible")
}

func TestGenerate_ByteArrayPrimitive(t *testing.T) {
	source := `
constrained_primitives:
  - name: Blob
    constrainee: bytearray
`
	symbolTable, errs := loader.LoadBytes([]byte(source))
	require.Empty(t, errs)

	generator := NewSchemaGenerator(
		symbolTable, map[*model.Class]*infer.ConstraintsByProperty{})

	data, err := generator.Generate("Blobs")
	require.NoError(t, err)

	var document map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &document))

	def := definition(t, document, "Blob")
	assert.Equal(t, "string", def["type"])
	assert.Equal(t, "base64", def["contentEncoding"])
}
