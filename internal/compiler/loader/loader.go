// Package loader reads a meta-model from its YAML source and builds the
// symbol table. Invariant bodies are parsed into expression trees here so
// that the downstream analyses never see source text.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/metac-lang/metac/compiler/parser"
	"github.com/metac-lang/metac/internal/compiler/model"
)

// Error describes a problem in the meta-model source.
// Context names the element the problem belongs to, e.g. a class or a
// constant.
type Error struct {
	Context string
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Context == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Context, e.Message)
}

type rawEnumerationLiteral struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type rawEnumeration struct {
	Name     string                  `yaml:"name"`
	Literals []rawEnumerationLiteral `yaml:"literals"`
}

type rawInvariant struct {
	Description string `yaml:"description"`
	Body        string `yaml:"body"`
}

type rawConstrainedPrimitive struct {
	Name        string         `yaml:"name"`
	Constrainee string         `yaml:"constrainee"`
	Inherits    []string       `yaml:"inherits"`
	Invariants  []rawInvariant `yaml:"invariants"`
}

type rawProperty struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type rawClass struct {
	Name       string         `yaml:"name"`
	Inherits   []string       `yaml:"inherits"`
	Properties []rawProperty  `yaml:"properties"`
	Invariants []rawInvariant `yaml:"invariants"`
}

type rawConstant struct {
	Name        string      `yaml:"name"`
	Kind        string      `yaml:"kind"`
	AType       string      `yaml:"a_type"`
	Enumeration string      `yaml:"enumeration"`
	Value       interface{} `yaml:"value"`
	Literals    []yaml.Node `yaml:"literals"`
}

type rawVerification struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

type rawModel struct {
	Enumerations          []rawEnumeration          `yaml:"enumerations"`
	ConstrainedPrimitives []rawConstrainedPrimitive `yaml:"constrained_primitives"`
	Classes               []rawClass                `yaml:"classes"`
	Constants             []rawConstant             `yaml:"constants"`
	Verifications         []rawVerification         `yaml:"verifications"`
}

// Load reads the meta-model from the file at the given path.
// All the errors of the source are collected before giving up.
func Load(path string) (*model.SymbolTable, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{
			&Error{Message: fmt.Sprintf("failed to read the meta-model: %s", err)}}
	}
	return LoadBytes(data)
}

// LoadBytes builds the symbol table from the YAML source
func LoadBytes(data []byte) (*model.SymbolTable, []error) {
	var raw rawModel
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, []error{
			&Error{Message: fmt.Sprintf("invalid YAML: %s", err)}}
	}

	b := &builder{
		typesByName:      make(map[string]model.Type),
		classesByName:    make(map[string]*model.Class),
		primitivesByName: make(map[string]*model.ConstrainedPrimitive),
	}

	b.buildEnumerations(raw.Enumerations)
	b.buildConstrainedPrimitives(raw.ConstrainedPrimitives)
	b.buildClasses(raw.Classes)
	constants := b.buildConstants(raw.Constants)
	verifications := b.buildVerifications(raw.Verifications)

	if len(b.errors) > 0 {
		return nil, b.errors
	}

	symbolTable, err := model.NewSymbolTable(b.types, constants, verifications)
	if err != nil {
		return nil, []error{&Error{Message: err.Error()}}
	}

	return symbolTable, nil
}

type builder struct {
	types            []model.Type
	typesByName      map[string]model.Type
	classesByName    map[string]*model.Class
	primitivesByName map[string]*model.ConstrainedPrimitive
	errors           []error
}

func (b *builder) addError(context, format string, args ...interface{}) {
	b.errors = append(b.errors, &Error{
		Context: context,
		Message: fmt.Sprintf(format, args...),
	})
}

func (b *builder) registerType(context string, t model.Type) {
	name := t.TypeName()
	if _, exists := b.typesByName[name]; exists {
		b.addError(context, "the type %s is declared more than once", name)
		return
	}
	b.types = append(b.types, t)
	b.typesByName[name] = t
}

func (b *builder) buildEnumerations(raws []rawEnumeration) {
	for _, raw := range raws {
		context := fmt.Sprintf("enumeration %s", raw.Name)

		literals := make([]*model.EnumerationLiteral, 0, len(raw.Literals))
		seen := make(map[string]bool, len(raw.Literals))
		for _, rawLiteral := range raw.Literals {
			if seen[rawLiteral.Name] {
				b.addError(context,
					"the literal %s is declared more than once", rawLiteral.Name)
				continue
			}
			seen[rawLiteral.Name] = true

			value := rawLiteral.Value
			if value == "" {
				value = rawLiteral.Name
			}
			literals = append(literals, &model.EnumerationLiteral{
				Name:  rawLiteral.Name,
				Value: value,
			})
		}

		b.registerType(context, model.NewEnumeration(raw.Name, literals))
	}
}

// buildConstrainedPrimitives resolves the inheritance among the constrained
// primitives with repeated passes so that the declaration order does not
// have to follow the inheritance order.
func (b *builder) buildConstrainedPrimitives(raws []rawConstrainedPrimitive) {
	pending := make([]rawConstrainedPrimitive, len(raws))
	copy(pending, raws)

	for len(pending) > 0 {
		progressed := false
		var next []rawConstrainedPrimitive

		for _, raw := range pending {
			if b.allPrimitivesKnown(raw.Inherits) {
				b.buildConstrainedPrimitive(raw)
				progressed = true
			} else {
				next = append(next, raw)
			}
		}

		if !progressed {
			for _, raw := range next {
				b.addError(
					fmt.Sprintf("constrained primitive %s", raw.Name),
					"unresolved or cyclic inheritance: %v", raw.Inherits)
			}
			return
		}
		pending = next
	}
}

func (b *builder) allPrimitivesKnown(names []string) bool {
	for _, name := range names {
		if _, ok := b.primitivesByName[name]; !ok {
			return false
		}
	}
	return true
}

func (b *builder) buildConstrainedPrimitive(raw rawConstrainedPrimitive) {
	context := fmt.Sprintf("constrained primitive %s", raw.Name)

	constrainee, ok := primitiveTypeByName[raw.Constrainee]
	if !ok {
		b.addError(context, "unknown constrainee %q", raw.Constrainee)
		return
	}

	inheritances := make([]*model.ConstrainedPrimitive, 0, len(raw.Inherits))
	for _, parentName := range raw.Inherits {
		parent := b.primitivesByName[parentName]
		if parent.Constrainee != constrainee {
			b.addError(context,
				"the constrainee %s differs from the constrainee %s of the parent %s",
				constrainee, parent.Constrainee, parentName)
			return
		}
		inheritances = append(inheritances, parent)
	}

	primitive := &model.ConstrainedPrimitive{
		Name:         raw.Name,
		Constrainee:  constrainee,
		Inheritances: inheritances,
	}

	invariants := inheritedPrimitiveInvariants(inheritances)
	for i, rawInvariant := range raw.Invariants {
		body, err := parser.Parse(rawInvariant.Body)
		if err != nil {
			b.addError(context, "invariant #%d: %s", i, err)
			continue
		}
		invariants = append(invariants, &model.Invariant{
			Description:  rawInvariant.Description,
			Body:         body,
			SpecifiedFor: primitive,
		})
	}
	primitive.Invariants = invariants

	b.registerType(context, primitive)
	b.primitivesByName[raw.Name] = primitive
}

// inheritedPrimitiveInvariants collects the ancestors' invariants in
// inheritance order, de-duplicated by pointer across diamonds
func inheritedPrimitiveInvariants(
	inheritances []*model.ConstrainedPrimitive,
) []*model.Invariant {
	var result []*model.Invariant
	seen := make(map[*model.Invariant]bool)

	for _, parent := range inheritances {
		for _, invariant := range parent.Invariants {
			if seen[invariant] {
				continue
			}
			seen[invariant] = true
			result = append(result, invariant)
		}
	}
	return result
}

// buildClasses resolves the inheritance among the classes with repeated
// passes, same as for the constrained primitives
func (b *builder) buildClasses(raws []rawClass) {
	pending := make([]rawClass, len(raws))
	copy(pending, raws)

	for len(pending) > 0 {
		progressed := false
		var next []rawClass

		for _, raw := range pending {
			if b.allClassesKnown(raw.Inherits) {
				b.buildClass(raw)
				progressed = true
			} else {
				next = append(next, raw)
			}
		}

		if !progressed {
			for _, raw := range next {
				b.addError(
					fmt.Sprintf("class %s", raw.Name),
					"unresolved or cyclic inheritance: %v", raw.Inherits)
			}
			return
		}
		pending = next
	}
}

func (b *builder) allClassesKnown(names []string) bool {
	for _, name := range names {
		if _, ok := b.classesByName[name]; !ok {
			return false
		}
	}
	return true
}

func (b *builder) buildClass(raw rawClass) {
	context := fmt.Sprintf("class %s", raw.Name)

	inheritances := make([]*model.Class, 0, len(raw.Inherits))
	for _, parentName := range raw.Inherits {
		inheritances = append(inheritances, b.classesByName[parentName])
	}

	// Inherited properties come first, in inheritance order, with the
	// pointers preserved so that the constraints inferred on an ancestor's
	// property merge onto the same key.
	var properties []*model.Property
	seenProps := make(map[string]bool)
	for _, parent := range inheritances {
		for _, prop := range parent.Properties {
			if seenProps[prop.Name] {
				continue
			}
			seenProps[prop.Name] = true
			properties = append(properties, prop)
		}
	}

	var ownProperties []*model.Property
	for _, rawProp := range raw.Properties {
		if seenProps[rawProp.Name] {
			b.addError(context,
				"the property %s is already declared in an ancestor", rawProp.Name)
			continue
		}
		seenProps[rawProp.Name] = true

		annotation, err := parseTypeAnnotation(rawProp.Type, b.typesByName)
		if err != nil {
			b.addError(context, "property %s: %s", rawProp.Name, err)
			continue
		}

		ownProperties = append(ownProperties, &model.Property{
			Name:           rawProp.Name,
			TypeAnnotation: annotation,
		})
	}
	properties = append(properties, ownProperties...)

	var invariants []*model.Invariant
	seenInvariants := make(map[*model.Invariant]bool)
	for _, parent := range inheritances {
		for _, invariant := range parent.Invariants {
			if seenInvariants[invariant] {
				continue
			}
			seenInvariants[invariant] = true
			invariants = append(invariants, invariant)
		}
	}

	var ownInvariants []*model.Invariant
	for i, rawInvariant := range raw.Invariants {
		body, err := parser.Parse(rawInvariant.Body)
		if err != nil {
			b.addError(context, "invariant #%d: %s", i, err)
			continue
		}
		ownInvariants = append(ownInvariants, &model.Invariant{
			Description: rawInvariant.Description,
			Body:        body,
		})
	}
	invariants = append(invariants, ownInvariants...)

	cls := model.NewClass(raw.Name, inheritances, properties, invariants)

	for _, prop := range ownProperties {
		prop.SpecifiedFor = cls
	}
	for _, invariant := range ownInvariants {
		invariant.SpecifiedFor = cls
	}

	b.registerType(context, cls)
	b.classesByName[raw.Name] = cls
}

func (b *builder) buildConstants(raws []rawConstant) []model.Constant {
	constants := make([]model.Constant, 0, len(raws))
	seen := make(map[string]bool, len(raws))

	for _, raw := range raws {
		context := fmt.Sprintf("constant %s", raw.Name)

		if seen[raw.Name] {
			b.addError(context, "the constant %s is declared more than once", raw.Name)
			continue
		}
		seen[raw.Name] = true

		var constant model.Constant
		switch raw.Kind {
		case "primitive":
			constant = b.buildConstantPrimitive(context, raw)
		case "set_of_primitives":
			constant = b.buildConstantSetOfPrimitives(context, raw)
		case "set_of_enumeration_literals":
			constant = b.buildConstantSetOfEnumerationLiterals(context, raw)
		default:
			b.addError(context, "unknown constant kind %q", raw.Kind)
			continue
		}

		if constant != nil {
			constants = append(constants, constant)
		}
	}
	return constants
}

func (b *builder) buildConstantPrimitive(
	context string, raw rawConstant,
) model.Constant {
	aType, ok := primitiveTypeByName[raw.AType]
	if !ok {
		b.addError(context, "unknown primitive type %q", raw.AType)
		return nil
	}

	value, err := normalizePrimitiveValue(raw.Value, aType)
	if err != nil {
		b.addError(context, "%s", err)
		return nil
	}

	return &model.ConstantPrimitive{
		Name:  raw.Name,
		AType: aType,
		Value: value,
	}
}

func (b *builder) buildConstantSetOfPrimitives(
	context string, raw rawConstant,
) model.Constant {
	aType, ok := primitiveTypeByName[raw.AType]
	if !ok {
		b.addError(context, "unknown primitive type %q", raw.AType)
		return nil
	}

	literals := make([]*model.PrimitiveSetLiteral, 0, len(raw.Literals))
	for i, node := range raw.Literals {
		var decoded interface{}
		if err := node.Decode(&decoded); err != nil {
			b.addError(context, "literal #%d: %s", i, err)
			continue
		}

		value, err := normalizePrimitiveValue(decoded, aType)
		if err != nil {
			b.addError(context, "literal #%d: %s", i, err)
			continue
		}

		literals = append(literals, &model.PrimitiveSetLiteral{
			Value: value,
			AType: aType,
		})
	}

	return &model.ConstantSetOfPrimitives{
		Name:     raw.Name,
		AType:    aType,
		Literals: literals,
	}
}

func (b *builder) buildConstantSetOfEnumerationLiterals(
	context string, raw rawConstant,
) model.Constant {
	enumType, ok := b.typesByName[raw.Enumeration]
	if !ok {
		b.addError(context, "unknown enumeration %q", raw.Enumeration)
		return nil
	}

	enumeration, ok := enumType.(*model.Enumeration)
	if !ok {
		b.addError(context, "the type %s is not an enumeration", raw.Enumeration)
		return nil
	}

	literals := make([]*model.EnumerationLiteral, 0, len(raw.Literals))
	for i, node := range raw.Literals {
		var literalName string
		if err := node.Decode(&literalName); err != nil {
			b.addError(context, "literal #%d: %s", i, err)
			continue
		}

		// Resolve against the enumeration so that the shared pointer carries
		// the literal's identity.
		literal, ok := enumeration.LiteralByName(literalName)
		if !ok {
			b.addError(context,
				"the literal %s does not belong to the enumeration %s",
				literalName, enumeration.Name)
			continue
		}
		literals = append(literals, literal)
	}

	return &model.ConstantSetOfEnumerationLiterals{
		Name:        raw.Name,
		Enumeration: enumeration,
		Literals:    literals,
	}
}

func (b *builder) buildVerifications(
	raws []rawVerification,
) []*model.PatternVerification {
	verifications := make([]*model.PatternVerification, 0, len(raws))
	seen := make(map[string]bool, len(raws))

	for _, raw := range raws {
		context := fmt.Sprintf("verification %s", raw.Name)

		if seen[raw.Name] {
			b.addError(context,
				"the verification %s is declared more than once", raw.Name)
			continue
		}
		seen[raw.Name] = true

		if raw.Pattern == "" {
			b.addError(context, "the pattern must not be empty")
			continue
		}

		verifications = append(verifications, &model.PatternVerification{
			Name:    raw.Name,
			Pattern: raw.Pattern,
		})
	}
	return verifications
}

// normalizePrimitiveValue coerces a decoded YAML scalar into the canonical
// Go representation: bool, int64, float64 or string
func normalizePrimitiveValue(
	value interface{}, aType model.PrimitiveType,
) (interface{}, error) {
	switch aType {
	case model.Bool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case model.Int:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		}
	case model.Float:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
	case model.Str, model.ByteArray:
		if v, ok := value.(string); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("expected a %s value, got %v (%T)", aType, value, value)
}
