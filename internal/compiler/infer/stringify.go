package infer

import (
	"fmt"
	"sort"
	"strings"
)

// The dump format is part of the observable contract: golden files in the
// regression tests compare against it verbatim. Field order and the 2-space
// indentation per nesting level must therefore stay stable.
//
// For example:
//
//	LenConstraint(
//	  min_value=11,
//	  max_value=None)

// entity represents a stringifiable value defined by its named properties
type entity struct {
	name       string
	properties []entityProperty
}

type entityProperty struct {
	name  string
	value interface{}
}

// mapEntry is a key/value pair of an ordered mapping
type mapEntry struct {
	key   string
	value interface{}
}

// orderedMap preserves the insertion order of the dumped mapping
type orderedMap []mapEntry

// reprString renders a string the way the dump format expects it:
// single-quoted with backslashes and quotes escaped
func reprString(value string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range value {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// indentButFirstLine indents all the lines of the text except the first one
func indentButFirstLine(text, indention string) string {
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indention + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// indentAllLines indents every non-empty line of the text
func indentAllLines(text, indention string) string {
	lines := strings.Split(text, "\n")
	for i := range lines {
		if lines[i] != "" {
			lines[i] = indention + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// dumpValue produces the string representation of any dumpable value
func dumpValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%v", v)
	case string:
		return reprString(v)
	case *int:
		if v == nil {
			return "None"
		}
		return fmt.Sprintf("%d", *v)
	case *entity:
		return dumpEntity(v)
	case []interface{}:
		return dumpSequence(v)
	case orderedMap:
		return dumpMap(v)
	default:
		panic(fmt.Sprintf("unexpected dumpable value of type %T", value))
	}
}

func dumpEntity(e *entity) string {
	if len(e.properties) == 0 {
		return e.name + "()"
	}

	var b strings.Builder
	b.WriteString(e.name)
	b.WriteString("(\n")

	for i, prop := range e.properties {
		valueStr := dumpValue(prop.value)
		b.WriteString("  ")
		b.WriteString(prop.name)
		b.WriteString("=")
		b.WriteString(indentButFirstLine(valueStr, "  "))

		if i == len(e.properties)-1 {
			b.WriteString(")")
		} else {
			b.WriteString(",\n")
		}
	}

	return b.String()
}

func dumpSequence(values []interface{}) string {
	if len(values) == 0 {
		return "[]"
	}

	var b strings.Builder
	b.WriteString("[\n")

	for i, value := range values {
		b.WriteString(indentAllLines(dumpValue(value), "  "))

		if i == len(values)-1 {
			b.WriteString("]")
		} else {
			b.WriteString(",\n")
		}
	}

	return b.String()
}

func dumpMap(entries orderedMap) string {
	if len(entries) == 0 {
		return "{}"
	}

	var b strings.Builder
	b.WriteString("{\n")

	for i, entry := range entries {
		entryStr := reprString(entry.key) + ": " + dumpValue(entry.value)
		b.WriteString(indentAllLines(entryStr, "  "))

		if i == len(entries)-1 {
			b.WriteString("}")
		} else {
			b.WriteString(",\n")
		}
	}

	return b.String()
}

func stringifyLenConstraint(that *LenConstraint) *entity {
	return &entity{
		name: "LenConstraint",
		properties: []entityProperty{
			{name: "min_value", value: that.MinValue},
			{name: "max_value", value: that.MaxValue},
		},
	}
}

func stringifyPatternConstraint(that PatternConstraint) *entity {
	return &entity{
		name: "PatternConstraint",
		properties: []entityProperty{
			{name: "pattern", value: that.Pattern},
		},
	}
}

func stringifyPatternConstraints(that []PatternConstraint) []interface{} {
	result := make([]interface{}, len(that))
	for i, constraint := range that {
		result[i] = stringifyPatternConstraint(constraint)
	}
	return result
}

func stringifySetOfPrimitivesConstraint(that *SetOfPrimitivesConstraint) *entity {
	literals := make([]interface{}, len(that.Literals))
	for i, literal := range that.Literals {
		literals[i] = literal.Value
	}

	return &entity{
		name: "SetOfPrimitivesConstraint",
		properties: []entityProperty{
			{name: "a_type", value: that.AType.String()},
			{name: "literals", value: literals},
		},
	}
}

func stringifySetOfEnumerationLiteralsConstraint(
	that *SetOfEnumerationLiteralsConstraint,
) *entity {
	literals := make([]interface{}, len(that.Literals))
	for i, literal := range that.Literals {
		literals[i] = literal.Name
	}

	return &entity{
		name: "SetOfEnumerationLiteralsConstraint",
		properties: []entityProperty{
			{name: "enumeration", value: that.Enumeration.Name},
			{name: "literals", value: literals},
		},
	}
}

func stringifyConstraintsByProperty(that *ConstraintsByProperty) *entity {
	var lenEntries, patternEntries, primitiveSetEntries, enumSetEntries orderedMap

	for _, prop := range that.Properties {
		if lenConstraint, ok := that.LenConstraintsByProperty[prop]; ok {
			lenEntries = append(lenEntries, mapEntry{
				key: prop.Name, value: stringifyLenConstraint(lenConstraint)})
		}
	}

	for _, prop := range that.Properties {
		if patterns, ok := that.PatternsByProperty[prop]; ok {
			patternEntries = append(patternEntries, mapEntry{
				key: prop.Name, value: stringifyPatternConstraints(patterns)})
		}
	}

	for _, prop := range that.Properties {
		if constraint, ok := that.SetOfPrimitivesByProperty[prop]; ok {
			primitiveSetEntries = append(primitiveSetEntries, mapEntry{
				key: prop.Name, value: stringifySetOfPrimitivesConstraint(constraint)})
		}
	}

	for _, prop := range that.Properties {
		if constraint, ok := that.SetOfEnumerationLiteralsByProperty[prop]; ok {
			enumSetEntries = append(enumSetEntries, mapEntry{
				key: prop.Name,
				value: stringifySetOfEnumerationLiteralsConstraint(constraint)})
		}
	}

	if lenEntries == nil {
		lenEntries = orderedMap{}
	}
	if patternEntries == nil {
		patternEntries = orderedMap{}
	}
	if primitiveSetEntries == nil {
		primitiveSetEntries = orderedMap{}
	}
	if enumSetEntries == nil {
		enumSetEntries = orderedMap{}
	}

	return &entity{
		name: "ConstraintsByProperty",
		properties: []entityProperty{
			{name: "len_constraints_by_property", value: lenEntries},
			{name: "patterns_by_property", value: patternEntries},
			{name: "set_of_primitives_by_property", value: primitiveSetEntries},
			{name: "set_of_enumeration_literals_by_property", value: enumSetEntries},
		},
	}
}

// Dump produces the stable string representation of an inferred constraint
// for diagnostics and golden-file regression tests
func Dump(that interface{}) string {
	switch v := that.(type) {
	case nil:
		return "None"
	case *LenConstraint:
		return dumpValue(stringifyLenConstraint(v))
	case PatternConstraint:
		return dumpValue(stringifyPatternConstraint(v))
	case []PatternConstraint:
		return dumpValue(stringifyPatternConstraints(v))
	case *SetOfPrimitivesConstraint:
		return dumpValue(stringifySetOfPrimitivesConstraint(v))
	case *SetOfEnumerationLiteralsConstraint:
		return dumpValue(stringifySetOfEnumerationLiteralsConstraint(v))
	case *ConstraintsByProperty:
		return dumpValue(stringifyConstraintsByProperty(v))
	default:
		panic(fmt.Sprintf("no stringification for the type %T", that))
	}
}

// DumpErrors renders a deterministic, human-readable report of the collected
// inference errors, sorted by location for reproducibility
func DumpErrors(errors []*Error) string {
	sorted := make([]*Error, len(errors))
	copy(sorted, errors)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Location.Line != sorted[j].Location.Line {
			return sorted[i].Location.Line < sorted[j].Location.Line
		}
		return sorted[i].Location.Column < sorted[j].Location.Column
	})

	var b strings.Builder
	for i, err := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(err.Error())
	}
	return b.String()
}
