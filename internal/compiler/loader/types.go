package loader

import (
	"fmt"
	"strings"

	"github.com/metac-lang/metac/internal/compiler/model"
)

var primitiveTypeByName = map[string]model.PrimitiveType{
	"bool":      model.Bool,
	"int":       model.Int,
	"float":     model.Float,
	"str":       model.Str,
	"bytearray": model.ByteArray,
}

// parseTypeAnnotation parses a type string of the meta-model source, e.g.
// `str`, `Optional[Non_empty_string]` or `List[Reference]`, against the
// named types declared so far.
func parseTypeAnnotation(
	text string,
	typesByName map[string]model.Type,
) (model.TypeAnnotation, error) {
	text = strings.TrimSpace(text)

	if inner, ok := bracketed(text, "Optional"); ok {
		value, err := parseTypeAnnotation(inner, typesByName)
		if err != nil {
			return nil, err
		}
		return &model.OptionalTypeAnnotation{Value: value}, nil
	}

	if inner, ok := bracketed(text, "List"); ok {
		items, err := parseTypeAnnotation(inner, typesByName)
		if err != nil {
			return nil, err
		}
		return &model.ListTypeAnnotation{Items: items}, nil
	}

	if primitive, ok := primitiveTypeByName[text]; ok {
		return &model.PrimitiveTypeAnnotation{AType: primitive}, nil
	}

	if ourType, ok := typesByName[text]; ok {
		return &model.OurTypeAnnotation{OurType: ourType}, nil
	}

	return nil, fmt.Errorf("unknown type %q", text)
}

// bracketed matches `Wrapper[inner]` and returns the inner text
func bracketed(text, wrapper string) (string, bool) {
	prefix := wrapper + "["
	if strings.HasPrefix(text, prefix) && strings.HasSuffix(text, "]") {
		return text[len(prefix) : len(text)-1], true
	}
	return "", false
}
