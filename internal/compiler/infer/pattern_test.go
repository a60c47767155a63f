package infer

import (
	"testing"

	"github.com/metac-lang/metac/internal/compiler/model"
)

func testVerifications() model.PatternVerificationsByName {
	return model.MapPatternVerificationsByName([]*model.PatternVerification{
		{Name: "matches_id_short", Pattern: "^[a-zA-Z][a-zA-Z0-9_]*$"},
		{Name: "matches_mime_type", Pattern: "^[-\\w.]+/[-\\w.]+$"},
	})
}

func patternsOf(
	t *testing.T, cls *model.Class, propName string,
) []PatternConstraint {
	t.Helper()

	patterns := PatternsFromInvariants(cls, testVerifications())

	prop, ok := cls.PropertyByName(propName)
	if !ok {
		t.Fatalf("no property %s on the class %s", propName, cls.Name)
	}
	return patterns[prop]
}

func TestPatternsFromInvariants(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{strProperty("name")},
		[]string{"matches_id_short(self.name)"})

	got := patternsOf(t, cls, "name")
	if len(got) != 1 {
		t.Fatalf("expected one pattern, got %d", len(got))
	}
	if got[0].Pattern != "^[a-zA-Z][a-zA-Z0-9_]*$" {
		t.Errorf("unexpected pattern: %s", got[0].Pattern)
	}
}

func TestPatternsFromInvariants_DiscoveryOrder(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{strProperty("name")},
		[]string{
			"matches_mime_type(self.name)",
			"matches_id_short(self.name)",
		})

	got := patternsOf(t, cls, "name")
	if len(got) != 2 {
		t.Fatalf("expected two patterns, got %d", len(got))
	}
	if got[0].Pattern != "^[-\\w.]+/[-\\w.]+$" {
		t.Errorf("patterns must keep the discovery order; got %s first",
			got[0].Pattern)
	}
}

func TestPatternsFromInvariants_Conjunction(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{strProperty("name")},
		[]string{"matches_id_short(self.name) and matches_mime_type(self.name)"})

	got := patternsOf(t, cls, "name")
	if len(got) != 2 {
		t.Fatalf("expected both conjuncts matched, got %d", len(got))
	}
}

func TestPatternsFromInvariants_Conditional(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{optionalStrProperty("name")},
		[]string{"not (self.name is not None) or matches_id_short(self.name)"})

	got := patternsOf(t, cls, "name")
	if len(got) != 1 {
		t.Fatalf("expected one pattern, got %d", len(got))
	}
}

func TestPatternsFromInvariants_ConditionalOnDifferentProperty(t *testing.T) {
	// The consequent constrains another property than the antecedent guards,
	// so the pattern holds only conditionally and must not be inferred.
	cls := buildClass(t, "Something",
		[]*model.Property{
			optionalStrProperty("name"),
			strProperty("category"),
		},
		[]string{"not (self.name is not None) or matches_id_short(self.category)"})

	patterns := PatternsFromInvariants(cls, testVerifications())
	if len(patterns) != 0 {
		t.Errorf("expected no patterns, got %d", len(patterns))
	}
}

func TestPatternsFromInvariants_UnknownFunction(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{strProperty("name")},
		[]string{"matches_something_else(self.name)"})

	patterns := PatternsFromInvariants(cls, testVerifications())
	if len(patterns) != 0 {
		t.Errorf("a call outside the registry must not match, got %d patterns",
			len(patterns))
	}
}

func TestPatternsFromInvariants_NoDeduplication(t *testing.T) {
	cls := buildClass(t, "Something",
		[]*model.Property{strProperty("name")},
		[]string{
			"matches_id_short(self.name)",
			"matches_id_short(self.name)",
		})

	got := patternsOf(t, cls, "name")
	if len(got) != 2 {
		t.Errorf("patterns are not deduplicated at inference, got %d", len(got))
	}
}

func TestInferPatternsOnSelf(t *testing.T) {
	primitive := buildConstrainedString(t, "Id_short", nil,
		[]string{"matches_id_short(self)"})

	got := InferPatternsOnSelf(primitive, testVerifications())
	if len(got) != 1 {
		t.Fatalf("expected one pattern, got %d", len(got))
	}
	if got[0].Pattern != "^[a-zA-Z][a-zA-Z0-9_]*$" {
		t.Errorf("unexpected pattern: %s", got[0].Pattern)
	}
}

func TestInferPatternsOnSelf_Conjunction(t *testing.T) {
	primitive := buildConstrainedString(t, "Typed_id", nil,
		[]string{"matches_id_short(self) and matches_mime_type(self)"})

	got := InferPatternsOnSelf(primitive, testVerifications())
	if len(got) != 2 {
		t.Fatalf("expected two patterns, got %d", len(got))
	}
}
