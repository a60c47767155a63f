package model

import "fmt"

// inheritancesOf returns the direct ancestors of a type as Type values.
// Enumerations have no inheritance.
func inheritancesOf(t Type) []Type {
	switch concrete := t.(type) {
	case *Class:
		result := make([]Type, len(concrete.Inheritances))
		for i, parent := range concrete.Inheritances {
			result[i] = parent
		}
		return result
	case *ConstrainedPrimitive:
		result := make([]Type, len(concrete.Inheritances))
		for i, parent := range concrete.Inheritances {
			result[i] = parent
		}
		return result
	default:
		return nil
	}
}

// TopologicalSort orders the types so that every ancestor precedes all of
// its descendants. The order is deterministic: among types whose ancestors
// are already placed, the declaration order is kept. A cycle in the
// inheritance graph is an error.
func TopologicalSort(types []Type) ([]Type, error) {
	result := make([]Type, 0, len(types))
	placed := make(map[Type]bool, len(types))

	for len(result) < len(types) {
		progressed := false
		for _, t := range types {
			if placed[t] {
				continue
			}

			ready := true
			for _, parent := range inheritancesOf(t) {
				if !placed[parent] {
					ready = false
					break
				}
			}

			if ready {
				result = append(result, t)
				placed[t] = true
				progressed = true
			}
		}

		if !progressed {
			for _, t := range types {
				if !placed[t] {
					return nil, fmt.Errorf(
						"cycle in the inheritance graph involving the type %s",
						t.TypeName())
				}
			}
		}
	}

	return result, nil
}
