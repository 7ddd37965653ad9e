package form

import "reflect"

// Equivalent compares two value maps after dropping nil, empty-string and
// empty nested entries from both. It backs Store.Dirty.
func Equivalent(a, b map[string]any) bool {
	return reflect.DeepEqual(clean(a), clean(b))
}

func clean(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			if v == "" {
				continue
			}
			out[key] = v
		case map[string]any:
			nested := clean(v)
			if len(nested) == 0 {
				continue
			}
			out[key] = nested
		default:
			out[key] = v
		}
	}
	return out
}

func equalValues(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
