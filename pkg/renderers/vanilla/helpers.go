package vanilla

import (
	"strings"

	"github.com/goliatone/go-formrows/pkg/schema"
)

func componentControlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "fr-" + trimmed
}

func componentLabelID(name string) string {
	controlID := componentControlID(name)
	if controlID == "" {
		return ""
	}
	return controlID + "-label"
}

// sanitizeClassList drops the fr- prefix reserved for generated ids.
func sanitizeClassList(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tokens := strings.Fields(value)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "fr-") {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}

// componentHandlesLabel reports whether the control template renders its own
// label next to the input.
func componentHandlesLabel(componentName string) bool {
	switch strings.TrimSpace(componentName) {
	case "checkbox", "switch":
		return true
	default:
		return false
	}
}

// layoutSpan picks one span for the server-rendered grid, preferring the
// medium breakpoint. Zero lets the row share space evenly.
func layoutSpan(layout schema.Layout) int {
	for _, span := range []int{layout.MD, layout.LG, layout.SM, layout.XS} {
		if span > 0 && span <= 24 {
			return span
		}
	}
	return 0
}
