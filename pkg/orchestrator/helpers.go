package orchestrator

import (
	"sort"

	"github.com/goliatone/go-formrows/pkg/schema"
)

func schemaEvent(value any, raw any) schema.ChangeEvent {
	return schema.ChangeEvent{Value: value, Raw: raw}
}

func lastString(raw []string) string {
	if len(raw) == 0 {
		return ""
	}
	return raw[len(raw)-1]
}

func sortedNames(values map[string]any) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
