package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formrows/pkg/schema"
	"github.com/goliatone/go-formrows/pkg/visibility"
)

type hints map[string]any

func hintsOf(s *openapi3.Schema) hints {
	if s == nil {
		return nil
	}
	raw, _ := s.Extensions[ExtensionKey].(map[string]any)
	return hints(raw)
}

func (h hints) string(key string) string {
	value, _ := h[key].(string)
	return value
}

func (h hints) bool(key string) bool {
	flag, _ := h.boolOK(key)
	return flag
}

func (h hints) boolOK(key string) (bool, bool) {
	value, ok := h[key]
	if !ok {
		return false, false
	}
	return visibility.CoerceBool(value)
}

func (h hints) int(key string) (int, bool) {
	value, ok := h[key]
	if !ok {
		return 0, false
	}
	n, ok := visibility.CoerceNumber(value)
	if !ok {
		return 0, false
	}
	return int(n), true
}

func (h hints) layout() schema.Layout {
	raw, ok := h["layout"].(map[string]any)
	if !ok {
		return schema.Layout{}
	}
	span := func(key string) int {
		n, _ := hints(raw).int(key)
		return n
	}
	return schema.Layout{XS: span("xs"), SM: span("sm"), MD: span("md"), LG: span("lg")}
}
