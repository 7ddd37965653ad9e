package vanilla

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// sanitizeMarkup cleans caller-supplied button and external input markup.
// Form controls, simple wrappers and inline SVG icons survive; scripts and
// event handler attributes do not.
func sanitizeMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(markupSanitizer().Sanitize(trimmed))
}

func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()

		controls := []string{"input", "select", "option", "textarea", "button", "label"}
		wrappers := []string{"div", "span", "small", "strong", "em", "a"}
		policy.AllowElements(controls...)
		policy.AllowElements(wrappers...)

		policy.AllowAttrs("class", "id", "title", "role", "aria-label", "aria-hidden").Globally()
		policy.AllowDataAttributes()

		policy.AllowAttrs(
			"type", "name", "value", "placeholder", "checked", "disabled",
			"readonly", "required", "min", "max", "step", "maxlength",
			"autocomplete", "form",
		).OnElements("input")
		policy.AllowAttrs("name", "disabled", "multiple", "required", "form").OnElements("select")
		policy.AllowAttrs("value", "selected", "disabled").OnElements("option")
		policy.AllowAttrs("name", "rows", "cols", "placeholder", "disabled", "readonly", "form").OnElements("textarea")
		policy.AllowAttrs("type", "name", "value", "disabled", "form").OnElements("button")
		policy.AllowAttrs("for").OnElements("label")

		policy.AllowStandardURLs()
		policy.AllowAttrs("href").OnElements("a")

		// Inline icons inside buttons.
		policy.AllowElements("svg", "g", "path", "circle", "rect", "line", "polyline", "polygon", "title")
		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "focusable",
		).OnElements("svg")
		for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
				"points", "rx", "ry", "fill", "stroke", "stroke-width",
			).OnElements(el)
		}

		markupPolicy = policy
	})
	return markupPolicy
}
