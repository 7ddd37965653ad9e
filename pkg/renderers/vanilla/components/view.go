package components

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formrows/pkg/form"
	"github.com/goliatone/go-formrows/pkg/visibility"
)

// FieldView is the template-facing shape of a binding's props. Values are
// pre-formatted so templates stay free of logic.
type FieldView struct {
	ID             string
	Name           string
	Component      string
	Type           string
	Label          string
	LabelPlacement string
	Placeholder    string
	ClassName      string
	Value          string
	Values         []string
	Checked        bool
	Disabled       bool
	Invalid        bool
	Message        string
	Required       bool
	Choices        []ChoiceView
	// Attrs holds escaped extra attributes, ready to place inside a tag.
	Attrs string
}

// ChoiceView is one selectable option.
type ChoiceView struct {
	Label    string
	Value    string
	Selected bool
}

// NewFieldView converts props into a FieldView with the given control id.
func NewFieldView(props form.Props, id string) FieldView {
	view := FieldView{
		ID:             id,
		Name:           props.Name,
		Component:      props.Component,
		Type:           string(props.Type),
		Label:          props.Label,
		LabelPlacement: props.LabelPlacement,
		Placeholder:    props.Placeholder,
		ClassName:      props.ClassName,
		Disabled:       props.Disabled,
		Invalid:        props.Invalid,
		Message:        props.Message,
		Values:         formatValues(props.Value),
	}
	if len(view.Values) > 0 {
		view.Value = view.Values[0]
	}
	view.Checked = visibility.Truthy(props.Value)
	if flag, ok := props.Value.(string); ok {
		view.Checked, _ = visibility.CoerceBool(flag)
	}

	for _, rule := range props.Rules {
		if rule.Kind == "required" {
			view.Required = true
		}
	}

	selected := make(map[string]struct{}, len(view.Values))
	for _, value := range view.Values {
		selected[value] = struct{}{}
	}
	for _, choice := range props.Options {
		value := formatValue(choice.Value)
		_, isSelected := selected[value]
		label := choice.Label
		if label == "" {
			label = value
		}
		view.Choices = append(view.Choices, ChoiceView{Label: label, Value: value, Selected: isSelected})
	}

	view.Attrs = formatAttrs(props.Extra)
	return view
}

func formatValues(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, formatValue(item))
		}
		return out
	default:
		return []string{formatValue(v)}
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// formatAttrs renders scalar extras as HTML attributes in key order. Booleans
// become bare attributes when true and are dropped when false; composite
// values are skipped.
func formatAttrs(extra map[string]any) string {
	if len(extra) == 0 {
		return ""
	}
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		name := attrName(key)
		if name == "" {
			continue
		}
		switch v := extra[key].(type) {
		case bool:
			if v {
				parts = append(parts, name)
			}
		case string, int, int64, float64:
			parts = append(parts, fmt.Sprintf(`%s="%s"`, name, html.EscapeString(formatValue(v))))
		}
	}
	return strings.Join(parts, " ")
}

// attrName lower-cases camelCase keys (maxLength becomes maxlength) and
// rejects anything that is not a plain attribute name, including event
// handlers.
func attrName(key string) string {
	name := strings.ToLower(strings.TrimSpace(key))
	if name == "" || strings.HasPrefix(name, "on") {
		return ""
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return ""
		}
	}
	return name
}
