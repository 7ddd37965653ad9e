package widgets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formrows/pkg/visibility"
)

// PromptKind tells terminal hosts which prompt drives a component.
type PromptKind string

const (
	PromptInput     PromptKind = "input"
	PromptConfirm   PromptKind = "confirm"
	PromptSelect    PromptKind = "select"
	PromptMultiline PromptKind = "multiline"
)

// ParseFunc turns submitted strings into the component's logical value.
type ParseFunc func(raw []string) (any, error)

// Component describes what hosts need to drive one component binding.
type Component struct {
	Name string
	// Partial is the template rendering the component, without extension.
	Partial string
	Prompt  PromptKind
	Parse   ParseFunc
}

// DateLayout is the wire format of date components.
const DateLayout = "2006-01-02"

// ParseText returns the last submitted string, or "" when nothing was sent.
func ParseText(raw []string) (any, error) {
	if len(raw) == 0 {
		return "", nil
	}
	return raw[len(raw)-1], nil
}

// ParseNumber reads integers as int64 and anything else as float64. Blank
// input is nil.
func ParseNumber(raw []string) (any, error) {
	text := strings.TrimSpace(lastOf(raw))
	if text == "" {
		return nil, nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("widgets: %q is not a number", text)
	}
	return f, nil
}

// ParseBool reads checkbox and switch submissions. Browsers omit unchecked
// boxes and hidden fallbacks come first, so the last value wins.
func ParseBool(raw []string) (any, error) {
	if len(raw) == 0 {
		return false, nil
	}
	flag, ok := visibility.CoerceBool(lastOf(raw))
	if !ok {
		return nil, fmt.Errorf("widgets: %q is not a boolean", lastOf(raw))
	}
	return flag, nil
}

// ParseChoice returns a single string, or every value for multi-selects.
func ParseChoice(raw []string) (any, error) {
	switch len(raw) {
	case 0:
		return nil, nil
	case 1:
		if raw[0] == "" {
			return nil, nil
		}
		return raw[0], nil
	default:
		return append([]string(nil), raw...), nil
	}
}

// ParseDate validates a yyyy-mm-dd value and keeps it as a string.
func ParseDate(raw []string) (any, error) {
	text := strings.TrimSpace(lastOf(raw))
	if text == "" {
		return nil, nil
	}
	if _, err := time.Parse(DateLayout, text); err != nil {
		return nil, fmt.Errorf("widgets: %q is not a %s date", text, DateLayout)
	}
	return text, nil
}

func lastOf(raw []string) string {
	if len(raw) == 0 {
		return ""
	}
	return raw[len(raw)-1]
}
