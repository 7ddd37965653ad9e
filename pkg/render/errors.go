package render

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formrows/pkg/naming"
)

// ErrorEntry is one key of a server error payload.
type ErrorEntry struct {
	Key   string
	Value any
}

// ErrorPayload is a server error map with its key order preserved. Values may
// be a message, a list of messages or a map of sub-errors.
type ErrorPayload []ErrorEntry

// DecodeErrorPayload reads a JSON object keeping the server's key order.
func DecodeErrorPayload(data []byte) (ErrorPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("render: decode error payload: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("render: error payload must be a JSON object")
	}

	var payload ErrorPayload
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("render: decode error payload: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("render: unexpected error payload key %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("render: decode error payload %q: %w", key, err)
		}
		payload = append(payload, ErrorEntry{Key: key, Value: value})
	}
	return payload, nil
}

// ErrorPayloadFromMap converts an unordered map, sorting keys so the result
// is deterministic.
func ErrorPayloadFromMap(m map[string]any) ErrorPayload {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	payload := make(ErrorPayload, 0, len(keys))
	for _, key := range keys {
		payload = append(payload, ErrorEntry{Key: key, Value: m[key]})
	}
	return payload
}

// ErrorPayloadFromStrings converts the common map-of-message-lists shape.
func ErrorPayloadFromStrings(m map[string][]string) ErrorPayload {
	generic := make(map[string]any, len(m))
	for key, messages := range m {
		generic[key] = messages
	}
	return ErrorPayloadFromMap(generic)
}

// ErrorSink receives matched field errors. Focus is best-effort and reports
// whether focus moved.
type ErrorSink interface {
	SetError(name, message string)
	Focus(name string) bool
}

// ErrorResult reports how a payload was applied.
type ErrorResult struct {
	// Fields maps matched wire names to their message.
	Fields map[string]string
	// Unmatched holds every message that matched no field, in payload order.
	Unmatched []string
	// FocusTarget is the first matched field; Focused reports whether the
	// sink accepted the focus request.
	FocusTarget string
	Focused     bool
}

// Notice returns the first unmatched message, the one surfaced to users.
func (r ErrorResult) Notice() (string, bool) {
	if len(r.Unmatched) == 0 {
		return "", false
	}
	return r.Unmatched[0], true
}

type errorConfig struct {
	normalize func(string) string
}

// ErrorOption customises ApplyErrors.
type ErrorOption func(*errorConfig)

// WithKeyNormalizer rewrites every payload key before matching.
func WithKeyNormalizer(fn func(string) string) ErrorOption {
	return func(cfg *errorConfig) {
		cfg.normalize = fn
	}
}

// ApplyErrors routes a server error payload onto known fields. Matched
// messages go to sink; the first matched field receives focus. Unmatched
// messages are collected, keeping only the message for form-level and
// numeric keys and "key: message" otherwise. notify, when set, receives the
// first unmatched message.
func ApplyErrors(payload ErrorPayload, known []string, sink ErrorSink, notify func(string), opts ...ErrorOption) ErrorResult {
	cfg := errorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, name := range known {
		knownSet[name] = struct{}{}
	}

	result := ErrorResult{}
	for _, entry := range payload {
		key := entry.Key
		if cfg.normalize != nil {
			key = cfg.normalize(key)
		}
		message := ErrorMessage(entry.Value)

		if _, ok := knownSet[key]; ok {
			if sink != nil {
				sink.SetError(key, message)
			}
			if result.Fields == nil {
				result.Fields = make(map[string]string)
			}
			result.Fields[key] = message
			if result.FocusTarget == "" {
				result.FocusTarget = key
			}
			continue
		}

		if isFormLevelKey(key) {
			result.Unmatched = append(result.Unmatched, message)
		} else {
			result.Unmatched = append(result.Unmatched, key+": "+message)
		}
	}

	if result.FocusTarget != "" && sink != nil {
		result.Focused = sink.Focus(result.FocusTarget)
	}
	if notice, ok := result.Notice(); ok && notify != nil {
		notify(notice)
	}
	return result
}

// ErrorMessage extracts the human-readable message of a payload value: the
// first element of a list, the message of the first key (sorted) of a map,
// or the value itself.
func ErrorMessage(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		if len(v) == 0 {
			return ""
		}
		return v[0]
	case []any:
		if len(v) == 0 {
			return ""
		}
		return ErrorMessage(v[0])
	case map[string]any:
		if key, ok := firstKey(v); ok {
			return ErrorMessage(v[key])
		}
		return ""
	case map[string][]string:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		if len(keys) == 0 {
			return ""
		}
		sort.Strings(keys)
		return ErrorMessage(v[keys[0]])
	case map[string]string:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		if len(keys) == 0 {
			return ""
		}
		sort.Strings(keys)
		return v[keys[0]]
	default:
		return fmt.Sprint(v)
	}
}

func firstKey(m map[string]any) (string, bool) {
	if len(m) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys[0], true
}

// CamelCaseKey turns snake_case and kebab-case keys into camelCase so Django
// or Rails style payloads line up with camelCase field names. Form-level keys
// are returned unchanged.
func CamelCaseKey(key string) string {
	if isFormLevelKey(key) {
		return key
	}
	return naming.CamelCase(key)
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.TrimSpace(key) {
	case "", "nonFieldError", "nonFieldErrors", "non_field_errors", "__all__":
		return true
	}
	return numericKey.MatchString(strings.TrimSpace(key))
}

// numericKey accepts the strings JavaScript's Number() reads as a number:
// decimals with an optional exponent, Infinity, and 0x/0o/0b integers.
// NaN, inf and hex floats are field keys.
var numericKey = regexp.MustCompile(`^(?:[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)|0[xX][0-9a-fA-F]+|0[oO][0-7]+|0[bB][01]+)$`)
