package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formrows/pkg/schema"
)

// Rule kinds understood by the validator. Unknown kinds are ignored.
const (
	KindRequired  = "required"
	KindMin       = "min"
	KindMax       = "max"
	KindMinLength = "minLength"
	KindMaxLength = "maxLength"
	KindPattern   = "pattern"
)

// DefaultRequiredMessage is reported for empty required fields.
const DefaultRequiredMessage = "This field is required"

// schemaFields maps kin-openapi schema fields back to rule kinds.
var schemaFields = map[string]string{
	"minimum":   KindMin,
	"maximum":   KindMax,
	"minLength": KindMinLength,
	"maxLength": KindMaxLength,
	"pattern":   KindPattern,
}

// Validator checks values against field rules. It is safe for concurrent use
// and caches compiled schemas per rule set.
type Validator struct {
	messages map[string]string

	mu    sync.Mutex
	cache map[string]compiled
}

// Option configures a Validator.
type Option func(*Validator)

// WithMessage replaces the message reported when a rule of kind fails.
func WithMessage(kind, message string) Option {
	return func(v *Validator) {
		v.messages[kind] = message
	}
}

// New constructs a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		messages: map[string]string{KindRequired: DefaultRequiredMessage},
		cache:    make(map[string]compiled),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

type compiled struct {
	required bool
	schema   *openapi3.Schema
}

// Validate returns one message per failing field. Blank optional values are
// not checked further.
func (v *Validator) Validate(ctx context.Context, values map[string]any, rules map[string][]schema.Rule) (map[string]string, error) {
	var messages map[string]string
	for name, fieldRules := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := v.compile(fieldRules)
		if err != nil {
			return nil, fmt.Errorf("validation: field %q: %w", name, err)
		}
		message := v.check(c, values[name])
		if message == "" {
			continue
		}
		if messages == nil {
			messages = make(map[string]string)
		}
		messages[name] = message
	}
	return messages, nil
}

func (v *Validator) check(c compiled, value any) string {
	if isBlank(value) {
		if c.required {
			return v.messages[KindRequired]
		}
		return ""
	}
	if c.schema == nil {
		return ""
	}
	err := c.schema.VisitJSON(normalize(value))
	if err == nil {
		return ""
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		if message, ok := v.messages[schemaFields[schemaErr.SchemaField]]; ok {
			return message
		}
		return sentence(schemaErr.Reason)
	}
	return sentence(err.Error())
}

func (v *Validator) compile(rules []schema.Rule) (compiled, error) {
	key := cacheKey(rules)
	v.mu.Lock()
	c, ok := v.cache[key]
	v.mu.Unlock()
	if ok {
		return c, nil
	}

	s := openapi3.NewSchema()
	constrained := false
	for _, rule := range rules {
		param := strings.TrimSpace(rule.Params["value"])
		switch rule.Kind {
		case KindRequired:
			c.required = true
			continue
		case KindMin, KindMax:
			n, err := strconv.ParseFloat(param, 64)
			if err != nil {
				return compiled{}, fmt.Errorf("rule %s: %w", rule.Kind, err)
			}
			if rule.Kind == KindMin {
				s.Min = &n
			} else {
				s.Max = &n
			}
		case KindMinLength, KindMaxLength:
			n, err := strconv.ParseUint(param, 10, 64)
			if err != nil {
				return compiled{}, fmt.Errorf("rule %s: %w", rule.Kind, err)
			}
			if rule.Kind == KindMinLength {
				s.MinLength = n
			} else {
				s.MaxLength = &n
			}
		case KindPattern:
			s.Pattern = param
		default:
			continue
		}
		constrained = true
	}
	if constrained {
		c.schema = s
	}

	v.mu.Lock()
	v.cache[key] = c
	v.mu.Unlock()
	return c, nil
}

func cacheKey(rules []schema.Rule) string {
	var b strings.Builder
	for _, rule := range rules {
		b.WriteString(rule.Kind)
		b.WriteByte('=')
		b.WriteString(rule.Params["value"])
		b.WriteByte(';')
	}
	return b.String()
}

// normalize converts numeric kinds kin-openapi does not switch on.
func normalize(value any) any {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32:
		return rv.Float()
	}
	return value
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

func sentence(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "Invalid value"
	}
	return strings.ToUpper(reason[:1]) + reason[1:]
}
