package visibility

import (
	"math"
	"strconv"
	"strings"
)

// Evaluator decides whether a gated region is visible. Rule is the wire name
// of the controlling field for conditional containers; custom evaluators may
// interpret it however they like.
type Evaluator interface {
	Eval(region, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Value reads a single field so
// evaluators depend only on the fields they name. Extras carries caller
// supplied context such as feature flags.
type Context struct {
	Value  func(name string) any
	Extras map[string]any
}

// Lookup reads name through ctx.Value, tolerating a nil reader.
func (c Context) Lookup(name string) any {
	if c.Value == nil {
		return nil
	}
	return c.Value(name)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(region, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(region, rule string, ctx Context) (bool, error) {
	return fn(region, rule, ctx)
}

// TruthyEvaluator shows a region while the field named by rule is truthy. A
// leading "!" inverts the test. An empty rule is always visible.
type TruthyEvaluator struct{}

// Default returns the evaluator used when callers configure none.
func Default() Evaluator { return TruthyEvaluator{} }

func (TruthyEvaluator) Eval(_ string, rule string, ctx Context) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	if negated, ok := strings.CutPrefix(rule, "!"); ok {
		return !Truthy(ctx.Lookup(strings.TrimSpace(negated))), nil
	}
	return Truthy(ctx.Lookup(rule)), nil
}

// Truthy follows JavaScript truthiness: nil, false, zero numbers and the
// empty string are falsy. Any other string, and every slice or map including
// empty ones, is truthy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	default:
		return true
	}
}

// CoerceBool interprets submitted checkbox and switch values. The second
// result is false when value cannot be read as a boolean.
func CoerceBool(value any) (bool, bool) {
	if value == nil {
		return false, false
	}
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		switch strings.ToLower(trimmed) {
		case "on", "yes":
			return true, true
		case "off", "no", "":
			return false, true
		}
		parsed, err := strconv.ParseBool(trimmed)
		if err != nil {
			return false, false
		}
		return parsed, true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		return v != 0, true
	default:
		return Truthy(value), true
	}
}

// CoerceNumber reads numeric values, including numeric strings.
func CoerceNumber(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
