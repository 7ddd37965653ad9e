package form

import (
	"context"

	"github.com/goliatone/go-formrows/pkg/schema"
)

// Validator checks values against field rules. Rule semantics belong to the
// implementation; the form only records the returned messages, keyed by wire
// name. An error return aborts submission.
type Validator interface {
	Validate(ctx context.Context, values map[string]any, rules map[string][]schema.Rule) (map[string]string, error)
}

// ValidatorFunc adapts a function into a Validator.
type ValidatorFunc func(ctx context.Context, values map[string]any, rules map[string][]schema.Rule) (map[string]string, error)

// Validate delegates to the underlying function.
func (fn ValidatorFunc) Validate(ctx context.Context, values map[string]any, rules map[string][]schema.Rule) (map[string]string, error) {
	return fn(ctx, values, rules)
}
