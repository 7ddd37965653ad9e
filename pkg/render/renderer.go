package render

import (
	"context"

	"github.com/goliatone/go-formrows/pkg/form"
	"github.com/goliatone/go-formrows/pkg/plan"
)

// Session is the view of a live form a renderer needs: the current plan,
// per-field bindings and the reshaped payload.
type Session interface {
	Plan() (plan.Plan, error)
	Binding(name string) (*form.Binding, bool)
	Payload() map[string]any
}

// Renderer turns a form session into bytes (HTML, terminal text, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, session Session, options RenderOptions) ([]byte, error)
}
