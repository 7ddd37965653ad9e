package httpform

import (
	"context"
	"net/url"
)

// requestRouter exposes a request's query to URL sync. Replace records the
// next query so the handler can redirect to it.
type requestRouter struct {
	ready    bool
	query    url.Values
	replaced url.Values
}

func newRequestRouter(query url.Values, ready bool) *requestRouter {
	return &requestRouter{ready: ready, query: query}
}

func (r *requestRouter) Ready() bool { return r.ready }

func (r *requestRouter) Query() url.Values {
	if r.replaced != nil {
		return r.replaced
	}
	return r.query
}

func (r *requestRouter) Replace(_ context.Context, query url.Values) error {
	r.replaced = query
	return nil
}
