package httpform

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elnormous/contenttype"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-formrows/pkg/orchestrator"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/renderers/jsonplan"
	"github.com/goliatone/go-formrows/pkg/renderers/vanilla"
)

// ActionField carries the pressed button. The value "cancel" runs the cancel
// handler instead of submitting.
const ActionField = "_action"

const defaultMaxBodyBytes = 1 << 20

var (
	jsonMediaType = contenttype.NewMediaType("application/json")
	formMediaType = contenttype.NewMediaType("application/x-www-form-urlencoded")
	htmlMediaType = contenttype.NewMediaType("text/html")

	responseMediaTypes = []contenttype.MediaType{htmlMediaType, jsonMediaType}
)

// Factory builds a fresh session for one request.
type Factory func(r *http.Request) (*orchestrator.Orchestrator, error)

// RenderOptionsFunc supplies per-request render options such as CSRF tokens.
type RenderOptionsFunc func(r *http.Request) render.RenderOptions

type Option func(*Handler)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.log = logger
		}
	}
}

// WithRenderer selects the renderer used for HTML responses.
func WithRenderer(name string) Option {
	return func(h *Handler) {
		h.renderer = strings.TrimSpace(name)
	}
}

// WithRenderOptions installs a per-request render options hook.
func WithRenderOptions(fn RenderOptionsFunc) Option {
	return func(h *Handler) {
		h.renderOptions = fn
	}
}

// WithMaxBodyBytes limits POST bodies.
func WithMaxBodyBytes(limit int64) Option {
	return func(h *Handler) {
		if limit > 0 {
			h.maxBody = limit
		}
	}
}

// Handler is an http.Handler serving one form.
type Handler struct {
	factory       Factory
	log           *slog.Logger
	renderer      string
	renderOptions RenderOptionsFunc
	maxBody       int64
}

var _ http.Handler = (*Handler)(nil)

// New builds a Handler. The factory is required.
func New(factory Factory, opts ...Option) (*Handler, error) {
	if factory == nil {
		return nil, errors.New("httpform: factory is required")
	}
	h := &Handler{
		factory:  factory,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		renderer: vanilla.Name,
		maxBody:  defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.factory(r)
	if err != nil {
		h.fail(w, r, "session.create.fail", err)
		return
	}
	defer session.Close()

	router := newRequestRouter(r.URL.Query(), true)
	mounted, err := session.Mount(ctx, router)
	if err != nil {
		h.fail(w, r, "form.mount.fail", err)
		return
	}
	h.log.InfoContext(ctx, "http.form.get",
		slog.String("form", session.ID()),
		slog.Bool("imported", mounted.Imported),
	)

	status := http.StatusOK
	if mounted.Submit != nil && mounted.Submit.Invalid {
		status = http.StatusUnprocessableEntity
	}
	h.writeForm(w, r, session, status)
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.factory(r)
	if err != nil {
		h.fail(w, r, "session.create.fail", err)
		return
	}
	defer session.Close()

	// The action URL's query is published to, never imported from.
	router := newRequestRouter(r.URL.Query(), false)
	if _, err := session.Mount(ctx, router); err != nil {
		h.fail(w, r, "form.mount.fail", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	ctype, err := contenttype.GetMediaType(r)
	switch {
	case err == nil && ctype.Matches(jsonMediaType):
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			h.log.WarnContext(ctx, "json.decode.fail", slog.String("err", err.Error()))
			return
		}
		if unknown := session.ApplyValues(payload); len(unknown) > 0 {
			h.log.DebugContext(ctx, "form.values.unknown", slog.Any("names", unknown))
		}
	case err == nil && ctype.Matches(formMediaType):
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form body", http.StatusBadRequest)
			h.log.WarnContext(ctx, "form.decode.fail", slog.String("err", err.Error()))
			return
		}
		if r.PostForm.Get(ActionField) == "cancel" {
			h.cancel(w, r, session)
			return
		}
		failures, err := session.ApplyRaw(r.PostForm)
		if err != nil {
			h.fail(w, r, "form.apply.fail", err)
			return
		}
		if len(failures) > 0 {
			h.log.InfoContext(ctx, "http.form.parse_errors", slog.Int("fields", len(failures)))
			h.writeForm(w, r, session, http.StatusUnprocessableEntity)
			return
		}
	default:
		http.Error(w, "content-type must be application/json or application/x-www-form-urlencoded", http.StatusUnsupportedMediaType)
		h.log.WarnContext(ctx, "content_type.unsupported")
		return
	}

	result, err := session.Submit(ctx)
	if err != nil {
		h.fail(w, r, "form.submit.fail", err)
		return
	}
	if result.Invalid {
		h.log.InfoContext(ctx, "http.form.invalid",
			slog.String("form", session.ID()),
			slog.Int("fields", len(result.Errors.Fields)),
		)
		h.writeForm(w, r, session, http.StatusUnprocessableEntity)
		return
	}

	target := redirectTarget(r, router)
	h.log.InfoContext(ctx, "http.form.submitted", slog.String("form", session.ID()), slog.String("location", target))
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{
			"payload":  result.Payload,
			"location": target,
		})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request, session *orchestrator.Orchestrator) {
	if err := session.Cancel(r.Context()); err != nil {
		h.fail(w, r, "form.cancel.fail", err)
		return
	}
	h.log.InfoContext(r.Context(), "http.form.cancelled", slog.String("form", session.ID()))
	http.Redirect(w, r, redirectTarget(r, nil), http.StatusSeeOther)
}

// writeForm renders the session with the negotiated renderer.
func (h *Handler) writeForm(w http.ResponseWriter, r *http.Request, session *orchestrator.Orchestrator, status int) {
	opts := render.RenderOptions{}
	if h.renderOptions != nil {
		opts = h.renderOptions(r)
	}
	if opts.Action == "" {
		opts.Action = r.URL.RequestURI()
	}

	name := h.renderer
	if wantsJSON(r) {
		name = jsonplan.Name
	}
	out, err := session.Render(r.Context(), name, opts)
	if err != nil {
		h.fail(w, r, "form.render.fail", err)
		return
	}

	contentType := "text/html; charset=utf-8"
	if name == jsonplan.Name {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(out); err != nil {
		h.log.WarnContext(r.Context(), "http.write.fail", slog.String("err", err.Error()))
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, event string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, context.Canceled) {
		status = http.StatusServiceUnavailable
	}
	h.log.ErrorContext(r.Context(), event, slog.String("err", err.Error()))
	http.Error(w, http.StatusText(status), status)
}

// redirectTarget is the request path with the published query, or the
// original query when nothing was published.
func redirectTarget(r *http.Request, router *requestRouter) string {
	query := r.URL.RawQuery
	if router != nil && router.replaced != nil {
		query = router.replaced.Encode()
	}
	if query == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + query
}

// wantsJSON reports whether the client prefers JSON over HTML.
func wantsJSON(r *http.Request) bool {
	if r.Header.Get("Accept") == "" {
		return false
	}
	mediaType, _, err := contenttype.GetAcceptableMediaType(r, responseMediaTypes)
	if err != nil {
		return false
	}
	return mediaType.Matches(jsonMediaType)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
