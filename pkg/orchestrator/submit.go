package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/goliatone/go-formrows/pkg/plan"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/schema"
	"github.com/goliatone/go-formrows/pkg/submit"
	"github.com/goliatone/go-formrows/pkg/urlsync"
	"github.com/goliatone/go-formrows/pkg/widgets"
)

// SubmitError carries a server error payload back from a submit handler.
type SubmitError struct {
	Payload render.ErrorPayload
	// Err optionally describes the failure for logs.
	Err error
}

// NewSubmitError wraps a decoded server payload.
func NewSubmitError(payload render.ErrorPayload) *SubmitError {
	return &SubmitError{Payload: payload}
}

func (e *SubmitError) Error() string {
	if e.Err != nil {
		return "orchestrator: submission rejected: " + e.Err.Error()
	}
	return fmt.Sprintf("orchestrator: submission rejected with %d errors", len(e.Payload))
}

func (e *SubmitError) Unwrap() error { return e.Err }

// SubmitResult reports the outcome of a submit.
type SubmitResult struct {
	// Payload is the reshaped payload handed to the submit handler.
	Payload map[string]any
	// Submitted is set when the handler accepted the payload.
	Submitted bool
	// Invalid is set when validation or the server rejected the values;
	// Errors then describes how the messages were routed.
	Invalid bool
	Errors  render.ErrorResult
	// Query is the exported query string when URL sync published one.
	Query url.Values
}

// Submit validates, reshapes and hands the current values to the submit
// handler. Rejections are reported in the result, not as errors; errors are
// reserved for failures of the machinery itself.
func (o *Orchestrator) Submit(ctx context.Context) (SubmitResult, error) {
	if ctx == nil {
		return SubmitResult{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return SubmitResult{}, err
	}
	o.logger.Debug("form.submit.start", "form", o.id)

	o.store.ClearErrors()
	o.setNotices(nil)
	values := o.store.Values()

	if o.validator != nil {
		rules, err := o.visibleRules()
		if err != nil {
			return SubmitResult{}, err
		}
		messages, err := o.validator.Validate(ctx, values, rules)
		if err != nil {
			return SubmitResult{}, fmt.Errorf("orchestrator: validate: %w", err)
		}
		if len(messages) > 0 {
			result := SubmitResult{Invalid: true, Errors: o.FillErrors(o.orderedPayload(messages))}
			o.logger.Info("form.submit.invalid", "form", o.id, "fields", len(result.Errors.Fields))
			return result, nil
		}
	}

	result := SubmitResult{Payload: submit.Reshape(values, o.schema, o.externals)}
	if o.onSubmit != nil {
		if err := o.onSubmit(ctx, result.Payload); err != nil {
			var rejected *SubmitError
			if !errors.As(err, &rejected) {
				o.logger.Error("form.submit.failed", "form", o.id, "error", err)
				return result, fmt.Errorf("orchestrator: submit: %w", err)
			}
			result.Invalid = true
			result.Errors = o.FillErrors(rejected.Payload)
			o.logger.Info("form.submit.rejected",
				"form", o.id,
				"fields", len(result.Errors.Fields),
				"unmatched", len(result.Errors.Unmatched),
			)
			return result, nil
		}
	}
	result.Submitted = true

	if o.sync != nil && o.router != nil {
		query, err := o.sync.Publish(ctx, o.router, values)
		if err != nil {
			return result, fmt.Errorf("orchestrator: %w", err)
		}
		result.Query = query
	}
	o.logger.Info("form.submit.done", "form", o.id)
	return result, nil
}

// orderedPayload lists field messages in schema order so the first declared
// invalid field receives focus.
func (o *Orchestrator) orderedPayload(messages map[string]string) render.ErrorPayload {
	payload := make(render.ErrorPayload, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, name := range o.names {
		if message, ok := messages[name]; ok {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			payload = append(payload, render.ErrorEntry{Key: name, Value: message})
		}
	}
	rest := make(map[string]any)
	for name, message := range messages {
		if _, ok := seen[name]; !ok {
			rest[name] = message
		}
	}
	return append(payload, render.ErrorPayloadFromMap(rest)...)
}

// visibleRules keeps the rules of fields the current plan shows; collapsed
// conditional bodies are not validated.
func (o *Orchestrator) visibleRules() (map[string][]schema.Rule, error) {
	p, err := o.Plan()
	if err != nil {
		return nil, err
	}
	rules := make(map[string][]schema.Rule)
	for _, name := range p.Names() {
		if fieldRules, ok := o.rules[name]; ok {
			rules[name] = fieldRules
		}
	}
	return rules, nil
}

// FillErrors routes a server error payload onto the form's visible fields.
// Messages for hidden or unknown fields are unmatched: the first goes to the
// notifier and all of them are kept as notices for the next render.
func (o *Orchestrator) FillErrors(payload render.ErrorPayload) render.ErrorResult {
	known := o.names
	if p, err := o.Plan(); err == nil {
		known = p.Names()
	}
	result := render.ApplyErrors(payload, known, o.store, o.notify, o.errorOptions...)
	o.setNotices(result.Unmatched)
	if result.FocusTarget != "" && !result.Focused {
		o.logger.Debug("form.focus.skipped", "form", o.id, "field", result.FocusTarget)
	}
	return result
}

func (o *Orchestrator) setNotices(notices []string) {
	o.mu.Lock()
	o.notices = append([]string(nil), notices...)
	o.mu.Unlock()
}

// Reset restores the mount-time defaults overlaid with values.
func (o *Orchestrator) Reset(values map[string]any) {
	o.store.Reset(values)
	o.setNotices(nil)
}

// FullReset restores the defaults, clears external inputs that opted into
// reset and removes the synchronised keys from the URL.
func (o *Orchestrator) FullReset(ctx context.Context) error {
	o.Reset(nil)
	o.externals.ResetAll()
	if o.sync != nil && o.router != nil {
		if err := o.sync.Clear(ctx, o.router); err != nil {
			return fmt.Errorf("orchestrator: %w", err)
		}
	}
	return nil
}

// Cancel runs the cancel handler then fully resets the form.
func (o *Orchestrator) Cancel(ctx context.Context) error {
	if o.onCancel != nil {
		if err := o.onCancel(ctx); err != nil {
			return fmt.Errorf("orchestrator: cancel: %w", err)
		}
	}
	return o.FullReset(ctx)
}

// MountResult reports what Mount did.
type MountResult struct {
	Imported bool
	Import   urlsync.ImportResult
	// Submit holds the auto-submit outcome when the import requested one.
	Submit *SubmitResult
}

// Mount attaches the router and imports the query once it is ready. Hosts
// call it on every ready notification; only the first one imports.
func (o *Orchestrator) Mount(ctx context.Context, router urlsync.Router) (MountResult, error) {
	if ctx == nil {
		return MountResult{}, errors.New("orchestrator: context is required")
	}
	o.router = router
	o.keyCtx = ctx
	if o.sync == nil {
		return MountResult{}, nil
	}

	imported, ok := o.sync.Mount(router, importTarget{o})
	if !ok {
		return MountResult{}, nil
	}
	result := MountResult{Imported: true, Import: imported}
	o.logger.Debug("form.url.imported", "form", o.id, "fields", len(imported.Values))
	if imported.Submit {
		submitted, err := o.Submit(ctx)
		if err != nil {
			return result, err
		}
		result.Submit = &submitted
	}
	return result, nil
}

// URLSync returns the synchronizer, or nil when URL sync is off.
func (o *Orchestrator) URLSync() *urlsync.Synchronizer { return o.sync }

// importTarget writes imported query values, parsing strings through the
// field's component so "false" becomes false for switches.
type importTarget struct {
	o *Orchestrator
}

func (t importTarget) SetValue(name string, value any) {
	o := t.o
	binding, ok := o.bindings[name]
	if !ok {
		o.store.SetValue(name, value)
		return
	}
	raw, isRaw := rawStrings(value)
	if !isRaw {
		o.store.SetValue(name, value)
		return
	}
	parsed, err := o.widgets.Parse(binding.Field().Component, raw)
	if err != nil {
		o.logger.Warn("form.url.parse", "form", o.id, "field", name, "error", err)
		o.store.SetValue(name, value)
		return
	}
	o.store.SetValue(name, parsed)
}

func rawStrings(value any) ([]string, bool) {
	switch v := value.(type) {
	case string:
		return []string{v}, true
	case []string:
		return v, true
	default:
		return nil, false
	}
}

// ApplyRaw writes submitted form strings through each visible, enabled
// field's component parser. Absent confirm-style components read as
// unchecked. Parse failures become field errors and are returned.
//
// The gate field is applied first and the conditional controllers second,
// each followed by a fresh plan, so the remaining fields are filtered by the
// visibility and disabled state the submission itself produces.
func (o *Orchestrator) ApplyRaw(values url.Values) (map[string]string, error) {
	failures := make(map[string]string)
	controllers := make(map[string]struct{})
	for _, c := range schema.Containers(o.schema) {
		if controller := plan.Controller(c); controller != "" {
			controllers[controller] = struct{}{}
		}
	}
	stage := func(name string) int {
		if o.gate != "" && name == o.gate {
			return 0
		}
		if _, ok := controllers[name]; ok {
			return 1
		}
		return 2
	}
	for current := 0; current <= 2; current++ {
		o.invalidate()
		p, err := o.Plan()
		if err != nil {
			return nil, err
		}
		for _, entry := range p.Entries() {
			if stage(entry.Name) == current {
				o.applyEntry(entry, values, failures)
			}
		}
	}
	return failures, nil
}

func (o *Orchestrator) applyEntry(entry plan.Entry, values url.Values, failures map[string]string) {
	if entry.Disabled {
		return
	}
	binding, ok := o.bindings[entry.Name]
	if !ok {
		return
	}
	component, _ := o.widgets.Component(entry.Field.Component)
	raw, present := values[entry.Name]
	if !present && component.Prompt != widgets.PromptConfirm {
		return
	}
	parsed, err := o.widgets.Parse(entry.Field.Component, raw)
	if err != nil {
		o.store.SetValue(entry.Name, lastString(raw))
		o.store.SetError(entry.Name, err.Error())
		failures[entry.Name] = err.Error()
		return
	}
	binding.Dispatch(schemaEvent(parsed, raw))
}

// ApplyValues writes a decoded payload. Nested data-modifying containers are
// flattened first so a previous submit payload round-trips. Unknown keys are
// returned instead of stored.
func (o *Orchestrator) ApplyValues(payload map[string]any) []string {
	var unknown []string
	flat := submit.Flatten(payload, o.schema)
	for _, name := range sortedNames(flat) {
		if binding, ok := o.bindings[name]; ok {
			binding.Dispatch(schemaEvent(flat[name], flat[name]))
			continue
		}
		if input, ok := o.externals.Find(name); ok {
			input.SetValue(flat[name])
			continue
		}
		unknown = append(unknown, name)
	}
	return unknown
}

// submitFromKey backs Enter submission. The outcome is kept for hosts that
// poll it with LastKeySubmit.
func (o *Orchestrator) submitFromKey() {
	result, err := o.Submit(o.keyCtx)
	o.mu.Lock()
	o.lastKey, o.lastError = &result, err
	o.mu.Unlock()
}

// LastKeySubmit returns the outcome of the latest Enter submission.
func (o *Orchestrator) LastKeySubmit() (*SubmitResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastKey, o.lastError
}
