package form_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrows/pkg/form"
	"github.com/goliatone/go-formrows/pkg/naming"
	"github.com/goliatone/go-formrows/pkg/schema"
)

func TestDisabledPolicy_GateBaseline(t *testing.T) {
	t.Parallel()

	store := form.NewStore(map[string]any{"mode": "draft", "title": "", "locked": nil})
	policy := form.NewDisabledPolicy(false, "mode", store)
	binder := form.Binder{Store: store, Policy: policy}

	mode := binder.Bind(naming.Key{Local: "mode"}, schema.Field{Name: "mode"})
	title := binder.Bind(naming.Key{Local: "title"}, schema.Field{Name: "title"})
	locked := binder.Bind(naming.Key{Local: "locked"}, schema.Field{Name: "locked", Disabled: true})

	if mode.Disabled() {
		t.Fatalf("gate field must stay enabled")
	}
	if !title.Disabled() || !locked.Disabled() {
		t.Fatalf("non-gate fields must be disabled while the gate is untouched")
	}

	mode.Change("published")

	if title.Disabled() {
		t.Fatalf("title should follow its static flag once the gate moved")
	}
	if !locked.Disabled() {
		t.Fatalf("locked keeps its static disabled flag")
	}

	mode.Change("draft")
	if !title.Disabled() {
		t.Fatalf("returning the gate to its baseline disables fields again")
	}
}

func TestDisabledPolicy_ReadOnlyWins(t *testing.T) {
	t.Parallel()

	policy := form.DisabledPolicy{ReadOnly: true, Gate: "mode", Baseline: "draft"}
	if !policy.Disabled("mode", false, "published") {
		t.Fatalf("read-only form disables every field")
	}
}

func TestDisabledPolicy_BaselineCapturedOnce(t *testing.T) {
	t.Parallel()

	store := form.NewStore(map[string]any{"mode": "draft"})
	policy := form.NewDisabledPolicy(false, "mode", store)
	store.SetValue("mode", "published")

	if !policy.GateOpen(store.Value("mode")) {
		t.Fatalf("baseline must not follow later writes")
	}
	if policy.Baseline != "draft" {
		t.Fatalf("baseline = %v, want draft", policy.Baseline)
	}
}

type changeRecorder struct {
	events []schema.ChangeEvent
}

func TestBinding_ChangeRunsCallbackAfterWrite(t *testing.T) {
	t.Parallel()

	store := form.NewStore(map[string]any{"country": nil, "addressregion": "north"})
	store.SetError("addressregion", "stale")

	rec := &changeRecorder{}
	field := schema.Field{
		Name: "country",
		OnChange: func(event schema.ChangeEvent, m schema.Mutator) {
			rec.events = append(rec.events, event)
			if m.Value("country") != event.Value {
				t.Errorf("callback ran before the store write")
			}
			m.SetValue("addressregion", nil)
			m.ClearErrors("addressregion")
		},
	}
	binding := form.Binder{Store: store}.Bind(naming.Key{Local: "country"}, field)
	binding.Dispatch(schema.ChangeEvent{Value: "PL", Raw: []string{"PL"}})

	want := []schema.ChangeEvent{{Name: "country", Value: "PL", Raw: []string{"PL"}}}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if got := store.Value("addressregion"); got != nil {
		t.Fatalf("dependent field not cleared: %v", got)
	}
	if _, ok := store.Error("addressregion"); ok {
		t.Fatalf("dependent error not cleared")
	}
}

func TestBinding_KeyDown(t *testing.T) {
	t.Parallel()

	store := form.NewStore(map[string]any{"q": "", "notes": ""})
	submits := 0
	binder := form.Binder{Store: store, EnterSubmit: true, Submit: func() { submits++ }}

	q := binder.Bind(naming.Key{Local: "q"}, schema.Field{Name: "q", Type: schema.TypeText})
	notes := binder.Bind(naming.Key{Local: "notes"}, schema.Field{Name: "notes", Type: schema.TypeTextArea})
	optOut := binder.Bind(naming.Key{Local: "q"}, schema.Field{Name: "q", StaticProps: map[string]any{"preventEnterSubmit": true}})

	if q.KeyDown(form.KeyEvent{Key: "a"}) {
		t.Fatalf("non-Enter key must not submit")
	}
	if !q.KeyDown(form.KeyEvent{Key: form.KeyEnter}) {
		t.Fatalf("Enter should submit")
	}
	if q.KeyDown(form.KeyEvent{Key: form.KeyEnter, Composing: true}) {
		t.Fatalf("composing Enter must not submit")
	}
	if notes.KeyDown(form.KeyEvent{Key: form.KeyEnter}) {
		t.Fatalf("textarea Enter must not submit")
	}
	if optOut.KeyDown(form.KeyEvent{Key: form.KeyEnter}) {
		t.Fatalf("preventEnterSubmit must not submit")
	}
	if submits != 1 {
		t.Fatalf("submits = %d, want 1", submits)
	}

	suppressed := form.Binder{Store: store, EnterSubmit: false, Submit: func() { submits++ }}.
		Bind(naming.Key{Local: "q"}, schema.Field{Name: "q"})
	if suppressed.KeyDown(form.KeyEvent{Key: form.KeyEnter}) {
		t.Fatalf("suppressed form must not submit on Enter")
	}
}

func TestBinding_Props(t *testing.T) {
	t.Parallel()

	store := form.NewStore(map[string]any{"shippingzip": "00-001", "shippingOptionsenabled": true})
	store.SetError("shippingzip", "Invalid zip")

	field := schema.Field{
		Name:        "zip",
		Type:        schema.TypeText,
		Component:   "text",
		Placeholder: "Zip",
		StaticProps: map[string]any{"maxLength": 6, "disabled": false},
		DynamicProps: func(m schema.Mutator) map[string]any {
			return map[string]any{"required": m.Value("shippingOptionsenabled")}
		},
	}
	key := naming.Key{Namespace: "shipping", Local: "zip"}
	got := form.Binder{Store: store}.Bind(key, field).Props()

	want := form.Props{
		Name:           "shippingzip",
		Value:          "00-001",
		Type:           schema.TypeText,
		Component:      "text",
		Placeholder:    "Zip",
		LabelPlacement: "top",
		Invalid:        true,
		Message:        "Invalid zip",
		Extra:          map[string]any{"maxLength": 6, "required": true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_WatchIsFieldScoped(t *testing.T) {
	t.Parallel()

	store := form.NewStore(map[string]any{"a": nil, "b": nil})
	var seen []string
	cancel := store.Watch("a", func(name string, value any) {
		seen = append(seen, name)
	})

	store.SetValue("b", 1)
	store.SetValue("a", 1)
	cancel()
	store.SetValue("a", 2)

	if diff := cmp.Diff([]string{"a"}, seen); diff != "" {
		t.Fatalf("watch notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ResetAndDirty(t *testing.T) {
	t.Parallel()

	store := form.NewStore(map[string]any{"name": "", "age": nil})
	if store.Dirty() {
		t.Fatalf("fresh store must not be dirty")
	}
	store.SetValue("name", "Ada")
	store.SetError("name", "taken")
	store.Touch("name")
	if !store.Dirty() {
		t.Fatalf("store should be dirty after a write")
	}

	store.Reset(map[string]any{"age": 36})
	want := map[string]any{"name": "", "age": 36}
	if diff := cmp.Diff(want, store.Values()); diff != "" {
		t.Fatalf("values after reset mismatch (-want +got):\n%s", diff)
	}
	if len(store.Errors()) != 0 || store.Touched("name") {
		t.Fatalf("reset must clear errors and touched flags")
	}
}

func TestStore_FocusIsBestEffort(t *testing.T) {
	t.Parallel()

	store := form.NewStore(map[string]any{"email": ""})
	if store.Focus("missing") {
		t.Fatalf("focus on unknown field must report false")
	}
	if !store.Focus("email") || store.Focused() != "email" {
		t.Fatalf("focus on known field should succeed")
	}
}

func TestExternals(t *testing.T) {
	t.Parallel()

	values := map[string]any{"search": "", "page": 3}
	externals := form.Externals{
		{
			Name:    "search",
			Get:     func() any { return values["search"] },
			Set:     func(v any) { values["search"] = v },
			Options: []form.ExternalOption{form.ExternalSubmit, form.ExternalReset},
		},
		{
			Name:    "page",
			Get:     func() any { return values["page"] },
			Set:     func(v any) { values["page"] = v },
			Options: []form.ExternalOption{form.ExternalURL},
		},
	}

	if got := externals[0].NullableValue(); got != nil {
		t.Fatalf("empty external should read as nil, got %v", got)
	}
	if len(externals.With(form.ExternalURL)) != 1 {
		t.Fatalf("expected one url external")
	}
	if _, ok := externals.Find("page"); !ok {
		t.Fatalf("expected to find page")
	}

	externals.ResetAll()
	if values["search"] != nil || values["page"] != 3 {
		t.Fatalf("reset touched the wrong inputs: %v", values)
	}
}
