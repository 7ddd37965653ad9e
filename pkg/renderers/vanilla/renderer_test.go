package vanilla_test

import (
	"context"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formrows/pkg/form"
	"github.com/goliatone/go-formrows/pkg/orchestrator"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrows/pkg/schema"
)

func signupSchema() schema.Schema {
	return schema.Schema{
		schema.Row{
			{Name: "email", Type: schema.TypeText, Label: "Email", Placeholder: "you@example.com", Layout: schema.Layout{MD: 12}},
			{Name: "age", Type: schema.TypeNumber, Label: "Age", Rules: []schema.Rule{{Kind: "required"}}},
		},
		schema.Row{{Type: schema.TypeDivider}},
		&schema.Container{
			Kind:         schema.KindConditional,
			Name:         "shipping",
			Title:        "Shipping",
			ControlledBy: "enabled",
			Options:      schema.Row{{Name: "enabled", Type: schema.TypeSwitch, Label: "Ship it"}},
			Children:     []schema.Row{{{Name: "zip", Type: schema.TypeText, Label: "Zip"}}},
		},
		schema.Row{
			{Name: "country", Type: schema.TypeSelect, Options: []schema.Choice{{Label: "Poland", Value: "pl"}, {Label: "Germany", Value: "de"}}},
		},
	}
}

func newSession(t *testing.T, s schema.Schema, opts ...orchestrator.Option) *orchestrator.Orchestrator {
	t.Helper()
	o, err := orchestrator.New(s, opts...)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	t.Cleanup(o.Close)
	return o
}

func renderHTML(t *testing.T, session render.Session, opts render.RenderOptions) string {
	t.Helper()
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), session, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertOrder(t *testing.T, html string, needles ...string) {
	t.Helper()
	last := -1
	for _, needle := range needles {
		idx := strings.Index(html, needle)
		if idx < 0 {
			t.Fatalf("missing %q in output:\n%s", needle, html)
		}
		if idx < last {
			t.Fatalf("%q rendered out of order in:\n%s", needle, html)
		}
		last = idx
	}
}

func TestRender_FollowsSchemaOrder(t *testing.T) {
	o := newSession(t, signupSchema())
	html := renderHTML(t, o, render.RenderOptions{Action: "/signup"})

	assertOrder(t, html,
		`<form class="formrows-form" method="POST" action="/signup"`,
		`name="email"`,
		`name="age"`,
		`<hr class="formrows-divider">`,
		`data-controller="shippingOptionsenabled"`,
		`name="shippingOptionsenabled"`,
		`name="country"`,
		`class="formrows-submit"`,
	)
	if strings.Contains(html, `name="shippingzip"`) {
		t.Fatalf("hidden conditional body should not render:\n%s", html)
	}
	if !strings.Contains(html, `style="flex: 0 0 50%"`) {
		t.Fatalf("expected span width for email:\n%s", html)
	}
	if !strings.Contains(html, `<label id="fr-email-label" for="fr-email"`) {
		t.Fatalf("expected label wiring:\n%s", html)
	}
	if !strings.Contains(html, ` required`) {
		t.Fatalf("expected required attribute from rules:\n%s", html)
	}
}

func TestRender_ConditionalBodyAppearsWhenControllerSet(t *testing.T) {
	o := newSession(t, signupSchema())
	if err := o.Change("shippingOptionsenabled", true); err != nil {
		t.Fatalf("change: %v", err)
	}
	html := renderHTML(t, o, render.RenderOptions{})

	assertOrder(t, html, `name="shippingOptionsenabled" value="true" checked`, `name="shippingzip"`)
}

func TestRender_ValuesErrorsAndNotices(t *testing.T) {
	o := newSession(t, signupSchema(), orchestrator.WithDefaults(map[string]any{
		"email":   `<b>"x"</b>`,
		"country": "de",
	}))
	o.Store().SetError("email", "Email is taken")

	html := renderHTML(t, o, render.RenderOptions{
		Method:  "patch",
		Hidden:  map[string]string{"_csrf": "tok"},
		Notices: []string{"Server busy", "Server busy", " "},
	})

	for _, want := range []string{
		`value="&lt;b&gt;&quot;x&quot;&lt;/b&gt;"`,
		`aria-invalid="true" aria-describedby="fr-email-error"`,
		`<p id="fr-email-error" class="formrows-error">Email is taken</p>`,
		`<option value="de" selected>Germany</option>`,
		`<input type="hidden" name="_csrf" value="tok">`,
		`<input type="hidden" name="_method" value="PATCH">`,
		`method="POST"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("missing %q in:\n%s", want, html)
		}
	}
	if strings.Count(html, "<p>Server busy</p>") != 1 {
		t.Fatalf("expected one deduplicated notice:\n%s", html)
	}
}

func TestRender_ButtonAnchorsAndExternals(t *testing.T) {
	s := schema.Schema{
		schema.Row{
			{Name: "query", Type: schema.TypeText},
			{Name: "search", Type: schema.TypeInputAnchor},
			{Type: schema.TypeButtonAnchor},
		},
	}
	external := form.ExternalInput{
		Name:    "search",
		Element: `<input type="search" name="search" onfocus="steal()"><script>alert(1)</script>`,
	}
	o := newSession(t, s,
		orchestrator.WithButtonAnchors(true),
		orchestrator.WithExternalInputs(external),
	)

	html := renderHTML(t, o, render.RenderOptions{
		Buttons: `<button type="submit" onclick="evil()">Go</button>`,
	})

	assertOrder(t, html, `name="query"`, `<input type="search" name="search">`, `<button type="submit">Go</button>`)
	if strings.Contains(html, "script") || strings.Contains(html, "onfocus") || strings.Contains(html, "onclick") {
		t.Fatalf("unsafe markup survived:\n%s", html)
	}
	if strings.Contains(html, `class="formrows-actions"`) {
		t.Fatalf("anchored buttons should not be repeated in the action bar:\n%s", html)
	}
}

func TestRender_DefaultButtons(t *testing.T) {
	o := newSession(t, signupSchema())

	html := renderHTML(t, o, render.RenderOptions{SubmitLabel: "Save", CancelLabel: "Cancel", ButtonsDisabled: true})
	if !strings.Contains(html, `<button type="submit" class="formrows-submit" disabled>Save</button>`) {
		t.Fatalf("expected disabled submit button:\n%s", html)
	}
	if !strings.Contains(html, `value="cancel" class="formrows-cancel" disabled>Cancel</button>`) {
		t.Fatalf("expected cancel button:\n%s", html)
	}

	html = renderHTML(t, o, render.RenderOptions{HideButtons: true})
	if strings.Contains(html, "formrows-submit") {
		t.Fatalf("buttons should be hidden:\n%s", html)
	}
}

func TestRender_ThemeVariablesAndPartials(t *testing.T) {
	o := newSession(t, signupSchema())
	selection := &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:   "acme",
			Tokens: map[string]string{"color-primary": "#111"},
			Assets: theme.Assets{Prefix: "/static/acme", Files: map[string]string{"stylesheet": "acme.css"}},
		},
	}
	cfg := render.ThemeConfig(selection, render.DefaultThemeFallbacks())

	html := renderHTML(t, o, render.RenderOptions{Theme: cfg})
	for _, want := range []string{
		`style="--color-primary: #111"`,
		`<link rel="stylesheet" href="/static/acme/acme.css">`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("missing %q in:\n%s", want, html)
		}
	}
}

func TestRender_UnknownComponentFails(t *testing.T) {
	s := schema.Schema{schema.Row{{Name: "rating", Component: "stars"}}}
	o := newSession(t, s)

	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := r.Render(context.Background(), o, render.RenderOptions{}); err == nil || !strings.Contains(err.Error(), `"stars"`) {
		t.Fatalf("expected unregistered component error, got %v", err)
	}
}

func TestRenderer_Metadata(t *testing.T) {
	r, err := vanilla.New(vanilla.WithChrome(vanilla.Chrome{Form: "my-form fr-reserved"}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if r.Name() != vanilla.Name || r.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected metadata %q %q", r.Name(), r.ContentType())
	}

	o := newSession(t, signupSchema())
	out, err := r.Render(context.Background(), o, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `<form class="my-form"`) {
		t.Fatalf("expected chrome override:\n%s", out)
	}
}
