package submit_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrows/pkg/form"
	"github.com/goliatone/go-formrows/pkg/schema"
	"github.com/goliatone/go-formrows/pkg/submit"
)

func orderSchema() schema.Schema {
	return schema.Schema{
		schema.Row{{Name: "customer"}},
		&schema.Container{
			Kind:         schema.KindConditional,
			Name:         "shipping",
			ControlledBy: "enabled",
			Options:      schema.Row{{Name: "enabled"}},
			Children:     []schema.Row{{{Name: "street"}, {Name: "zip"}}},
		},
		&schema.Container{
			Kind:       schema.KindAccordion,
			Name:       "meta",
			Structured: true,
			Children:   []schema.Row{{{Name: "lang"}, {Name: "express", ConditionalOption: true}}},
		},
		&schema.Container{
			Kind:     schema.KindAccordion,
			Name:     "notes",
			Children: []schema.Row{{{Name: "body"}}},
		},
		&schema.Container{
			Kind:     schema.KindPlain,
			Name:     "audit",
			Children: []schema.Row{{{Name: "by"}}},
		},
	}
}

func TestReshape(t *testing.T) {
	t.Parallel()

	flat := map[string]any{
		"customer":               "ACME",
		"shippingOptionsenabled": true,
		"shippingstreet":         "Main 1",
		"shippingzip":            "00-001",
		"metalang":               "en",
		"metaOptionsexpress":     false,
		"notesbody":              "call first",
		"auditby":                "ops",
	}
	before := map[string]any{}
	for k, v := range flat {
		before[k] = v
	}

	tag := ""
	externals := form.Externals{
		{Name: "tag", Get: func() any { return tag }, Options: []form.ExternalOption{form.ExternalSubmit}},
		{Name: "page", Get: func() any { return 2 }, Options: []form.ExternalOption{form.ExternalURL}},
	}

	got := submit.Reshape(flat, orderSchema(), externals)
	want := map[string]any{
		"customer": "ACME",
		"shipping": map[string]any{
			"options": map[string]any{"enabled": true},
			"street":  "Main 1",
			"zip":     "00-001",
		},
		"meta": map[string]any{
			"options": map[string]any{"express": false},
			"lang":    "en",
		},
		"notesbody": "call first",
		"auditby":   "ops",
		"tag":       nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, flat); diff != "" {
		t.Fatalf("reshape mutated its input (-want +got):\n%s", diff)
	}
}

func TestReshape_AbsentKeysStayAbsent(t *testing.T) {
	t.Parallel()

	got := submit.Reshape(map[string]any{"shippingstreet": "Main 1"}, orderSchema(), nil)
	want := map[string]any{
		"shipping": map[string]any{"options": map[string]any{}, "street": "Main 1"},
		"meta":     map[string]any{"options": map[string]any{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestReshape_ExternalsKeepNonEmptyValues(t *testing.T) {
	t.Parallel()

	submitOnly := []form.ExternalOption{form.ExternalSubmit}
	externals := form.Externals{
		{Name: "q", Get: func() any { return " " }, Options: submitOnly},
		{Name: "tags", Get: func() any { return []any{} }, Options: submitOnly},
		{Name: "count", Get: func() any { return 0 }, Options: submitOnly},
	}

	got := submit.Reshape(map[string]any{}, schema.Schema{}, externals)
	want := map[string]any{"q": " ", "tags": []any{}, "count": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenThenReshapeIsIdentity(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"customer": "ACME",
		"shipping": map[string]any{
			"options": map[string]any{"enabled": true},
			"street":  "Main 1",
			"zip":     "00-001",
		},
		"meta": map[string]any{
			"options": map[string]any{"express": true},
			"lang":    "pl",
		},
		"notesbody": "x",
	}

	flat := submit.Flatten(payload, orderSchema())
	wantFlat := map[string]any{
		"customer":               "ACME",
		"shippingOptionsenabled": true,
		"shippingstreet":         "Main 1",
		"shippingzip":            "00-001",
		"metaOptionsexpress":     true,
		"metalang":               "pl",
		"notesbody":              "x",
	}
	if diff := cmp.Diff(wantFlat, flat); diff != "" {
		t.Fatalf("flat mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(payload, submit.Reshape(flat, orderSchema(), nil)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestModifies(t *testing.T) {
	t.Parallel()

	cases := []struct {
		container *schema.Container
		want      bool
	}{
		{&schema.Container{Kind: schema.KindConditional}, true},
		{&schema.Container{Kind: schema.KindAccordion, Structured: true}, true},
		{&schema.Container{Kind: schema.KindAccordion}, false},
		{&schema.Container{Kind: schema.KindPlain, Structured: true}, false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := submit.Modifies(tc.container); got != tc.want {
			t.Fatalf("Modifies(%+v) = %v, want %v", tc.container, got, tc.want)
		}
	}
}
