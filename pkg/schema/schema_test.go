package schema_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formrows/pkg/naming"
	"github.com/goliatone/go-formrows/pkg/schema"
)

const invoiceJSON = `[
  [{"name": "customer", "type": "text", "component": "text", "label": "Customer"}],
  [{"type": "divider"}],
  {
    "containerType": "conditional",
    "containerName": "shipping",
    "title": "Shipping",
    "controlledBy": "enabled",
    "hasConditionalOptions": true,
    "containerOptions": [{"name": "enabled", "type": "switch", "component": "switch"}],
    "children": [
      [{"name": "street", "type": "text", "component": "text"}, {"name": "zip", "type": "text", "component": "text"}]
    ]
  },
  {
    "containerName": "notes",
    "children": [[{"name": "body", "type": "textarea", "component": "textarea"}]]
  }
]`

const invoiceYAML = `
- - name: customer
    type: text
    component: text
    label: Customer
- - type: divider
- containerType: conditional
  containerName: shipping
  title: Shipping
  controlledBy: enabled
  hasConditionalOptions: true
  containerOptions:
    - name: enabled
      type: switch
      component: switch
  children:
    - - name: street
        type: text
        component: text
      - name: zip
        type: text
        component: text
- containerName: notes
  children:
    - - name: body
        type: textarea
        component: textarea
`

func wantInvoice() schema.Schema {
	return schema.Schema{
		schema.Row{{Name: "customer", Type: schema.TypeText, Component: "text", Label: "Customer"}},
		schema.Row{{Type: schema.TypeDivider}},
		&schema.Container{
			Kind:         schema.KindConditional,
			Name:         "shipping",
			Title:        "Shipping",
			ControlledBy: "enabled",
			Structured:   true,
			Options:      schema.Row{{Name: "enabled", Type: schema.TypeSwitch, Component: "switch"}},
			Children: []schema.Row{{
				{Name: "street", Type: schema.TypeText, Component: "text"},
				{Name: "zip", Type: schema.TypeText, Component: "text"},
			}},
		},
		&schema.Container{
			Kind:     schema.KindPlain,
			Name:     "notes",
			Children: []schema.Row{{{Name: "body", Type: schema.TypeTextArea, Component: "textarea"}}},
		},
	}
}

var ignoreFuncs = cmpopts.IgnoreFields(schema.Field{}, "DynamicProps", "OnChange")

func TestParse_JSONAndYAMLAgree(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		data   string
		format schema.Format
	}{
		{name: "json", data: invoiceJSON, format: schema.FormatJSON},
		{name: "yaml", data: invoiceYAML, format: schema.FormatYAML},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := schema.Parse([]byte(tc.data), tc.format)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if diff := cmp.Diff(wantInvoice(), got, ignoreFuncs); diff != "" {
				t.Fatalf("schema mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshal_RoundTripKeepsOrderAndNames(t *testing.T) {
	t.Parallel()

	for _, format := range []schema.Format{schema.FormatJSON, schema.FormatYAML} {
		data, err := schema.Marshal(wantInvoice(), format)
		if err != nil {
			t.Fatalf("marshal %s: %v", format, err)
		}
		back, err := schema.Parse(data, format)
		if err != nil {
			t.Fatalf("parse %s: %v", format, err)
		}
		if diff := cmp.Diff(wantInvoice(), back, ignoreFuncs); diff != "" {
			t.Fatalf("%s round trip mismatch (-want +got):\n%s", format, diff)
		}
	}
}

func TestParse_RejectsUnknownContainerType(t *testing.T) {
	t.Parallel()

	_, err := schema.Parse([]byte(`[{"containerType": "tabs", "containerName": "x", "children": []}]`), schema.FormatJSON)
	if !errors.Is(err, schema.ErrUnknownContainerKind) {
		t.Fatalf("expected ErrUnknownContainerKind, got %v", err)
	}
}

func TestParse_RejectsScalarNodes(t *testing.T) {
	t.Parallel()

	if _, err := schema.Parse([]byte(`["nope"]`), schema.FormatJSON); err == nil {
		t.Fatalf("expected error for scalar node")
	}
	if _, err := schema.Parse([]byte("- nope\n"), schema.FormatYAML); err == nil {
		t.Fatalf("expected error for scalar yaml node")
	}
}

func TestLoadFS_InfersFormatFromExtension(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"forms/invoice.yaml": {Data: []byte(invoiceYAML)},
		"forms/invoice.json": {Data: []byte(invoiceJSON)},
	}

	for _, name := range []string{"forms/invoice.yaml", "forms/invoice.json"} {
		got, err := schema.LoadFS(fsys, name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if diff := cmp.Diff(wantInvoice(), got, ignoreFuncs); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	if _, err := schema.LoadFS(fsys, "forms/missing.json"); err == nil {
		t.Fatalf("expected error for missing document")
	}
}

func TestVisit_OrderAndKeys(t *testing.T) {
	t.Parallel()

	var got []naming.Key
	schema.Visit(wantInvoice(), func(v schema.FieldVisit) {
		got = append(got, v.Key)
	})

	want := []naming.Key{
		{Local: "customer"},
		{Namespace: "shipping", Local: "enabled", Option: true},
		{Namespace: "shipping", Local: "street"},
		{Namespace: "shipping", Local: "zip"},
		{Namespace: "notes", Local: "body"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visit keys mismatch (-want +got):\n%s", diff)
	}
}

func TestField_StaticPropsFallbacks(t *testing.T) {
	t.Parallel()

	called := false
	field := schema.Field{
		Name: "country",
		StaticProps: map[string]any{
			"disabled":         true,
			"defaultValue":     "PL",
			"onChangeCallback": schema.ChangeFunc(func(schema.ChangeEvent, schema.Mutator) { called = true }),
			"autocomplete":     "off",
		},
	}

	if !field.StaticDisabled() {
		t.Fatalf("expected staticProps.disabled to apply")
	}
	if value, ok := field.DefaultValue(); !ok || value != "PL" {
		t.Fatalf("expected default PL, got %v (%v)", value, ok)
	}
	handler := field.ChangeHandler()
	if handler == nil {
		t.Fatalf("expected change handler fallback")
	}
	handler(schema.ChangeEvent{}, nil)
	if !called {
		t.Fatalf("expected fallback handler to run")
	}
	if diff := cmp.Diff(map[string]any{"autocomplete": "off"}, field.PassthroughProps()); diff != "" {
		t.Fatalf("passthrough props mismatch (-want +got):\n%s", diff)
	}
}

func TestField_IsData(t *testing.T) {
	t.Parallel()

	cases := []struct {
		field schema.Field
		want  bool
	}{
		{field: schema.Field{Name: "a", Type: schema.TypeText}, want: true},
		{field: schema.Field{Name: "a", Type: "colour"}, want: true},
		{field: schema.Field{Type: schema.TypeDivider}, want: false},
		{field: schema.Field{Name: "save", Type: schema.TypeButtonAnchor}, want: false},
		{field: schema.Field{Name: "search", Type: schema.TypeInputAnchor}, want: false},
		{field: schema.Field{Name: "legacy", NotAvailable: true}, want: false},
		{field: schema.Field{Name: "  "}, want: false},
	}
	for _, tc := range cases {
		if got := tc.field.IsData(); got != tc.want {
			t.Fatalf("IsData(%+v) = %v, want %v", tc.field, got, tc.want)
		}
	}
}
