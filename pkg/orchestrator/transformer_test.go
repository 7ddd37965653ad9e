package orchestrator_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrows/pkg/orchestrator"
	"github.com/goliatone/go-formrows/pkg/schema"
)

func TestJSONPresetTransformer_PatchesByWireName(t *testing.T) {
	preset := []byte(`{
	  "containers": {"shipping": {"title": "Delivery"}},
	  "fields": {
	    "shippingzip": {"label": "Postcode", "staticProps": {"maxLength": 6}},
	    "shippingOptionsenabled": {"component": "toggle"},
	    "age": {"hidden": true}
	  }
	}`)
	transformer, err := orchestrator.NewJSONPresetTransformer(preset)
	if err != nil {
		t.Fatalf("new transformer: %v", err)
	}

	input := shippingSchema()
	out, err := transformer.Transform(input)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	container := out[3].(*schema.Container)
	if container.Title != "Delivery" {
		t.Fatalf("title = %q", container.Title)
	}
	zip := container.Children[0][0]
	if zip.Label != "Postcode" {
		t.Fatalf("label = %q", zip.Label)
	}
	if diff := cmp.Diff(map[string]any{"maxLength": float64(6)}, zip.StaticProps); diff != "" {
		t.Fatalf("static props mismatch (-want +got):\n%s", diff)
	}
	if container.Options[0].Component != "toggle" {
		t.Fatalf("component = %q", container.Options[0].Component)
	}
	if !out[0].(schema.Row)[1].NotAvailable {
		t.Fatalf("age should be hidden")
	}
	if input[3].(*schema.Container).Title != "" || input[0].(schema.Row)[1].NotAvailable {
		t.Fatalf("transform must not modify its input")
	}
}

func TestJSONPresetTransformer_UnknownTargets(t *testing.T) {
	transformer, err := orchestrator.NewJSONPresetTransformer([]byte(`{"fields": {"zip": {"label": "x"}}, "containers": {"billing": {}}}`))
	if err != nil {
		t.Fatalf("new transformer: %v", err)
	}
	_, err = transformer.Transform(shippingSchema())
	if err == nil || !strings.Contains(err.Error(), "billing, zip") {
		t.Fatalf("expected unknown targets error, got %v", err)
	}
}

func TestJSONPresetTransformer_FromFS(t *testing.T) {
	fsys := fstest.MapFS{"presets/form.json": {Data: []byte(`{"fields": {"email": {"placeholder": "you@example.com"}}}`)}}
	transformer, err := orchestrator.NewJSONPresetTransformerFromFS(fsys, "presets/form.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	o, err := orchestrator.New(shippingSchema(), orchestrator.WithSchemaTransformer(transformer))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	binding, _ := o.Binding("email")
	if got := binding.Props().Placeholder; got != "you@example.com" {
		t.Fatalf("placeholder = %q", got)
	}

	if _, err := orchestrator.NewJSONPresetTransformer([]byte("  ")); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := orchestrator.NewJSONPresetTransformerFromFS(nil, "x.json"); err == nil {
		t.Fatalf("expected error for nil filesystem")
	}
}
