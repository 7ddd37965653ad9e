package jsonplan_test

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrows/pkg/orchestrator"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/renderers/jsonplan"
	"github.com/goliatone/go-formrows/pkg/schema"
)

func newSession(t *testing.T) *orchestrator.Orchestrator {
	t.Helper()
	s := schema.Schema{
		schema.Row{{Name: "email", Type: schema.TypeText, Label: "Email", Layout: schema.Layout{MD: 12}}},
		schema.Row{{Type: schema.TypeDivider}},
		&schema.Container{
			Kind:         schema.KindConditional,
			Name:         "shipping",
			ControlledBy: "enabled",
			Options:      schema.Row{{Name: "enabled", Type: schema.TypeSwitch}},
			Children:     []schema.Row{{{Name: "zip", Type: schema.TypeText}}},
		},
	}
	o, err := orchestrator.New(s, orchestrator.WithDefaults(map[string]any{"email": "a@b.c"}))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	t.Cleanup(o.Close)
	return o
}

func TestDocument_MirrorsPlan(t *testing.T) {
	o := newSession(t)
	o.Store().SetError("email", "taken")

	doc, err := jsonplan.New().Document(o, render.RenderOptions{Method: "put", Notices: []string{"busy"}})
	if err != nil {
		t.Fatalf("document: %v", err)
	}

	if doc.Method != "POST" {
		t.Fatalf("method = %q", doc.Method)
	}
	if diff := cmp.Diff([]render.HiddenField{{Name: "_method", Value: "PUT"}}, doc.Hidden); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
	kinds := make([]string, 0, len(doc.Blocks))
	for _, block := range doc.Blocks {
		kinds = append(kinds, block.Kind)
	}
	if diff := cmp.Diff([]string{"row", "divider", "conditional"}, kinds); diff != "" {
		t.Fatalf("block kinds mismatch (-want +got):\n%s", diff)
	}

	email := doc.Blocks[0].Rows[0].Cells[0].Props
	want := &jsonplan.Props{
		Name:           "email",
		Value:          "a@b.c",
		Type:           "text",
		Component:      "text",
		Label:          "Email",
		LabelPlacement: "top",
		Invalid:        true,
		Message:        "taken",
		Layout:         &schema.Layout{MD: 12},
	}
	if diff := cmp.Diff(want, email); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}

	conditional := doc.Blocks[2]
	if conditional.BodyVisible || len(conditional.Rows) != 0 {
		t.Fatalf("collapsed body should carry no rows: %+v", conditional)
	}
	if conditional.Options == nil || conditional.Options.Cells[0].Name != "shippingOptionsenabled" {
		t.Fatalf("expected options row, got %+v", conditional.Options)
	}
}

func TestRender_HiddenBodiesOptIn(t *testing.T) {
	o := newSession(t)
	out, err := jsonplan.New(jsonplan.WithHiddenBodies(true)).Render(context.Background(), o, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var doc jsonplan.Document
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rows := doc.Blocks[2].Rows
	if len(rows) != 1 || rows[0].Cells[0].Name != "shippingzip" {
		t.Fatalf("expected hidden body rows, got %+v", rows)
	}
	payload, ok := doc.Payload["shipping"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested shipping payload, got %+v", doc.Payload)
	}
	if _, ok := payload["options"]; !ok {
		t.Fatalf("expected options key in %+v", payload)
	}
}
