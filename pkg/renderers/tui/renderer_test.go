package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrows/pkg/orchestrator"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/schema"
)

type stubDriver struct {
	inputs       []string
	confirm      []bool
	selectIdx    []int
	multiIdx     [][]int
	textAreas    []string
	asked        []string
	infoMessages []string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[0]
	s.inputs = s.inputs[1:]
	return val, nil
}

func (s *stubDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	return s.Input(ctx, cfg)
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.confirm) == 0 {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[0]
	s.confirm = s.confirm[1:]
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.selectIdx) == 0 {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[0]
	s.selectIdx = s.selectIdx[1:]
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.multiIdx) == 0 {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[0]
	s.multiIdx = s.multiIdx[1:]
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.textAreas) == 0 {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[0]
	s.textAreas = s.textAreas[1:]
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func profileSchema() schema.Schema {
	return schema.Schema{
		schema.Row{
			{Name: "name", Type: schema.TypeText, Label: "Name"},
			{Name: "age", Type: schema.TypeNumber, Label: "Age"},
		},
		schema.Row{{Name: "bio", Type: schema.TypeTextArea, Label: "Bio"}},
		&schema.Container{
			Kind:         schema.KindConditional,
			Name:         "shipping",
			ControlledBy: "enabled",
			Options:      schema.Row{{Name: "enabled", Type: schema.TypeSwitch, Label: "Ship?"}},
			Children: []schema.Row{{
				{Name: "country", Type: schema.TypeSelect, Label: "Country", Options: []schema.Choice{{Label: "Poland", Value: "pl"}, {Label: "Germany", Value: "de"}}},
			}},
		},
	}
}

func newSession(t *testing.T, opts ...orchestrator.Option) *orchestrator.Orchestrator {
	t.Helper()
	o, err := orchestrator.New(profileSchema(), opts...)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	t.Cleanup(o.Close)
	return o
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return out
}

func TestRender_AsksConditionalBodyOnceEnabled(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "abc", "36"},
		textAreas: []string{"Engineer"},
		confirm:   []bool{true},
		selectIdx: []int{1},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := r.Render(context.Background(), newSession(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	wantAsked := []string{"Name", "Age", "Age", "Bio", "Ship?", "Country"}
	if diff := cmp.Diff(wantAsked, driver.asked); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 {
		t.Fatalf("expected one invalid number message, got %v", driver.infoMessages)
	}

	want := map[string]any{
		"name": "Ada",
		"age":  float64(36),
		"bio":  "Engineer",
		"shipping": map[string]any{
			"options": map[string]any{"enabled": true},
			"country": "de",
		},
	}
	if diff := cmp.Diff(want, decode(t, out)); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SkipsHiddenBody(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", ""},
		textAreas: []string{""},
		confirm:   []bool{false},
	}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := r.Render(context.Background(), newSession(t), render.RenderOptions{Notices: []string{"Try again"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"Name", "Age", "Bio", "Ship?"}, driver.asked); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"! Try again"}, driver.infoMessages); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}

	want := "age=\nbio=\nname=Ada\nshipping.country=\nshipping.options.enabled=false\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("pretty output mismatch (-want +got):\n%s", diff)
	}
	if r.ContentType() != "text/plain; charset=utf-8" {
		t.Fatalf("content type = %q", r.ContentType())
	}
}

func TestRender_SkipsDisabledFieldsAndKeepsValues(t *testing.T) {
	driver := &stubDriver{confirm: []bool{false}}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s := schema.Schema{
		schema.Row{
			{Name: "id", Type: schema.TypeText, Disabled: true, Default: "42"},
			{Name: "active", Type: schema.TypeCheckbox, Label: "Active"},
		},
	}
	o, err := orchestrator.New(s)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	defer o.Close()

	out, err := r.Render(context.Background(), o, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"Active"}, driver.asked); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if string(out) != "active=false&id=42" {
		t.Fatalf("form output = %q", out)
	}
}

func TestRender_PropagatesDriverErrors(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := r.Render(context.Background(), newSession(t), render.RenderOptions{}); err == nil {
		t.Fatalf("expected driver error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, newSession(t), render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSelectedIndices(t *testing.T) {
	options := []schema.Choice{{Value: "a"}, {Value: 2}, {Value: "c"}}
	if diff := cmp.Diff([]int{0, 2}, selectedIndices(options, []any{"c", "a"})); diff != "" {
		t.Fatalf("indices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, selectedIndices(options, 2)); diff != "" {
		t.Fatalf("indices mismatch (-want +got):\n%s", diff)
	}
	if got := selectedIndices(options, nil); got != nil {
		t.Fatalf("expected no selection, got %v", got)
	}
}
