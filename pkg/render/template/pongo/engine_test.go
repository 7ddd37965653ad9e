package pongo_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formrows/pkg/render/template/pongo"
)

func newEngine(t *testing.T, opts ...pongo.Option) *pongo.Engine {
	t.Helper()

	files := fstest.MapFS{
		"hello.tmpl":      {Data: []byte(`Hello {{ name|trim }}!`)},
		"use-global.tmpl": {Data: []byte(`env={{ settings.env }}`)},
		"use-filter.tmpl": {Data: []byte(`{{ name|shout }}`)},
		"span.tmpl":       {Data: []byte(`{{ 12|span }}/{{ 8|span }}/{{ 0|span }}`)},
	}
	engine, err := pongo.New(append([]pongo.Option{pongo.WithFS(files)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplateWritesOutput(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "  Ada "}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ada!" || buf.String() != got {
		t.Fatalf("unexpected output %q / %q", got, buf.String())
	}
}

func TestEngine_Globals(t *testing.T) {
	engine := newEngine(t, pongo.WithGlobals(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}))

	got, err := engine.RenderTemplate("use-global.tmpl", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "env=staging" {
		t.Fatalf("got %q", got)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	got, err := engine.RenderTemplate("use-filter", map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA!" {
		t.Fatalf("got %q", got)
	}
}

func TestEngine_SpanFilter(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.RenderTemplate("span", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "50/33.3333/100" {
		t.Fatalf("got %q", got)
	}
}

func TestEngine_RenderStringAndStructData(t *testing.T) {
	engine := newEngine(t)

	data := struct {
		Title string `json:"title"`
	}{Title: "Invoice"}
	got, err := engine.RenderString(`<h1>{{ title }}</h1>`, data)
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "<h1>Invoice</h1>" {
		t.Fatalf("got %q", got)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
}
