// Package formrows is the entry point for rendering and submitting forms
// described by a row/container schema. Most callers only need New to mount a
// session; the helpers here cover the common one-shot cases.
package formrows

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	pkgopenapi "github.com/goliatone/go-formrows/pkg/openapi"
	"github.com/goliatone/go-formrows/pkg/orchestrator"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrows/pkg/schema"
	"github.com/goliatone/go-formrows/pkg/validation"
)

// Schema aliases schema.Schema so simple callers need a single import.
type Schema = schema.Schema

// RenderOptions describes per-request render overrides.
type RenderOptions = render.RenderOptions

// Option configures a form session.
type Option = orchestrator.Option

// New mounts schema as a form session. Unless WithValidator is passed,
// field rules are checked with the built-in rule validator.
func New(s Schema, options ...Option) (*orchestrator.Orchestrator, error) {
	opts := append([]Option{orchestrator.WithValidator(validation.New())}, options...)
	return orchestrator.New(s, opts...)
}

// LoadSchema reads a schema document. Paths ending in .yaml or .yml are
// decoded as YAML, anything else as JSON.
func LoadSchema(path string) (Schema, error) {
	return schema.LoadFile(path)
}

// LoadOpenAPISchema builds the schema of operationID's request body. source
// is a file path or an http(s) URL.
func LoadOpenAPISchema(ctx context.Context, source, operationID string, options ...pkgopenapi.LoaderOption) (Schema, error) {
	src, err := openAPISource(source)
	if err != nil {
		return nil, err
	}
	doc, err := pkgopenapi.NewLoader(options...).LoadSource(ctx, src)
	if err != nil {
		return nil, err
	}
	return pkgopenapi.BuildSchema(doc, operationID)
}

func openAPISource(raw string) (pkgopenapi.Source, error) {
	location := strings.TrimSpace(raw)
	if location == "" {
		return nil, fmt.Errorf("formrows: openapi source is required")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return pkgopenapi.SourceFromURL(location)
	}
	return pkgopenapi.SourceFromFile(location), nil
}

// RenderHTML mounts a throwaway session with values as its defaults and
// renders it with the vanilla renderer.
func RenderHTML(ctx context.Context, s Schema, values map[string]any, opts RenderOptions, options ...Option) ([]byte, error) {
	if len(values) > 0 {
		options = append(options, orchestrator.WithDefaults(values))
	}
	session, err := New(s, options...)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	return session.Render(ctx, vanilla.Name, opts)
}

// EmbeddedTemplates exposes the built-in vanilla templates so callers can
// copy and extend them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the vanilla stylesheet for serving over HTTP:
//
//	mux.Handle("/formrows/", http.StripPrefix("/formrows/", http.FileServerFS(formrows.AssetsFS())))
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
