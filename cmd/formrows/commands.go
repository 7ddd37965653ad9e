package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formrows"
	pkgopenapi "github.com/goliatone/go-formrows/pkg/openapi"
	"github.com/goliatone/go-formrows/pkg/orchestrator"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/renderers/tui"
	"github.com/goliatone/go-formrows/pkg/schema"
)

const remoteTimeout = 30 * time.Second

func loadSchema(ctx context.Context, cfg Config) (schema.Schema, error) {
	switch {
	case cfg.Schema != "":
		return formrows.LoadSchema(cfg.Schema)
	case cfg.OpenAPI != "":
		if cfg.Operation == "" {
			return nil, errors.New("-operation is required with -openapi")
		}
		return formrows.LoadOpenAPISchema(ctx, cfg.OpenAPI, cfg.Operation,
			pkgopenapi.WithHTTPClient(http.DefaultClient, remoteTimeout))
	default:
		return nil, errors.New("one of -schema or -openapi is required")
	}
}

func loadValues(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode values %s: %w", path, err)
	}
	return values, nil
}

// newSession mounts the configured schema with the CLI's logger and values.
func newSession(ctx context.Context, cfg Config, log *slog.Logger, extra ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	s, err := loadSchema(ctx, cfg)
	if err != nil {
		return nil, err
	}
	values, err := loadValues(cfg.Values)
	if err != nil {
		return nil, err
	}
	opts := []orchestrator.Option{orchestrator.WithLogger(log)}
	if len(values) > 0 {
		opts = append(opts, orchestrator.WithDefaults(values))
	}
	return formrows.New(s, append(opts, extra...)...)
}

func runRender(ctx context.Context, cfg Config, log *slog.Logger, stdout io.Writer) error {
	session, err := newSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer session.Close()

	out, err := session.Render(ctx, cfg.Renderer, render.RenderOptions{})
	if err != nil {
		return err
	}
	if cfg.Output == "" {
		_, err = stdout.Write(out)
		return err
	}
	if err := os.WriteFile(cfg.Output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("cli.render.written", slog.String("path", cfg.Output), slog.Int("bytes", len(out)))
	return nil
}

func runPrompt(ctx context.Context, cfg Config, log *slog.Logger, stdout, stderr io.Writer) error {
	session, err := newSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer session.Close()

	renderer, err := tui.New(
		tui.WithPromptDriver(tui.NewSurveyDriver(stderr)),
		tui.WithOutputFormat(tui.OutputFormat(cfg.Format)),
		tui.WithWidgets(session.Widgets()),
	)
	if err != nil {
		return err
	}
	out, err := renderer.Render(ctx, session, render.RenderOptions{})
	if err != nil {
		return err
	}
	if _, err := stdout.Write(out); err != nil {
		return err
	}
	if !strings.HasSuffix(string(out), "\n") {
		_, err = io.WriteString(stdout, "\n")
	}
	return err
}

// runLint checks x-formrows hints in each OpenAPI document and fails when any
// issue is found.
func runLint(ctx context.Context, paths []string, stdout io.Writer) error {
	if len(paths) == 0 {
		return errors.New("lint: at least one OpenAPI document is required")
	}
	loader := pkgopenapi.NewLoader()
	total := 0
	for _, path := range paths {
		doc, err := loader.LoadSource(ctx, pkgopenapi.SourceFromFile(path))
		if err != nil {
			return fmt.Errorf("lint %s: %w", path, err)
		}
		for _, issue := range pkgopenapi.Lint(doc) {
			fmt.Fprintf(stdout, "%s: %s\n", path, issue)
			total++
		}
	}
	if total > 0 {
		return fmt.Errorf("lint: %d issue(s)", total)
	}
	return nil
}
