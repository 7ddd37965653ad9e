package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joeshaw/envdecode"
)

// Config holds CLI settings. Environment variables provide the defaults and
// flags override them.
type Config struct {
	// Schema is a row/container schema document (JSON or YAML).
	Schema string `env:"FORMROWS_SCHEMA"`
	// OpenAPI is an OpenAPI document path or URL; Operation selects the
	// request body to build the form from.
	OpenAPI   string `env:"FORMROWS_OPENAPI"`
	Operation string `env:"FORMROWS_OPERATION"`
	// Values is an optional JSON file of initial values keyed by wire name.
	Values   string `env:"FORMROWS_VALUES"`
	Renderer string `env:"FORMROWS_RENDERER,default=vanilla"`
	Format   string `env:"FORMROWS_FORMAT,default=json"`
	Addr     string `env:"FORMROWS_ADDR,default=:8080"`
	// URLSync lists the wire names kept in the query string, comma separated.
	URLSync  string `env:"FORMROWS_URL_SYNC"`
	Watch    bool   `env:"FORMROWS_WATCH,default=false"`
	LogLevel string `env:"FORMROWS_LOG_LEVEL,default=info"`
	Output   string `env:"FORMROWS_OUTPUT"`
}

// loadConfig decodes the environment then parses args for the named
// subcommand.
func loadConfig(command string, args []string, stderr io.Writer) (Config, *flag.FlagSet, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, nil, fmt.Errorf("decode environment: %w", err)
	}

	fs := flag.NewFlagSet("formrows "+command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Schema, "schema", cfg.Schema, "schema document (.json, .yaml)")
	fs.StringVar(&cfg.OpenAPI, "openapi", cfg.OpenAPI, "OpenAPI document path or URL")
	fs.StringVar(&cfg.Operation, "operation", cfg.Operation, "OpenAPI operation id")
	fs.StringVar(&cfg.Values, "values", cfg.Values, "JSON file of initial values")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	switch command {
	case "render":
		fs.StringVar(&cfg.Renderer, "renderer", cfg.Renderer, "renderer name (vanilla, json)")
		fs.StringVar(&cfg.Output, "o", cfg.Output, "output file (stdout if empty)")
	case "prompt":
		fs.StringVar(&cfg.Format, "format", cfg.Format, "output format (json, form, pretty)")
	case "serve":
		fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
		fs.StringVar(&cfg.URLSync, "url-sync", cfg.URLSync, "comma separated wire names kept in the query")
		fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "reload the schema when its file changes")
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs, nil
}

// SyncSubjects splits URLSync.
func (c Config) SyncSubjects() []string {
	var out []string
	for _, part := range strings.Split(c.URLSync, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SchemaPath is the file --watch observes.
func (c Config) SchemaPath() string {
	if c.Schema != "" {
		return c.Schema
	}
	if strings.HasPrefix(c.OpenAPI, "http://") || strings.HasPrefix(c.OpenAPI, "https://") {
		return ""
	}
	return c.OpenAPI
}

func (c Config) logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
