package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-formrows"
	"github.com/goliatone/go-formrows/pkg/httpform"
	"github.com/goliatone/go-formrows/pkg/orchestrator"
	"github.com/goliatone/go-formrows/pkg/schema"
	"github.com/goliatone/go-formrows/pkg/urlsync"
)

const shutdownTimeout = 5 * time.Second

// liveSchema holds the current schema; the watcher swaps it on change.
type liveSchema struct {
	current atomic.Pointer[schema.Schema]
	load    func(context.Context) (schema.Schema, error)
	log     *slog.Logger
}

func newLiveSchema(ctx context.Context, load func(context.Context) (schema.Schema, error), log *slog.Logger) (*liveSchema, error) {
	l := &liveSchema{load: load, log: log}
	if err := l.reload(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *liveSchema) Get() schema.Schema {
	return *l.current.Load()
}

func (l *liveSchema) reload(ctx context.Context) error {
	s, err := l.load(ctx)
	if err != nil {
		return err
	}
	l.current.Store(&s)
	return nil
}

// watch reloads the schema whenever path is written or replaced. Editors
// often save by renaming, so the parent directory is watched. A broken
// document keeps the previous schema. reloaded, when set, is signalled after
// each successful reload.
func (l *liveSchema) watch(ctx context.Context, path string, reloaded chan<- struct{}) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	target, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				if err := l.reload(ctx); err != nil {
					l.log.Warn("cli.schema.reload_failed", slog.String("path", path), slog.String("err", err.Error()))
					continue
				}
				l.log.Info("cli.schema.reloaded", slog.String("path", path))
				if reloaded != nil {
					select {
					case reloaded <- struct{}{}:
					default:
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.log.Warn("cli.schema.watch_error", slog.String("err", err.Error()))
			}
		}
	}()
	return nil
}

// newServeHandler mounts the form at "/" and the vanilla stylesheet under
// "/assets/". Accepted submissions are logged.
func newServeHandler(cfg Config, live *liveSchema, log *slog.Logger) (http.Handler, error) {
	factory := func(r *http.Request) (*orchestrator.Orchestrator, error) {
		opts := []orchestrator.Option{
			orchestrator.WithLogger(log),
			orchestrator.WithSubmitHandler(func(ctx context.Context, payload map[string]any) error {
				log.InfoContext(ctx, "cli.form.submitted", slog.Any("payload", payload))
				return nil
			}),
		}
		if subjects := cfg.SyncSubjects(); len(subjects) > 0 {
			opts = append(opts, orchestrator.WithURLSync(urlsync.Config{Subjects: subjects}))
		}
		return formrows.New(live.Get(), opts...)
	}
	forms, err := httpform.New(factory, httpform.WithLogger(log))
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServerFS(formrows.AssetsFS())))
	mux.Handle("/", forms)
	return mux, nil
}

func runServe(ctx context.Context, cfg Config, log *slog.Logger) error {
	live, err := newLiveSchema(ctx, func(ctx context.Context) (schema.Schema, error) {
		return loadSchema(ctx, cfg)
	}, log)
	if err != nil {
		return err
	}
	if cfg.Watch {
		path := cfg.SchemaPath()
		if path == "" {
			return errors.New("-watch needs a local schema or OpenAPI file")
		}
		if err := live.watch(ctx, path, nil); err != nil {
			return err
		}
	}

	handler, err := newServeHandler(cfg, live, log)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("cli.serve.listening", slog.String("addr", cfg.Addr), slog.Bool("watch", cfg.Watch))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
