// Command formrows renders, prompts for and serves forms described by a
// row/container schema or an OpenAPI request body.
//
// Usage:
//
//	formrows render -schema form.yaml [-renderer json] [-o out.html]
//	formrows prompt -openapi api.yaml -operation createOrder [-format pretty]
//	formrows serve  -schema form.yaml [-addr :8080] [-url-sync q,page] [-watch]
//	formrows lint   api.yaml [more.yaml...]
//
// Every flag has a FORMROWS_* environment variable counterpart.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

var errUsage = errors.New("usage: formrows <render|prompt|serve|lint> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "formrows:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	command, rest := args[0], args[1:]
	cfg, fs, err := loadConfig(command, rest, stderr)
	if err != nil {
		return err
	}
	log := cfg.logger(stderr)

	switch command {
	case "render":
		return runRender(ctx, cfg, log, stdout)
	case "prompt":
		return runPrompt(ctx, cfg, log, stdout, stderr)
	case "serve":
		return runServe(ctx, cfg, log)
	case "lint":
		return runLint(ctx, fs.Args(), stdout)
	default:
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}
}
