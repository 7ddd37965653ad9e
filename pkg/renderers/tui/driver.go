package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig describes a single-line prompt. Validator sees the raw answer
// and can reject it before the renderer parses it.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// ConfirmConfig describes a yes/no prompt for checkbox and switch fields.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig describes a choice prompt. Answers are indices into Options.
// DefaultIndex is negative when nothing is preselected; Defaults is read by
// MultiSelect only.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int
	Help         string
	PageSize     int
}

// TextAreaConfig describes a multi-line prompt.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver asks one question per call. The renderer decides what to ask
// and in which order; drivers only talk to the terminal.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	stdio   terminal.Stdio
	notices io.Writer
}

// NewSurveyDriver returns a driver backed by survey reading from stdin.
// Notices are written to out (stdout when nil). When out is a terminal file
// the prompts are drawn there too, so payload output on stdout stays clean.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	stdio := terminal.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	if file, ok := out.(terminal.FileWriter); ok {
		stdio.Out = file
	}
	return &surveyDriver{stdio: stdio, notices: out}
}

func ask[T any](ctx context.Context, d *surveyDriver, prompt survey.Prompt, opts ...survey.AskOpt) (T, error) {
	var answer T
	if err := ctx.Err(); err != nil {
		return answer, err
	}
	opts = append(opts, survey.WithStdio(d.stdio.In, d.stdio.Out, d.stdio.Err))
	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		var zero T
		if errors.Is(err, terminal.InterruptErr) {
			return zero, ErrAborted
		}
		return zero, err
	}
	return answer, nil
}

func inputOpts(cfg InputConfig) []survey.AskOpt {
	if cfg.Validator == nil {
		return nil
	}
	return []survey.AskOpt{survey.WithValidator(func(ans any) error {
		text, _ := ans.(string)
		return cfg.Validator(text)
	})}
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	prompt := &survey.Input{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}
	return ask[string](ctx, d, prompt, inputOpts(cfg)...)
}

// Password ignores cfg.Default; survey never echoes a prefilled secret.
func (d *surveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	prompt := &survey.Password{Message: cfg.Message, Help: cfg.Help}
	return ask[string](ctx, d, prompt, inputOpts(cfg)...)
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	prompt := &survey.Confirm{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}
	return ask[bool](ctx, d, prompt)
}

// Select and MultiSelect let survey write the chosen indices directly.
func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.DefaultIndex
	}
	return ask[int](ctx, d, prompt)
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	prompt := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if defaults := inRange(cfg.Defaults, len(cfg.Options)); len(defaults) > 0 {
		prompt.Default = defaults
	}
	return ask[[]int](ctx, d, prompt)
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	prompt := &survey.Multiline{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}
	return ask[string](ctx, d, prompt)
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.notices, msg)
	return err
}

func inRange(indices []int, n int) []int {
	var out []int
	for _, idx := range indices {
		if idx >= 0 && idx < n {
			out = append(out, idx)
		}
	}
	return out
}
