package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry per-request data that renderers use to customise their
// output without touching the session.
type RenderOptions struct {
	// Action and Method describe where the form posts. Method defaults to POST.
	Action string
	Method string
	// Hidden fields are emitted as hidden inputs (CSRF tokens and similar).
	Hidden map[string]string
	// Notices are form-level messages such as unmatched server errors.
	Notices []string
	// Buttons is caller-supplied markup placed at btnAnchor slots and, when
	// no anchor exists, after the last row. It is sanitised before output.
	Buttons string
	// SubmitLabel and CancelLabel override the default button captions.
	SubmitLabel string
	CancelLabel string
	// HideButtons suppresses the default button bar.
	HideButtons bool
	// ButtonsDisabled renders the default buttons disabled.
	ButtonsDisabled bool
	// Theme carries resolved partial overrides, tokens and CSS variables.
	Theme *theme.RendererConfig
	// Extras is passed through to templates untouched.
	Extras map[string]any
}
