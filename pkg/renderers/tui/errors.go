package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoBinding is returned when the plan names a field the session
	// cannot bind.
	ErrNoBinding = errors.New("tui: no binding for field")
)
