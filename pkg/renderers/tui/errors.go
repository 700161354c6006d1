package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNilDriver is returned when the renderer has no prompt driver.
	ErrNilDriver = errors.New("tui: prompt driver is nil")
)
