package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoChoices is returned when a selection has nothing to offer and no
	// free-form fallback applies.
	ErrNoChoices = errors.New("tui: no options to choose from")
)
