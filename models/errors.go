package models

import "errors"

// Sentinel errors for the fatal conditions of the generation pipeline.
// Non-fatal conditions (missing optional assets, cache I/O failures) are
// absorbed with a log line and never surface as errors.
var (
	// ErrTemplateNotFound is returned when a requested template id does
	// not exist in the library.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrMissingDesign is returned when a generation call carries no
	// design buffer.
	ErrMissingDesign = errors.New("no design provided")

	// ErrToolUnavailable is returned when a required external capability
	// (layer extraction, headless Chrome) is not present on the host and
	// no fallback applies.
	ErrToolUnavailable = errors.New("tool unavailable")
)
