package config

import "errors"

// Validation errors returned by Config.Validate. Package-level
// sentinels so callers can branch with errors.Is while the messages
// stay user-readable.
var (
	// ErrNoInput is returned when no bookmarks file was given.
	ErrNoInput = errors.New("no input: provide a bookmarks backup file")

	// ErrInvalidMaxWorkers is returned when the worker count is not
	// positive.
	ErrInvalidMaxWorkers = errors.New("invalid max workers: must be positive")

	// ErrInvalidTimeout is returned when the probe timeout is not
	// positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are requested.
	ErrConflictingReportFormats = errors.New("conflicting report formats: json and markdown cannot be combined")

	// ErrInvalidKeepStatus is returned when a policy file lists a keep
	// status outside 100-599.
	ErrInvalidKeepStatus = errors.New("invalid keep status: must be a valid HTTP status code")
)
