package domain

import "errors"

// Fatal analysis-level errors. Everything else is absorbed into the bug
// list or the diagnostic log and never aborts a run.
var (
	// ErrDirectoryNotFound means the target does not exist, is not a
	// directory, or cannot be read.
	ErrDirectoryNotFound = errors.New("target directory not found")

	// ErrNoEntryPointsFound means discovery produced an empty list after
	// deduplication and exclude filtering.
	ErrNoEntryPointsFound = errors.New("no entry points found")
)
