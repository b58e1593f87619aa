package restore

import "errors"

// Failure categories shared by the restore pipeline. Callers match them
// with errors.Is; every one of them aborts the restore as a whole.
var (
	// ErrNotFound reports a source that does not exist on disk: the
	// archive itself, a component directory, or a database dump.
	ErrNotFound = errors.New("source not found")

	// ErrUnsupportedFormat reports an archive that is not a .tar.gz file.
	ErrUnsupportedFormat = errors.New("unsupported archive format")

	// ErrAlreadyExists reports an extraction target that is already
	// present and may not be overwritten.
	ErrAlreadyExists = errors.New("extraction target already exists")

	// ErrMissingSource reports a requested component with no override
	// path and no archive to derive one from.
	ErrMissingSource = errors.New("no source available")

	// ErrUserAborted reports a restore stopped at a confirmation prompt.
	ErrUserAborted = errors.New("restore aborted by user")

	// ErrMissingField reports an environment status response lacking a
	// field the import needs.
	ErrMissingField = errors.New("environment status field missing")

	// ErrEmptyPath reports a local public-files destination that
	// resolved to an empty path.
	ErrEmptyPath = errors.New("files path resolved empty")

	// ErrExtractionFailed reports an archive that could not be unpacked.
	ErrExtractionFailed = errors.New("extraction failed")
)
