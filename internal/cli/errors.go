package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrInputConflict indicates both --text and an input file were given.
	ErrInputConflict = errors.New("use either --text or an input file, not both")

	// ErrInvalidFormat indicates an unknown --format value.
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidFlag indicates a numeric flag outside its range.
	ErrInvalidFlag = errors.New("invalid flag value")

	// ErrInvalidIndex indicates an example number that is not a positive integer.
	ErrInvalidIndex = errors.New("example number must be a positive integer")

	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")

	// ErrConfirmationRequired indicates a destructive command run without --yes.
	ErrConfirmationRequired = errors.New("confirmation required")
)
