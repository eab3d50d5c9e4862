package csvio

import "errors"

// Sentinel errors for CSV import and export.
var (
	// ErrEmpty indicates the input holds no content at all.
	ErrEmpty = errors.New("CSV file is empty")

	// ErrMissingColumns indicates the header lacks a required column.
	ErrMissingColumns = errors.New("CSV header must contain 'Cantonese' and 'Trad. Chinese' columns (case-insensitive)")

	// ErrNoDataRows indicates a header with no rows after it.
	ErrNoDataRows = errors.New("CSV has a header row but no data rows")

	// ErrNoValidRows indicates data rows were present but none had both values.
	ErrNoValidRows = errors.New("no valid example rows found in CSV")

	// ErrNothingToExport indicates an export of an empty corpus.
	ErrNothingToExport = errors.New("no examples to export")
)
