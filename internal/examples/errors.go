package examples

import "errors"

// Sentinel errors for the example corpus.
var (
	// ErrInvalidExample indicates an example with a blank Cantonese or
	// Traditional Chinese side.
	ErrInvalidExample = errors.New("example requires both Cantonese and Traditional Chinese text")

	// ErrPlaceholderPair indicates an attempt to promote a pair that has no
	// real translation.
	ErrPlaceholderPair = errors.New("cannot add a pair without a translation")

	// ErrIndexOutOfRange indicates an example index outside the collection.
	ErrIndexOutOfRange = errors.New("example index out of range")

	// ErrUnsupportedStore indicates a store path whose format cannot be watched
	// or opened.
	ErrUnsupportedStore = errors.New("unsupported example store")
)
