package align

import "errors"

// ErrNothingToTranslate indicates the input text is blank.
var ErrNothingToTranslate = errors.New("nothing to translate")

// ErrPairNotFound indicates no pair has the requested ID.
var ErrPairNotFound = errors.New("sentence pair not found")
