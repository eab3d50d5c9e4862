package template

import "errors"

// ErrInvalid indicates a prompt override that cannot be used.
var ErrInvalid = errors.New("invalid prompt template")
