package translate

import "errors"

// ErrUnknownProvider indicates an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown translation provider")
