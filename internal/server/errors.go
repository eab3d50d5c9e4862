package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alnah/go-formalize/internal/align"
	"github.com/alnah/go-formalize/internal/apierr"
	"github.com/alnah/go-formalize/internal/csvio"
	"github.com/alnah/go-formalize/internal/examples"
)

// ErrSuperseded indicates a translation finished after a newer one started.
var ErrSuperseded = errors.New("superseded by a newer translation request")

// errBadIndex indicates a non-numeric example index in the path.
var errBadIndex = errors.New("example index must be an integer")

// errBlankText indicates a translate request with nothing to translate.
var errBlankText = errors.New("please enter some Cantonese text to translate")

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, errBlankText),
		errors.Is(err, errBadIndex),
		errors.Is(err, align.ErrNothingToTranslate),
		errors.Is(err, examples.ErrInvalidExample),
		errors.Is(err, examples.ErrPlaceholderPair),
		errors.Is(err, csvio.ErrEmpty),
		errors.Is(err, csvio.ErrMissingColumns),
		errors.Is(err, csvio.ErrNoDataRows),
		errors.Is(err, csvio.ErrNoValidRows):
		return http.StatusBadRequest
	case errors.Is(err, align.ErrPairNotFound),
		errors.Is(err, examples.ErrIndexOutOfRange),
		errors.Is(err, csvio.ErrNothingToExport):
		return http.StatusNotFound
	case errors.Is(err, apierr.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, apierr.ErrAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(err, apierr.ErrQuotaExceeded), errors.Is(err, apierr.ErrRateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, apierr.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, apierr.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"error": "..."} with its mapped status.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}
