package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/alnah/go-formalize/internal/align"
	"github.com/alnah/go-formalize/internal/apierr"
	"github.com/alnah/go-formalize/internal/cli"
	"github.com/alnah/go-formalize/internal/config"
	"github.com/alnah/go-formalize/internal/csvio"
	"github.com/alnah/go-formalize/internal/examples"
	"github.com/alnah/go-formalize/internal/template"
	"github.com/alnah/go-formalize/internal/translate"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"interrupt", fmt.Errorf("request 1/2: %w", context.Canceled), ExitInterrupt},
		{"unknown flag", errors.New("unknown flag: --foo"), ExitUsage},
		{"arg count", errors.New("accepts at most 1 arg(s), received 2"), ExitUsage},
		{"unknown command", errors.New(`unknown command "frob" for "formalize"`), ExitUsage},
		{"missing key", fmt.Errorf("%w: no API key for gemini", apierr.ErrNotConfigured), ExitSetup},
		{"unknown provider", fmt.Errorf(`"x": %w`, translate.ErrUnknownProvider), ExitSetup},
		{"blank input", align.ErrNothingToTranslate, ExitValidation},
		{"input conflict", cli.ErrInputConflict, ExitValidation},
		{"bad csv", csvio.ErrMissingColumns, ExitValidation},
		{"bad example", examples.ErrInvalidExample, ExitValidation},
		{"bad template", fmt.Errorf("prompt file: %w", template.ErrInvalid), ExitValidation},
		{"bad config key", config.ErrUnknownKey, ExitValidation},
		{"clear without yes", cli.ErrConfirmationRequired, ExitValidation},
		{"quota", fmt.Errorf("gemini: %w", apierr.ErrQuotaExceeded), ExitTranslation},
		{"auth", apierr.ErrAuthFailed, ExitTranslation},
		{"chunk transport", fmt.Errorf("request 2/3: %w", apierr.ErrTransport), ExitTranslation},
		{"other", errors.New("disk full"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	quiet, err := newLogger(false)
	if err != nil {
		t.Fatalf("newLogger(false) error: %v", err)
	}
	if quiet.Core().Enabled(zapcore.DebugLevel) || !quiet.Core().Enabled(zapcore.WarnLevel) {
		t.Error("default logger should enable warn but not debug")
	}

	loud, err := newLogger(true)
	if err != nil {
		t.Fatalf("newLogger(true) error: %v", err)
	}
	if !loud.Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose logger should enable debug")
	}
}
