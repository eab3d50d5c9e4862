package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
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

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitSetup       = 3
	ExitValidation  = 4
	ExitTranslation = 5
	ExitInterrupt   = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	var verbose bool

	// Root command.
	rootCmd := &cobra.Command{
		Use:     "formalize",
		Short:   "Translate verbal Cantonese into formal Traditional Chinese",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			env.Logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = env.Logger.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")

	// Subcommands.
	rootCmd.AddCommand(cli.TranslateCmd(env))
	rootCmd.AddCommand(cli.ExamplesCmd(env))
	rootCmd.AddCommand(cli.ServeCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// newLogger builds the stderr logger. Only warnings are shown unless verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, apierr.ErrNotConfigured) || errors.Is(err, translate.ErrUnknownProvider) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if isAny(err,
		align.ErrNothingToTranslate, align.ErrPairNotFound,
		cli.ErrInputConflict, cli.ErrInvalidFormat, cli.ErrInvalidFlag, cli.ErrInvalidIndex,
		cli.ErrFileNotFound, cli.ErrOutputExists, cli.ErrConfirmationRequired,
		examples.ErrInvalidExample, examples.ErrPlaceholderPair, examples.ErrIndexOutOfRange,
		examples.ErrUnsupportedStore,
		csvio.ErrEmpty, csvio.ErrMissingColumns, csvio.ErrNoDataRows, csvio.ErrNoValidRows,
		csvio.ErrNothingToExport,
		template.ErrInvalid, config.ErrUnknownKey,
	) {
		return ExitValidation
	}

	// Translation errors (ExitTranslation = 5).
	if isAny(err,
		apierr.ErrAuthFailed, apierr.ErrQuotaExceeded, apierr.ErrRateLimit,
		apierr.ErrTimeout, apierr.ErrTransport, apierr.ErrBadRequest,
	) {
		return ExitTranslation
	}

	return ExitGeneral
}

// isAny reports whether err matches any of the targets.
func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
