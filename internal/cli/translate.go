package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-formalize/internal/align"
	"github.com/alnah/go-formalize/internal/formalize"
)

// translateOptions holds validated options for the translate command.
type translateOptions struct {
	pipelineOptions
	input        string // file path, "-" for stdin, or "" when text is set
	text         string
	format       outputFormat
	addExamples  bool
	examplesPath string
}

// TranslateCmd creates the translate command.
// The env parameter provides injectable dependencies for testing.
func TranslateCmd(env *Env) *cobra.Command {
	var (
		text         string
		format       string
		addExamples  bool
		examplesPath string
		pipe         pipelineOptions
	)

	cmd := &cobra.Command{
		Use:   "translate [file|-]",
		Short: "Translate verbal Cantonese into formal Traditional Chinese",
		Long: `Translate verbal Cantonese into formal written Traditional Chinese.

Input comes from --text, a file, or stdin ("-" or no argument). The text is
split into sentences, each tagged with a marker, and the model output is
aligned back to the input sentence by sentence. Sentences the model skipped
are shown with a placeholder.

Your example corpus is sent with every request to guide the style. Use
--add-examples to append the new pairs to the corpus.`,
		Example: `  formalize translate --text "你食咗飯未呀？我哋一陣去飲茶。"
  formalize translate speech.txt --format text
  cat speech.txt | formalize translate - --provider openai --format json
  formalize translate long.txt --chunk 40 --concurrency 4 --retries 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseTranslateOptions(args, text, format, addExamples, examplesPath, pipe)
			if err != nil {
				return err
			}
			return runTranslate(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to translate (instead of a file)")
	cmd.Flags().StringVarP(&format, "format", "f", string(formatTable), "Output format: table, text, json, raw")
	cmd.Flags().BoolVar(&addExamples, "add-examples", false, "Add every translated pair to the example corpus")
	cmd.Flags().StringVar(&examplesPath, "examples", "", "Example corpus file (.json, or .db for SQLite)")
	addPipelineFlags(cmd, &pipe)

	return cmd
}

// addPipelineFlags registers the flags shared by translate and serve.
func addPipelineFlags(cmd *cobra.Command, o *pipelineOptions) {
	cmd.Flags().StringVar(&o.provider, "provider", "", "Translation provider: gemini, openai, deepseek (default gemini)")
	cmd.Flags().StringVar(&o.model, "model", "", "Model name (default depends on provider)")
	cmd.Flags().IntVar(&o.chunk, "chunk", 0, "Maximum sentences per request (0 = one request)")
	cmd.Flags().IntVar(&o.concurrency, "concurrency", formalize.DefaultConcurrency, "Parallel requests when chunking")
	cmd.Flags().IntVar(&o.retries, "retries", 0, "Retries for rate limits, timeouts and transport errors")
	cmd.Flags().StringVar(&o.promptFile, "prompt-file", "", "YAML file overriding the prompt template")
}

// parseTranslateOptions validates and parses CLI inputs into translateOptions.
func parseTranslateOptions(args []string, text, format string, addExamples bool, examplesPath string, pipe pipelineOptions) (translateOptions, error) {
	var input string
	if len(args) == 1 {
		input = args[0]
	}
	if text != "" && input != "" {
		return translateOptions{}, ErrInputConflict
	}
	if text == "" && input == "" {
		input = "-"
	}

	parsedFormat, err := parseFormat(format)
	if err != nil {
		return translateOptions{}, err
	}
	if err := pipe.validate(); err != nil {
		return translateOptions{}, err
	}

	return translateOptions{
		pipelineOptions: pipe,
		input:           input,
		text:            text,
		format:          parsedFormat,
		addExamples:     addExamples,
		examplesPath:    examplesPath,
	}, nil
}

// utf8BOM is the byte order mark some editors prepend to UTF-8 files.
const utf8BOM = "\uFEFF"

// readInput returns the text to translate, without a leading byte order mark.
func readInput(env *Env, opts translateOptions) (string, error) {
	switch opts.input {
	case "":
		return opts.text, nil
	case "-":
		data, err := io.ReadAll(env.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimPrefix(string(data), utf8BOM), nil
	default:
		// #nosec G304 -- input path is user-provided
		data, err := os.ReadFile(opts.input)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%s: %w", opts.input, ErrFileNotFound)
			}
			return "", fmt.Errorf("cannot read file: %w", err)
		}
		return strings.TrimPrefix(string(data), utf8BOM), nil
	}
}

// runTranslate executes the translate command with validated options.
func runTranslate(ctx context.Context, env *Env, opts translateOptions) error {
	// === VALIDATION (fail-fast) ===

	text, err := readInput(env, opts)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("please enter some Cantonese text to translate: %w", align.ErrNothingToTranslate)
	}

	cfg := loadConfig(env)

	svc, provider, err := newService(ctx, env, cfg, opts.pipelineOptions, env.Stderr)
	if err != nil {
		return err
	}

	coll, _, closeStore, err := openCollection(ctx, env, opts.examplesPath, cfg.ExamplesPath)
	if err != nil {
		return err
	}
	defer closeStore()

	// === TRANSLATE ===

	exs := coll.All()
	fmt.Fprintf(env.Stderr, "Translating with %s (%d examples)...\n", provider, len(exs))

	res, err := svc.Translate(ctx, text, exs)
	if err != nil {
		return err
	}

	// === OUTPUT ===

	if err := writeResult(env.Stdout, opts.format, res); err != nil {
		return err
	}

	missing := len(res.Pairs) - len(res.Pairs.Translated())
	if missing > 0 {
		fmt.Fprintf(env.Stderr, "Warning: %d of %d sentences have no translation\n", missing, len(res.Pairs))
	}

	if opts.addExamples {
		n, err := coll.AddPairs(ctx, res.Pairs)
		if err != nil {
			return fmt.Errorf("add examples: %w", err)
		}
		fmt.Fprintf(env.Stderr, "Added %d example(s) (%d total)\n", n, coll.Len())
	}

	return nil
}

// writeResult prints res in the chosen format.
func writeResult(w io.Writer, format outputFormat, res formalize.Result) error {
	switch format {
	case formatText:
		_, err := fmt.Fprintln(w, res.Pairs.JoinedText(res.Raw))
		return err
	case formatRaw:
		_, err := fmt.Fprintln(w, res.Raw)
		return err
	case formatJSON:
		pairs := res.Pairs
		if pairs == nil {
			pairs = align.Pairs{}
		}
		return writeJSON(w, translationJSON{
			Raw:    res.Raw,
			Pairs:  pairs,
			Joined: res.Pairs.JoinedText(res.Raw),
		})
	default:
		return renderPairs(w, res.Pairs)
	}
}
