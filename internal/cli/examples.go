package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alnah/go-formalize/internal/csvio"
	"github.com/alnah/go-formalize/internal/examples"
)

// ExamplesCmd creates the examples command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ExamplesCmd(env *Env) *cobra.Command {
	var examplesPath string

	cmd := &cobra.Command{
		Use:   "examples",
		Short: "Manage the translation example corpus",
		Long: `Manage the example pairs sent with every translation request.

The corpus is stored in ~/.local/share/go-formalize/examples.json by default.
A path ending in .db, .sqlite or .sqlite3 uses a SQLite database instead.
Examples are numbered from 1 as shown by "examples list".`,
		Example: `  formalize examples list
  formalize examples add "食咗飯未？" "用膳了嗎？"
  formalize examples edit 2 "早晨" "早安"
  formalize examples import translation_examples.csv --append
  formalize examples export -o backup.csv`,
	}

	cmd.PersistentFlags().StringVar(&examplesPath, "examples", "", "Example corpus file (.json, or .db for SQLite)")

	// withCollection opens the corpus for the duration of fn.
	withCollection := func(cmd *cobra.Command, fn func(context.Context, *examples.Collection) error) error {
		ctx := cmd.Context()
		cfg := loadConfig(env)
		coll, _, closeStore, err := openCollection(ctx, env, examplesPath, cfg.ExamplesPath)
		if err != nil {
			return err
		}
		defer closeStore()
		return fn(ctx, coll)
	}

	cmd.AddCommand(examplesListCmd(env, withCollection))
	cmd.AddCommand(examplesAddCmd(env, withCollection))
	cmd.AddCommand(examplesEditCmd(env, withCollection))
	cmd.AddCommand(examplesDeleteCmd(env, withCollection))
	cmd.AddCommand(examplesClearCmd(env, withCollection))
	cmd.AddCommand(examplesImportCmd(env, withCollection))
	cmd.AddCommand(examplesExportCmd(env, withCollection))

	return cmd
}

// collectionRunner opens the corpus and runs fn against it.
type collectionRunner func(cmd *cobra.Command, fn func(context.Context, *examples.Collection) error) error

func examplesListCmd(env *Env, with collectionRunner) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all examples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return with(cmd, func(_ context.Context, coll *examples.Collection) error {
				return runExamplesList(env, coll, format)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(formatTable), "Output format: table, json")
	return cmd
}

func examplesAddCmd(env *Env, with collectionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "add <cantonese> <traditional-chinese>",
		Short: "Add an example pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return with(cmd, func(ctx context.Context, coll *examples.Collection) error {
				return runExamplesAdd(ctx, env, coll, args[0], args[1])
			})
		},
	}
}

func examplesEditCmd(env *Env, with collectionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <number> <cantonese> <traditional-chinese>",
		Short: "Replace an example pair",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseExampleNumber(args[0])
			if err != nil {
				return err
			}
			return with(cmd, func(ctx context.Context, coll *examples.Collection) error {
				return runExamplesEdit(ctx, env, coll, index, args[1], args[2])
			})
		},
	}
}

func examplesDeleteCmd(env *Env, with collectionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <number>",
		Short: "Delete an example pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseExampleNumber(args[0])
			if err != nil {
				return err
			}
			return with(cmd, func(ctx context.Context, coll *examples.Collection) error {
				if err := coll.Delete(ctx, index); err != nil {
					return err
				}
				fmt.Fprintf(env.Stderr, "Deleted example %d (%d left)\n", index+1, coll.Len())
				return nil
			})
		},
	}
}

func examplesClearCmd(env *Env, with collectionRunner) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every example",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return with(cmd, func(ctx context.Context, coll *examples.Collection) error {
				return runExamplesClear(ctx, env, coll, yes)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deleting all examples")
	return cmd
}

func examplesImportCmd(env *Env, with collectionRunner) *cobra.Command {
	var appendMode bool
	cmd := &cobra.Command{
		Use:   "import <file.csv|->",
		Short: "Import examples from CSV",
		Long: `Import examples from a CSV file with "Cantonese" and "Trad. Chinese" columns.

The corpus is replaced by the imported rows unless --append is set. Rows
missing either value are skipped and reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return with(cmd, func(ctx context.Context, coll *examples.Collection) error {
				return runExamplesImport(ctx, env, coll, args[0], appendMode)
			})
		},
	}
	cmd.Flags().BoolVar(&appendMode, "append", false, "Add to the corpus instead of replacing it")
	return cmd
}

func examplesExportCmd(env *Env, with collectionRunner) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export examples to CSV",
		Long: `Export examples as UTF-8 CSV with a byte order mark, readable by spreadsheet
applications. Writes to stdout unless -o is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return with(cmd, func(_ context.Context, coll *examples.Collection) error {
				return runExamplesExport(env, coll, output)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (e.g. "+csvio.FileName+")")
	return cmd
}

// parseExampleNumber converts a 1-based example number to an index.
func parseExampleNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidIndex)
	}
	return n - 1, nil
}

func runExamplesList(env *Env, coll *examples.Collection, format string) error {
	exs := coll.All()
	switch outputFormat(format) {
	case formatJSON:
		if exs == nil {
			exs = []examples.Example{}
		}
		return writeJSON(env.Stdout, exs)
	case formatTable, "":
		if len(exs) == 0 {
			fmt.Fprintln(env.Stderr, "No examples yet. Add some with \"formalize examples add\" or import a CSV.")
			return nil
		}
		return renderExamples(env.Stdout, exs)
	default:
		return fmt.Errorf("%q (use table or json): %w", format, ErrInvalidFormat)
	}
}

func runExamplesAdd(ctx context.Context, env *Env, coll *examples.Collection, cantonese, formal string) error {
	ex, err := examples.New(cantonese, formal)
	if err != nil {
		return err
	}
	if err := coll.Add(ctx, ex); err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Added example %d\n", coll.Len())
	return nil
}

func runExamplesEdit(ctx context.Context, env *Env, coll *examples.Collection, index int, cantonese, formal string) error {
	ex, err := examples.New(cantonese, formal)
	if err != nil {
		return err
	}
	if err := coll.Update(ctx, index, ex); err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Updated example %d\n", index+1)
	return nil
}

func runExamplesClear(ctx context.Context, env *Env, coll *examples.Collection, yes bool) error {
	n := coll.Len()
	if n == 0 {
		fmt.Fprintln(env.Stderr, "No examples to clear.")
		return nil
	}
	if !yes {
		return fmt.Errorf("refusing to delete %d examples without --yes: %w", n, ErrConfirmationRequired)
	}
	if err := coll.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Deleted %d examples\n", n)
	return nil
}

func runExamplesImport(ctx context.Context, env *Env, coll *examples.Collection, path string, appendMode bool) error {
	var r io.Reader = env.Stdin
	if path != "-" {
		// #nosec G304 -- import path is user-provided
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%s: %w", path, ErrFileNotFound)
			}
			return fmt.Errorf("cannot open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	res, err := csvio.Parse(r)
	if err != nil {
		return err
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(env.Stderr, "  Skipped line %d: %s\n", s.Line, s.Reason)
	}

	if appendMode {
		err = coll.Append(ctx, res.Examples)
	} else {
		err = coll.Replace(ctx, res.Examples)
	}
	if err != nil {
		return err
	}

	verb := "Imported"
	if appendMode {
		verb = "Appended"
	}
	fmt.Fprintf(env.Stderr, "%s %d examples (%d total)\n", verb, len(res.Examples), coll.Len())
	return nil
}

func runExamplesExport(env *Env, coll *examples.Collection, output string) error {
	var buf bytes.Buffer
	if err := csvio.Write(&buf, coll.All()); err != nil {
		return err
	}

	if output == "" {
		_, err := env.Stdout.Write(buf.Bytes())
		return err
	}
	if err := writeFileAtomic(output, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Exported %d examples to %s\n", coll.Len(), output)
	return nil
}
