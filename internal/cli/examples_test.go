package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/alnah/go-formalize/internal/csvio"
	"github.com/alnah/go-formalize/internal/examples"
)

// execute runs cmd with args against the test env's buffers.
func execute(cmd *cobra.Command, mocks *testMocks, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(mocks.stdout)
	cmd.SetErr(mocks.stderr)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(context.Background())
}

var (
	exA = examples.Example{Cantonese: "你食咗飯未呀？", TraditionalChinese: "你吃過飯了嗎？"}
	exB = examples.Example{Cantonese: "我哋一陣去飲茶。", TraditionalChinese: "我們稍後去飲茶。"}
)

// ---------------------------------------------------------------------------
// TestParseExampleNumber
// ---------------------------------------------------------------------------

func TestParseExampleNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "1", want: 0},
		{in: "12", want: 11},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := parseExampleNumber(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidIndex) {
					t.Errorf("error = %v, want ErrInvalidIndex", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("parseExampleNumber(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExamplesCmd_CRUD - list, add, edit, delete, clear
// ---------------------------------------------------------------------------

func TestExamplesCmd_List(t *testing.T) {
	t.Parallel()

	t.Run("table", func(t *testing.T) {
		t.Parallel()

		env, mocks := testEnv(withExamples(exA, exB))
		if err := execute(ExamplesCmd(env), mocks, "list"); err != nil {
			t.Fatalf("list error: %v", err)
		}
		out := mocks.stdout.String()
		for _, want := range []string{"Cantonese", "Trad. Chinese", exA.Cantonese, exB.TraditionalChinese} {
			if !strings.Contains(out, want) {
				t.Errorf("list output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		env, mocks := testEnv(withExamples(exA))
		if err := execute(ExamplesCmd(env), mocks, "list", "--format", "json"); err != nil {
			t.Fatalf("list error: %v", err)
		}
		var got []examples.Example
		if err := json.Unmarshal([]byte(mocks.stdout.String()), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if diff := cmp.Diff([]examples.Example{exA}, got); diff != "" {
			t.Errorf("list mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty json is an array", func(t *testing.T) {
		t.Parallel()

		env, mocks := testEnv()
		if err := execute(ExamplesCmd(env), mocks, "list", "-f", "json"); err != nil {
			t.Fatalf("list error: %v", err)
		}
		if got := strings.TrimSpace(mocks.stdout.String()); got != "[]" {
			t.Errorf("stdout = %q, want []", got)
		}
	})

	t.Run("empty table hints", func(t *testing.T) {
		t.Parallel()

		env, mocks := testEnv()
		if err := execute(ExamplesCmd(env), mocks, "list"); err != nil {
			t.Fatalf("list error: %v", err)
		}
		if mocks.stdout.String() != "" || !strings.Contains(mocks.stderr.String(), "No examples yet") {
			t.Errorf("stdout = %q, stderr = %q", mocks.stdout.String(), mocks.stderr.String())
		}
	})

	t.Run("bad format", func(t *testing.T) {
		t.Parallel()

		env, mocks := testEnv()
		err := execute(ExamplesCmd(env), mocks, "list", "-f", "raw")
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("error = %v, want ErrInvalidFormat", err)
		}
	})
}

func TestExamplesCmd_Mutations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		initial    []examples.Example
		args       []string
		want       []examples.Example
		wantErr    error
		wantStderr string
	}{
		{
			name:       "add trims",
			initial:    []examples.Example{exA},
			args:       []string{"add", "  早晨 ", " 早安 "},
			want:       []examples.Example{exA, {Cantonese: "早晨", TraditionalChinese: "早安"}},
			wantStderr: "Added example 2",
		},
		{
			name:    "add blank side",
			args:    []string{"add", "早晨", "  "},
			wantErr: examples.ErrInvalidExample,
		},
		{
			name:       "edit by number",
			initial:    []examples.Example{exA, exB},
			args:       []string{"edit", "2", "早晨", "早安"},
			want:       []examples.Example{exA, {Cantonese: "早晨", TraditionalChinese: "早安"}},
			wantStderr: "Updated example 2",
		},
		{
			name:    "edit out of range",
			initial: []examples.Example{exA},
			args:    []string{"edit", "5", "早晨", "早安"},
			want:    []examples.Example{exA},
			wantErr: examples.ErrIndexOutOfRange,
		},
		{
			name:    "edit bad number",
			initial: []examples.Example{exA},
			args:    []string{"edit", "zero", "早晨", "早安"},
			want:    []examples.Example{exA},
			wantErr: ErrInvalidIndex,
		},
		{
			name:       "delete first",
			initial:    []examples.Example{exA, exB},
			args:       []string{"delete", "1"},
			want:       []examples.Example{exB},
			wantStderr: "Deleted example 1 (1 left)",
		},
		{
			name:    "clear without confirmation",
			initial: []examples.Example{exA, exB},
			args:    []string{"clear"},
			want:    []examples.Example{exA, exB},
			wantErr: ErrConfirmationRequired,
		},
		{
			name:       "clear confirmed",
			initial:    []examples.Example{exA, exB},
			args:       []string{"clear", "--yes"},
			want:       nil,
			wantStderr: "Deleted 2 examples",
		},
		{
			name:       "clear empty corpus",
			args:       []string{"clear"},
			wantStderr: "No examples to clear.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, mocks := testEnv(withExamples(tt.initial...))
			err := execute(ExamplesCmd(env), mocks, tt.args...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.want, mocks.stores.Saved(), cmpEmptyExamples); diff != "" {
				t.Errorf("corpus mismatch (-want +got):\n%s", diff)
			}
			if tt.wantStderr != "" && !strings.Contains(mocks.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", mocks.stderr.String(), tt.wantStderr)
			}
		})
	}
}

// cmpEmptyExamples treats nil and empty corpora as equal.
var cmpEmptyExamples = cmp.FilterValues(
	func(a, b []examples.Example) bool { return len(a) == 0 && len(b) == 0 },
	cmp.Ignore(),
)

func TestExamplesCmd_Path(t *testing.T) {
	t.Parallel()

	env, mocks := testEnv()
	path := filepath.Join(t.TempDir(), "corpus.db")
	if err := execute(ExamplesCmd(env), mocks, "list", "--examples", path); err != nil {
		t.Fatalf("list error: %v", err)
	}
	if diff := cmp.Diff([]string{path}, mocks.stores.Paths()); diff != "" {
		t.Errorf("opened paths mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// TestExamplesCmd_Import - CSV import modes
// ---------------------------------------------------------------------------

const importCSV = "\uFEFFCantonese,Trad. Chinese\n早晨,早安\n,缺少\n\"佢話：\"\"得\"\"\",他說：「可以」\n"

func TestExamplesCmd_Import(t *testing.T) {
	t.Parallel()

	imported := []examples.Example{
		{Cantonese: "早晨", TraditionalChinese: "早安"},
		{Cantonese: `佢話："得"`, TraditionalChinese: "他說：「可以」"},
	}

	t.Run("replace from file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "in.csv")
		if err := os.WriteFile(path, []byte(importCSV), 0o600); err != nil {
			t.Fatal(err)
		}
		env, mocks := testEnv(withExamples(exA))

		if err := execute(ExamplesCmd(env), mocks, "import", path); err != nil {
			t.Fatalf("import error: %v", err)
		}
		if diff := cmp.Diff(imported, mocks.stores.Saved()); diff != "" {
			t.Errorf("corpus mismatch (-want +got):\n%s", diff)
		}
		stderr := mocks.stderr.String()
		if !strings.Contains(stderr, "Skipped line 3") || !strings.Contains(stderr, "Imported 2 examples (2 total)") {
			t.Errorf("stderr = %q", stderr)
		}
	})

	t.Run("append from stdin", func(t *testing.T) {
		t.Parallel()

		env, mocks := testEnv(withExamples(exA), withStdin(importCSV))

		if err := execute(ExamplesCmd(env), mocks, "import", "-", "--append"); err != nil {
			t.Fatalf("import error: %v", err)
		}
		want := append([]examples.Example{exA}, imported...)
		if diff := cmp.Diff(want, mocks.stores.Saved()); diff != "" {
			t.Errorf("corpus mismatch (-want +got):\n%s", diff)
		}
		if !strings.Contains(mocks.stderr.String(), "Appended 2 examples (3 total)") {
			t.Errorf("stderr = %q", mocks.stderr.String())
		}
	})

	t.Run("bad header leaves corpus", func(t *testing.T) {
		t.Parallel()

		env, mocks := testEnv(withExamples(exA), withStdin("a,b\n1,2\n"))

		err := execute(ExamplesCmd(env), mocks, "import", "-")
		if !errors.Is(err, csvio.ErrMissingColumns) {
			t.Errorf("error = %v, want ErrMissingColumns", err)
		}
		if diff := cmp.Diff([]examples.Example{exA}, mocks.stores.Saved()); diff != "" {
			t.Errorf("corpus changed (-want +got):\n%s", diff)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		env, mocks := testEnv()
		err := execute(ExamplesCmd(env), mocks, "import", filepath.Join(t.TempDir(), "none.csv"))
		if !errors.Is(err, ErrFileNotFound) {
			t.Errorf("error = %v, want ErrFileNotFound", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestExamplesCmd_Export - CSV export to stdout and files
// ---------------------------------------------------------------------------

func TestExamplesCmd_Export(t *testing.T) {
	t.Parallel()

	wantCSV := "\uFEFF\"Cantonese\",\"Trad. Chinese\"\n\"早晨\",\"早安\""

	t.Run("stdout", func(t *testing.T) {
		t.Parallel()

		env, mocks := testEnv(withExamples(examples.Example{Cantonese: "早晨", TraditionalChinese: "早安"}))
		if err := execute(ExamplesCmd(env), mocks, "export"); err != nil {
			t.Fatalf("export error: %v", err)
		}
		if got := mocks.stdout.String(); got != wantCSV {
			t.Errorf("stdout = %q, want %q", got, wantCSV)
		}
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), csvio.FileName)
		env, mocks := testEnv(withExamples(examples.Example{Cantonese: "早晨", TraditionalChinese: "早安"}))
		if err := execute(ExamplesCmd(env), mocks, "export", "-o", path); err != nil {
			t.Fatalf("export error: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != wantCSV {
			t.Errorf("file = %q, want %q", data, wantCSV)
		}

		// A second export refuses to overwrite.
		err = execute(ExamplesCmd(env), mocks, "export", "-o", path)
		if !errors.Is(err, ErrOutputExists) {
			t.Errorf("second export error = %v, want ErrOutputExists", err)
		}
	})

	t.Run("empty corpus", func(t *testing.T) {
		t.Parallel()

		env, mocks := testEnv()
		err := execute(ExamplesCmd(env), mocks, "export")
		if !errors.Is(err, csvio.ErrNothingToExport) {
			t.Errorf("error = %v, want ErrNothingToExport", err)
		}
	})
}
