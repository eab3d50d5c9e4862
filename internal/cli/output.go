package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/alnah/go-formalize/internal/align"
	"github.com/alnah/go-formalize/internal/examples"
)

// outputFormat selects how translate prints its result.
type outputFormat string

const (
	formatTable outputFormat = "table"
	formatText  outputFormat = "text"
	formatJSON  outputFormat = "json"
	formatRaw   outputFormat = "raw"
)

// parseFormat validates a --format value. Empty selects table.
func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return formatTable, nil
	case formatTable, formatText, formatJSON, formatRaw:
		return f, nil
	default:
		return "", fmt.Errorf("%q (use table, text, json or raw): %w", s, ErrInvalidFormat)
	}
}

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle        = lipgloss.NewStyle().Padding(0, 1)
	placeholderStyle = cellStyle.Foreground(lipgloss.Color("#E5534B")).Italic(true)
	borderStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E7781"))
)

// renderPairs writes pairs as a bordered table. Rows without a translation
// are highlighted.
func renderPairs(w io.Writer, pairs align.Pairs) error {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{strconv.Itoa(i + 1), p.Original, p.Translated}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("#", "Verbal Cantonese", "Formal Traditional Chinese").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2 && !pairs[row].HasTranslation():
				return placeholderStyle
			default:
				return cellStyle
			}
		})

	_, err := fmt.Fprintln(w, t.String())
	return err
}

// renderExamples writes the corpus as a numbered table.
func renderExamples(w io.Writer, exs []examples.Example) error {
	rows := make([][]string, len(exs))
	for i, ex := range exs {
		rows[i] = []string{strconv.Itoa(i + 1), ex.Cantonese, ex.TraditionalChinese}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("#", "Cantonese", "Trad. Chinese").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.String())
	return err
}

// translationJSON is the --format json document.
type translationJSON struct {
	Raw    string      `json:"raw"`
	Pairs  align.Pairs `json:"pairs"`
	Joined string      `json:"joined"`
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// progressCallback reports chunked requests on w. Single requests stay quiet.
func progressCallback(w io.Writer) func(done, total int) {
	return func(done, total int) {
		if total > 1 {
			_, _ = fmt.Fprintf(w, "  Translated part %d/%d\n", done, total)
		}
	}
}

// writeFileAtomic writes content to path atomically.
// It fails if the file already exists (O_EXCL), preventing accidental overwrites.
// On write failure, the partial file is removed.
func writeFileAtomic(path string, content []byte) error {
	// #nosec G302 G304 -- user-specified output file with standard permissions
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("output file already exists: %s: %w", path, ErrOutputExists)
		}
		return fmt.Errorf("cannot create output file: %w", err)
	}

	writeErr := func() error {
		defer func() { _ = f.Close() }()
		if _, err := f.Write(content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}()

	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}

	return nil
}
