// Package csvio imports and exports the example corpus as CSV.
//
// The format is two named columns, "Cantonese" and "Trad. Chinese", matched
// case-insensitively in any position; other columns are ignored. Exports are
// written for spreadsheet tools: UTF-8 BOM, every field quoted.
package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-formalize/internal/examples"
)

// Column headers, lowercased for matching.
const (
	columnCantonese = "cantonese"
	columnFormal    = "trad. chinese"
)

// FileName is the default export file name.
const FileName = "translation_examples.csv"

var bom = []byte("\uFEFF")

// Skip records a data row that was not imported.
type Skip struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result is the outcome of a successful Parse.
type Result struct {
	Examples []examples.Example
	Skipped  []Skip
}

// Parse reads examples from CSV.
// Quoted fields may contain commas, doubled quotes, and newlines; stray quotes
// in unquoted fields are tolerated. Values are trimmed. Rows with every value
// empty are ignored; rows missing either value are reported in Skipped.
func Parse(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, bom)
	if len(bytes.TrimSpace(data)) == 0 {
		return Result{}, ErrEmpty
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read CSV header: %w", err)
	}
	cantoneseIdx, formalIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case columnCantonese:
			if cantoneseIdx < 0 {
				cantoneseIdx = i
			}
		case columnFormal:
			if formalIdx < 0 {
				formalIdx = i
			}
		}
	}
	if cantoneseIdx < 0 || formalIdx < 0 {
		return Result{}, ErrMissingColumns
	}

	var (
		res  Result
		rows int
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			rows++
			res.Skipped = append(res.Skipped, Skip{Line: perr.StartLine, Reason: perr.Err.Error()})
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("read CSV: %w", err)
		}
		rows++
		line, _ := cr.FieldPos(0)

		if allBlank(record) {
			continue
		}
		if len(record) <= max(cantoneseIdx, formalIdx) {
			res.Skipped = append(res.Skipped, Skip{Line: line, Reason: "not enough columns"})
			continue
		}
		ex, err := examples.New(record[cantoneseIdx], record[formalIdx])
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{Line: line, Reason: "missing Cantonese or Traditional Chinese value"})
			continue
		}
		res.Examples = append(res.Examples, ex)
	}

	if rows == 0 {
		return Result{}, ErrNoDataRows
	}
	if len(res.Examples) == 0 {
		return Result{Skipped: res.Skipped}, ErrNoValidRows
	}
	return res, nil
}

func allBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Write exports examples as CSV: UTF-8 BOM, a quoted header row, then one row
// per example with every field quoted and inner quotes doubled. Rows are
// separated by "\n" with no trailing newline.
// Returns ErrNothingToExport if exs is empty.
func Write(w io.Writer, exs []examples.Example) error {
	if len(exs) == 0 {
		return ErrNothingToExport
	}

	bw := bufio.NewWriter(w)
	bw.Write(bom)
	bw.WriteString(`"Cantonese","Trad. Chinese"`)
	for _, ex := range exs {
		bw.WriteByte('\n')
		bw.WriteString(quote(ex.Cantonese))
		bw.WriteByte(',')
		bw.WriteString(quote(ex.TraditionalChinese))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write CSV: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
