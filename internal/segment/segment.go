// Package segment splits raw Cantonese text into sentence-like units.
//
// Corner-bracket quotations (「…」) are kept whole. Text outside quotations is
// split after sentence terminators (。！？.!?), keeping one terminator per unit.
package segment

import (
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Unit is one sentence-like span of the input.
// Position is 1-indexed and Text is trimmed and never empty.
type Unit struct {
	Position int
	Text     string
}

// quotedSpan matches a corner-bracket quotation, brackets included.
// An opening bracket without a closing one is plain text.
var quotedSpan = regexp.MustCompile(`「[^」]*」`)

// isTerminator reports whether r ends a sentence.
func isTerminator(r rune) bool {
	switch r {
	case '。', '！', '？', '.', '!', '?':
		return true
	}
	return false
}

// Units returns the units of text in order.
// The sequence is lazy and can be ranged over any number of times.
// Blank input yields nothing.
func Units(text string) iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return
		}

		pos := 0
		emit := func(s string) bool {
			s = strings.TrimSpace(s)
			if s == "" {
				return true
			}
			pos++
			return yield(Unit{Position: pos, Text: s})
		}

		last := 0
		for _, loc := range quotedSpan.FindAllStringIndex(trimmed, -1) {
			if !splitPlain(trimmed[last:loc[0]], emit) {
				return
			}
			if !emit(trimmed[loc[0]:loc[1]]) {
				return
			}
			last = loc[1]
		}
		splitPlain(trimmed[last:], emit)
	}
}

// splitPlain splits unquoted text after terminators and passes each piece to
// emit. It returns false as soon as emit does.
//
// A piece is a run of non-terminators plus at most one trailing terminator.
// Terminators that do not follow a run are dropped, unless the whole span is
// terminators, in which case the span is one piece.
func splitPlain(span string, emit func(string) bool) bool {
	span = strings.TrimSpace(span)
	if span == "" {
		return true
	}

	found := false
	start := -1
	for i := 0; i < len(span); {
		r, size := utf8.DecodeRuneInString(span[i:])
		switch {
		case !isTerminator(r):
			if start < 0 {
				start = i
			}
		case start >= 0:
			found = true
			if !emit(span[start : i+size]) {
				return false
			}
			start = -1
		}
		i += size
	}
	if start >= 0 {
		found = true
		if !emit(span[start:]) {
			return false
		}
	}

	if !found {
		return emit(span)
	}
	return true
}

// Split collects Units(text) into a slice.
func Split(text string) []Unit {
	var units []Unit
	for u := range Units(text) {
		units = append(units, u)
	}
	return units
}

// Texts returns the text of each unit.
func Texts(units []Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Text
	}
	return out
}
