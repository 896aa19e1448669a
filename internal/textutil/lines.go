package textutil

import (
	"strings"
	"unicode"
)

// LineBegin returns the offset of the first byte of the line holding offset.
func LineBegin(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	if offset <= 0 {
		return 0
	}
	return strings.LastIndexByte(text[:offset], '\n') + 1
}

// LineEnd returns the offset of the newline ending the line holding offset,
// or len(text) on the last line. A trailing '\r' is excluded.
func LineEnd(text string, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(text) {
		return len(text)
	}
	end := len(text)
	if i := strings.IndexByte(text[offset:], '\n'); i >= 0 {
		end = offset + i
	}
	if end > offset && text[end-1] == '\r' {
		end--
	}
	return end
}

// NextLine returns the offset just past the newline ending the line holding
// offset.
func NextLine(text string, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(text) {
		return len(text)
	}
	if i := strings.IndexByte(text[offset:], '\n'); i >= 0 {
		return offset + i + 1
	}
	return len(text)
}

// Indentation returns the leading run of spaces and tabs of line.
func Indentation(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}

// IndentWidth measures indentation with tabs counted as one unit, the way
// the interpreter compares block depth.
func IndentWidth(line string) int {
	return len(Indentation(line))
}

// IsBlank reports whether line holds only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// SkipSpaces returns the first offset at or after start that is not a space
// or tab.
func SkipSpaces(text string, start int) int {
	for start < len(text) && (text[start] == ' ' || text[start] == '\t') {
		start++
	}
	return start
}

// Summarize shortens text to at most max runes on a word boundary and
// appends an ellipsis when anything was cut.
func Summarize(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if max <= 1 || len(runes) <= max {
		return text
	}
	cut := max - 1
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut <= 0 {
		cut = max - 1
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + "…"
}
