package source

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
)

const maxUint32 = ^uint32(0)

// Document is an immutable snapshot of one scene's text.
type Document struct {
	URI     string
	Text    string
	lineIdx []uint32 // offsets of every '\n'
}

// NewDocument builds a document and its line index.
func NewDocument(uri, text string) *Document {
	return &Document{
		URI:     uri,
		Text:    text,
		lineIdx: buildLineIndex(text),
	}
}

// LoadDocument reads a scene file from disk. A UTF-8 BOM is dropped.
func LoadDocument(path string) (*Document, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content, _ = removeBOM(content)
	return NewDocument(PathToURI(path), string(content)), nil
}

// SceneName is the scene this document holds.
func (d *Document) SceneName() string {
	return SceneName(d.URI)
}

// LineCount returns the number of lines, counting a trailing empty line.
func (d *Document) LineCount() int {
	return len(d.lineIdx) + 1
}

// LineSpan returns the byte span of a zero-based line without its newline.
func (d *Document) LineSpan(line int) Span {
	if line < 0 {
		return Span{}
	}
	if line > len(d.lineIdx) {
		return Span{Start: len(d.Text), End: len(d.Text)}
	}
	start := 0
	if line > 0 {
		start = int(d.lineIdx[line-1]) + 1
	}
	end := len(d.Text)
	if line < len(d.lineIdx) {
		end = int(d.lineIdx[line])
	}
	if end > start && d.Text[end-1] == '\r' {
		end--
	}
	return Span{Start: start, End: end}
}

// LineText returns the text of a zero-based line without its line ending.
func (d *Document) LineText(line int) string {
	sp := d.LineSpan(line)
	return d.Text[sp.Start:sp.End]
}

// LineOf returns the zero-based line holding offset.
func (d *Document) LineOf(offset int) int {
	off := clampOffset(offset, len(d.Text))
	return sort.Search(len(d.lineIdx), func(i int) bool { return d.lineIdx[i] >= off })
}

// PositionAt converts a byte offset into a line/UTF-16 position.
func (d *Document) PositionAt(offset int) Position {
	off := clampOffset(offset, len(d.Text))
	line := sort.Search(len(d.lineIdx), func(i int) bool { return d.lineIdx[i] >= off })
	var lineStart uint32
	if line > 0 {
		lineStart = d.lineIdx[line-1] + 1
	}
	if lineStart > off {
		lineStart = off
	}
	units := 0
	for i := lineStart; i < off; {
		r, size := utf8.DecodeRuneInString(d.Text[i:off])
		if r == utf8.RuneError && size <= 1 {
			size = 1
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += toUint32(size)
	}
	return Position{Line: line, Character: units}
}

// OffsetAt converts a line/UTF-16 position into a byte offset, clamping to
// the end of the line or document.
func (d *Document) OffsetAt(pos Position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	if pos.Line > len(d.lineIdx) {
		return len(d.Text)
	}
	sp := d.LineSpan(pos.Line)
	units := 0
	off := sp.Start
	for off < sp.End && units < pos.Character {
		r, size := utf8.DecodeRuneInString(d.Text[off:sp.End])
		if r == utf8.RuneError && size <= 1 {
			size = 1
		}
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		off += size
	}
	return off
}

// RangeOf converts a byte span into a range.
func (d *Document) RangeOf(span Span) Range {
	return Range{Start: d.PositionAt(span.Start), End: d.PositionAt(span.End)}
}

// LocationOf converts a byte span into a location in this document.
func (d *Document) LocationOf(span Span) Location {
	return Location{URI: d.URI, Range: d.RangeOf(span)}
}

// SpanOf converts a range back into a byte span.
func (d *Document) SpanOf(r Range) Span {
	return Span{Start: d.OffsetAt(r.Start), End: d.OffsetAt(r.End)}
}

// TextIn returns the text covered by r.
func (d *Document) TextIn(r Range) string {
	sp := d.SpanOf(r)
	if sp.End < sp.Start {
		return ""
	}
	return d.Text[sp.Start:sp.End]
}

func (d *Document) String() string {
	return fmt.Sprintf("%s (%d lines)", d.URI, d.LineCount())
}

func buildLineIndex(text string) []uint32 {
	out := make([]uint32, 0, strings.Count(text, "\n"))
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			out = append(out, toUint32(i))
		}
	}
	return out
}

func clampOffset(offset, n int) uint32 {
	if offset < 0 {
		return 0
	}
	if offset > n {
		offset = n
	}
	return toUint32(offset)
}

func toUint32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}
