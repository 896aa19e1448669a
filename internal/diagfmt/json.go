package diagfmt

import (
	"encoding/json"
	"io"
	"strings"

	"csls/internal/source"
)

// LocationJSON is a location in a scene file.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte int    `json:"start_byte"`
	EndByte   int    `json:"end_byte"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// FixJSON is one suggested replacement.
type FixJSON struct {
	Title       string   `json:"title"`
	NewText     string   `json:"new_text"`
	OldText     string   `json:"old_text,omitempty"`
	BeforeLines []string `json:"before_lines,omitempty"`
	AfterLines  []string `json:"after_lines,omitempty"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(doc *source.Document, span source.Span, opts JSONOpts) LocationJSON {
	rng := doc.RangeOf(span)
	return LocationJSON{
		File:      formatPath(doc.URI, opts.PathMode, opts.BaseDir),
		StartByte: span.Start,
		EndByte:   span.End,
		StartLine: rng.Start.Line + 1,
		StartCol:  rng.Start.Character + 1,
		EndLine:   rng.End.Line + 1,
		EndCol:    rng.End.Character + 1,
	}
}

// BuildDiagnosticsOutput assembles the JSON document without serialising
// it. Lines and columns are one-based.
func BuildDiagnosticsOutput(reports []Report, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				out.Count = len(out.Diagnostics)
				return out
			}
			dj := DiagnosticJSON{
				Severity: strings.ToLower(d.Severity.String()),
				Code:     d.Code.ID(),
				Title:    d.Code.Title(),
				Message:  d.Message,
				Location: makeLocation(r.Document, d.Span, opts),
			}
			if opts.IncludeFixes {
				for _, f := range d.Fixes {
					fj := FixJSON{Title: f.Title, NewText: f.NewText}
					if pv, err := buildFixPreview(r.Document, d.Span, f); err == nil {
						fj.OldText = r.Document.Text[d.Span.Start:d.Span.End]
						fj.BeforeLines = pv.before
						fj.AfterLines = pv.after
					}
					dj.Fixes = append(dj.Fixes, fj)
				}
			}
			out.Diagnostics = append(out.Diagnostics, dj)
		}
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the diagnostics as an indented JSON document.
func JSON(w io.Writer, reports []Report, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(reports, opts))
}
