package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"csls/internal/diag"
	"csls/internal/source"
)

// Report is the diagnostics of one document.
type Report struct {
	Document    *source.Document
	Diagnostics []diag.Diagnostic
}

type palette struct {
	err, warn, info, path, gutter, caret, fix *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		fix:    color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.path, p.gutter, p.caret, p.fix} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty writes human-readable diagnostics in the form
//
//	<path>:<line>:<col>: <severity>[<code>]: <message>
//
// followed by the source line with the span underlined.
func Pretty(w io.Writer, reports []Report, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			prettyOne(w, r.Document, d, opts, p)
		}
	}
}

func prettyOne(w io.Writer, doc *source.Document, d diag.Diagnostic, opts PrettyOpts, p palette) {
	rng := doc.RangeOf(d.Span)
	path := formatPath(doc.URI, opts.PathMode, opts.BaseDir)
	sev := strings.ToLower(d.Severity.String())
	fmt.Fprintf(w, "%s: %s: %s\n",
		p.path.Sprintf("%s:%d:%d", path, rng.Start.Line+1, rng.Start.Character+1),
		p.severity(d.Severity).Sprintf("%s[%s]", sev, d.Code.ID()),
		d.Message)

	line := rng.Start.Line
	lineSpan := doc.LineSpan(line)
	text := doc.LineText(line)
	startCol := clamp(d.Span.Start-lineSpan.Start, 0, len(text))
	endCol := clamp(d.Span.End-lineSpan.Start, startCol, len(text))

	tab := opts.TabWidth
	if tab <= 0 {
		tab = 4
	}
	shown := expandTabs(text, tab)
	pad := runewidth.StringWidth(expandTabs(text[:startCol], tab))
	width := runewidth.StringWidth(expandTabs(text[:endCol], tab)) - pad
	if width < 1 {
		width = 1
	}
	if opts.Width > 0 && runewidth.StringWidth(shown) > opts.Width {
		shown = runewidth.Truncate(shown, opts.Width, "...")
	}

	gutter := fmt.Sprintf("%d", line+1)
	blank := strings.Repeat(" ", len(gutter))
	fmt.Fprintf(w, "%s %s\n", p.gutter.Sprint(gutter+" |"), shown)
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprint(blank+" |"), strings.Repeat(" ", pad),
		p.caret.Sprint("^"+strings.Repeat("~", width-1)))

	if !opts.ShowFixes {
		return
	}
	for _, f := range d.Fixes {
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprint(blank+" ="), p.fix.Sprintf("fix: %s", f.Title))
		if !opts.ShowPreview {
			continue
		}
		if pv, err := buildFixPreview(doc, d.Span, f); err == nil {
			for _, l := range pv.after {
				fmt.Fprintf(w, "%s %s\n", p.gutter.Sprint(blank+" +"), expandTabs(l, tab))
			}
		}
	}
}

func expandTabs(s string, width int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", width))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
