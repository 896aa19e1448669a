package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"csls/internal/diag"
	"csls/internal/source"
)

const marketURI = "file:///home/user/project/scenes/market.txt"

func marketReport() []Report {
	doc := source.NewDocument(marketURI, "You have ${silver} gold.\nWait... what?\n")
	return []Report{{
		Document: doc,
		Diagnostics: []diag.Diagnostic{
			diag.NewError(diag.RefUndefinedVariable, source.Span{Start: 11, End: 17}, "Undefined variable: silver"),
			diag.NewInfo(diag.StyEllipsis, source.Span{Start: 29, End: 32}, "Use an ellipsis").
				WithFix("Replace with an ellipsis", "…"),
		},
	}}
}

func TestPathModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     PathMode
		base     string
		contains string
	}{
		{"absolute", PathModeAbsolute, "", "/home/user/project/scenes/market.txt:1:12"},
		{"relative", PathModeRelative, "/home/user/project", "\nscenes/market.txt:1:12"},
		{"basename", PathModeBasename, "", "\nmarket.txt:1:12"},
		{"auto outside base", PathModeAuto, "/elsewhere", "/home/user/project/scenes/market.txt:1:12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, marketReport(), PrettyOpts{PathMode: tt.mode, BaseDir: tt.base})
			out := "\n" + buf.String()
			if !strings.Contains(out, tt.contains) {
				t.Fatalf("output missing %q:\n%s", tt.contains, out)
			}
		})
	}
}

func TestPrettyUnderlinesSpan(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, marketReport(), PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("short output:\n%s", buf.String())
	}
	if lines[0] != "market.txt:1:12: error[REF3001]: Undefined variable: silver" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "1 | You have ${silver} gold." {
		t.Fatalf("source line = %q", lines[1])
	}
	if want := "  | " + strings.Repeat(" ", 11) + "^~~~~~"; lines[2] != want {
		t.Fatalf("caret line = %q, want %q", lines[2], want)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("color escapes written with color disabled")
	}
}

func TestPrettyShowsFixPreview(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, marketReport(), PrettyOpts{PathMode: PathModeBasename, ShowFixes: true, ShowPreview: true})
	out := buf.String()
	for _, want := range []string{
		"market.txt:2:5: info[STY5001]: Use an ellipsis",
		"  = fix: Replace with an ellipsis",
		"  + Wait… what?",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrettyExpandsTabsBeforeCaret(t *testing.T) {
	doc := source.NewDocument(marketURI, "\t*set gold + x\n")
	var buf bytes.Buffer
	Pretty(&buf, []Report{{Document: doc, Diagnostics: []diag.Diagnostic{
		diag.NewError(diag.RefUndefinedVariable, source.Span{Start: 13, End: 14}, "Undefined variable: x"),
	}}}, PrettyOpts{PathMode: PathModeBasename, TabWidth: 2})
	lines := strings.Split(buf.String(), "\n")
	if lines[1] != "1 |   *set gold + x" {
		t.Fatalf("source line = %q", lines[1])
	}
	if want := "  | " + strings.Repeat(" ", 14) + "^"; lines[2] != want {
		t.Fatalf("caret line = %q, want %q", lines[2], want)
	}
}
