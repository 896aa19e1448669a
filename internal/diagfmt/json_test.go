package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, marketReport(), JSONOpts{PathMode: PathModeRelative, BaseDir: "/home/user/project", IncludeFixes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	first := out.Diagnostics[0]
	if first.Severity != "error" || first.Code != "REF3001" || first.Title != "Undefined variable" {
		t.Fatalf("first = %+v", first)
	}
	want := LocationJSON{File: "scenes/market.txt", StartByte: 11, EndByte: 17, StartLine: 1, StartCol: 12, EndLine: 1, EndCol: 18}
	if first.Location != want {
		t.Fatalf("location = %+v, want %+v", first.Location, want)
	}
	second := out.Diagnostics[1]
	if len(second.Fixes) != 1 {
		t.Fatalf("fixes = %+v", second.Fixes)
	}
	fix := second.Fixes[0]
	if fix.OldText != "..." || fix.NewText != "…" || len(fix.AfterLines) != 1 || fix.AfterLines[0] != "Wait… what?" {
		t.Fatalf("fix = %+v", fix)
	}
}

func TestJSONMaxAndEmpty(t *testing.T) {
	out := BuildDiagnosticsOutput(marketReport(), JSONOpts{Max: 1})
	if out.Count != 1 || out.Diagnostics[0].Fixes != nil {
		t.Fatalf("out = %+v", out)
	}
	var buf bytes.Buffer
	if err := JSON(&buf, nil, JSONOpts{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if got := buf.String(); got != "{\n  \"diagnostics\": [],\n  \"count\": 0\n}\n" {
		t.Fatalf("empty output = %q", got)
	}
}
