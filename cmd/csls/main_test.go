package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"csls/internal/diag"
	"csls/internal/expr"
	"csls/internal/fix"
	"csls/internal/observ"
	"csls/internal/project"
	"csls/internal/source"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestReadSwitchMode(t *testing.T) {
	cases := []struct {
		input string
		want  switchMode
		err   bool
	}{
		{"", modeAuto, false},
		{"AUTO", modeAuto, false},
		{"on", modeOn, false},
		{"never", modeOff, false},
		{"sometimes", "", true},
	}
	for _, tc := range cases {
		got, err := readSwitchMode("ui", tc.input)
		if (err != nil) != tc.err {
			t.Fatalf("readSwitchMode(%q) error = %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("readSwitchMode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
	if !modeOn.enabled(nil) || modeOff.enabled(os.Stdout) || modeAuto.enabled(nil) {
		t.Fatalf("explicit modes must not depend on the terminal")
	}
}

func TestInitialConfigRecordsSceneDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "web", "mygame", "scenes", "startup.txt"), "*finish\n")
	cfg, err := initialConfig(root)
	if err != nil {
		t.Fatalf("initialConfig: %v", err)
	}
	if cfg.Project.Scenes != "web/mygame/scenes" || !cfg.Diagnostics.StyleGuide {
		t.Fatalf("config = %+v", cfg)
	}

	flat := t.TempDir()
	writeFile(t, filepath.Join(flat, "startup.txt"), "*finish\n")
	cfg, err = initialConfig(flat)
	if err != nil {
		t.Fatalf("initialConfig: %v", err)
	}
	if cfg.Project.Scenes != "" {
		t.Fatalf("scenes = %q for a flat game", cfg.Project.Scenes)
	}
}

func TestCollectReports(t *testing.T) {
	doc := source.NewDocument("file:///game/market.txt", "Wait...\n*goto nowhere\n")
	results := []project.FileDiagnostics{
		{Document: doc, Diagnostics: []diag.Diagnostic{
			diag.NewInfo(diag.StyEllipsis, source.SpanAt(4, 3), "Use an ellipsis"),
		}},
		{Document: doc, Diagnostics: []diag.Diagnostic{
			diag.NewWarning(diag.RefUnknownScene, source.SpanAt(14, 7), "Scene nowhere does not exist"),
		}},
		{Document: doc},
	}

	reports, failed := collectReports(results, diagFlags{})
	if failed || len(reports) != 2 {
		t.Fatalf("reports = %d, failed = %v", len(reports), failed)
	}
	if _, failed := collectReports(results, diagFlags{warningsAsErrors: true}); !failed {
		t.Fatalf("warnings-as-errors did not fail")
	}
	reports, _ = collectReports(results, diagFlags{noWarnings: true})
	if len(reports) != 0 {
		t.Fatalf("no-warnings kept %d reports", len(reports))
	}

	results[2].Diagnostics = []diag.Diagnostic{diag.NewError(diag.RefUndefinedLabel, source.SpanAt(20, 7), "Label nowhere is not defined")}
	if _, failed := collectReports(results, diagFlags{noWarnings: true}); !failed {
		t.Fatalf("errors did not fail the run")
	}
}

func loadTestGame(t *testing.T) *project.Workspace {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "startup.txt"), "*create gold 10\n*scene_list\n  startup\n  market\n*finish\n")
	writeFile(t, filepath.Join(root, "market.txt"), "*label shop\nYou have ${gold} gold.\n*goto shop\n")
	target, err := resolveGame(root)
	if err != nil {
		t.Fatalf("resolveGame: %v", err)
	}
	if len(target.scenes) != 2 {
		t.Fatalf("scenes = %v", target.scenes)
	}
	ws, err := project.Load(t.Context(), target.root, project.Options{Config: target.config})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return ws
}

func TestIndexDumpFormats(t *testing.T) {
	ws := loadTestGame(t)
	dump := indexDump{Schema: indexSchemaVersion, Root: ws.Root, SceneDir: ws.SceneDir, Index: ws.Index.Snapshot()}

	var packed bytes.Buffer
	if err := writeIndexDump(&packed, dump, "msgpack"); err != nil {
		t.Fatalf("msgpack: %v", err)
	}
	var fromMsgpack map[string]any
	if err := msgpack.NewDecoder(&packed).Decode(&fromMsgpack); err != nil {
		t.Fatalf("decode msgpack: %v", err)
	}

	path := filepath.Join(t.TempDir(), "index.json")
	if err := writeIndexFile(path, dump, "json"); err != nil {
		t.Fatalf("writeIndexFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	var fromJSON map[string]any
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}

	for name, got := range map[string]map[string]any{"msgpack": fromMsgpack, "json": fromJSON} {
		if fmt.Sprint(got["schema"]) != "1" || got["sceneDir"] != ws.SceneDir {
			t.Fatalf("%s dump header = %v", name, got)
		}
		idx, ok := got["index"].(map[string]any)
		if !ok {
			t.Fatalf("%s dump index = %T", name, got["index"])
		}
		if idx["startup"] != source.PathToURI(filepath.Join(ws.SceneDir, "startup.txt")) {
			t.Fatalf("%s startup = %v", name, idx["startup"])
		}
		docs, ok := idx["documents"].([]any)
		if !ok || len(docs) != 2 {
			t.Fatalf("%s documents = %v", name, idx["documents"])
		}
	}
}

func TestBuildTokenizeOutput(t *testing.T) {
	out := buildTokenizeOutput(expr.Tokenize("true and false", 0, false))
	if out.EvalType != "Boolean" || len(out.Tokens) != 3 || len(out.Errors) != 0 {
		t.Fatalf("output = %+v", out)
	}
	if out.Tokens[1].Type != "BooleanNamedOperator" || out.Tokens[1].Start != 5 || out.Tokens[1].End != 8 {
		t.Fatalf("operator token = %+v", out.Tokens[1])
	}

	out = buildTokenizeOutput(expr.Tokenize(`"a" & 2`, 0, false))
	if len(out.Errors) != 1 || out.Errors[0].Code != "EXP1011" || out.Errors[0].Severity != "error" {
		t.Fatalf("errors = %+v", out.Errors)
	}

	var buf bytes.Buffer
	writeTokensPretty(&buf, out)
	if !bytes.Contains(buf.Bytes(), []byte("type: String")) || !bytes.Contains(buf.Bytes(), []byte("error[EXP1011]")) {
		t.Fatalf("pretty output:\n%s", buf.String())
	}
}

func TestDiagnoseGameRecordsPhases(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "scenes", "startup.txt"), "*create gold 10\n*scene_list\n  startup\n  market\n*finish\n")
	writeFile(t, filepath.Join(root, "scenes", "market.txt"), "You have ${silver} silver...\n*finish\n")
	target, err := resolveGame(root)
	if err != nil {
		t.Fatalf("resolveGame: %v", err)
	}

	timer := observ.NewTimer()
	ws, results, err := diagnoseGame(t.Context(), target, diagFlags{noStyle: true}, nil, timer)
	if err != nil {
		t.Fatalf("diagnoseGame: %v", err)
	}
	if err := ws.RequireStartup(); err != nil {
		t.Fatalf("RequireStartup: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	reports, failed := collectReports(results, diagFlags{})
	if !failed || len(reports) != 1 || source.SceneName(reports[0].Document.URI) != "market" {
		t.Fatalf("reports = %+v, failed = %v", reports, failed)
	}
	for _, d := range reports[0].Diagnostics {
		if d.Code == diag.StyEllipsis {
			t.Fatalf("style diagnostics with --no-style: %+v", d)
		}
	}
	phases := timer.Report().Phases
	if len(phases) != 2 || phases[0].Name != "load" || phases[0].Note != "2 scenes" || phases[1].Name != "validate" {
		t.Fatalf("phases = %+v", phases)
	}
}

func TestApplyFixes(t *testing.T) {
	root := t.TempDir()
	market := filepath.Join(root, "market.txt")
	writeFile(t, filepath.Join(root, "startup.txt"), "*scene_list\n  startup\n  market\n*finish\n")
	writeFile(t, market, "Wait... no--never.\n*finish\n")
	target, err := resolveGame(root)
	if err != nil {
		t.Fatalf("resolveGame: %v", err)
	}
	_, results, err := diagnoseGame(t.Context(), target, diagFlags{}, nil, observ.NewTimer())
	if err != nil {
		t.Fatalf("diagnoseGame: %v", err)
	}

	var out bytes.Buffer
	n, err := applyFixes(&out, results, fix.ApplyOptions{Mode: fix.ApplyModeCode, Code: diag.StyEmDash}, true)
	if err != nil || n != 1 {
		t.Fatalf("dry run = %d, %v", n, err)
	}
	if !strings.Contains(out.String(), "market.txt:1: Replace with — [STY5002]") {
		t.Fatalf("dry run output = %q", out.String())
	}
	data, err := os.ReadFile(market)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Wait... no--never.\n*finish\n" {
		t.Fatalf("dry run wrote %q", data)
	}

	out.Reset()
	n, err = applyFixes(&out, results, fix.ApplyOptions{Mode: fix.ApplyModeAll}, false)
	if err != nil || n != 2 {
		t.Fatalf("apply = %d, %v (%s)", n, err, out.String())
	}
	data, err = os.ReadFile(market)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Wait… no—never.\n*finish\n" {
		t.Fatalf("market = %q", data)
	}
	if !strings.HasSuffix(out.String(), "Applied 2 fix(es).\n") {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	if n, err := applyFixes(&out, nil, fix.ApplyOptions{Mode: fix.ApplyModeAll}, false); err != nil || n != 0 {
		t.Fatalf("empty = %d, %v", n, err)
	}
	if out.String() != "No applicable fixes found.\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestGraphOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "startup.txt"), "*scene_list\n  startup\n  market\n*finish\n")
	writeFile(t, filepath.Join(root, "market.txt"), "*gosub_scene bank\n*finish\n")
	writeFile(t, filepath.Join(root, "attic.txt"), "Dusty.\n*finish\n")
	target, err := resolveGame(root)
	if err != nil {
		t.Fatalf("resolveGame: %v", err)
	}
	ws, err := project.Load(t.Context(), target.root, project.Options{Config: target.config})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := buildGraphOutput(ws.Index)
	if err != nil {
		t.Fatalf("buildGraphOutput: %v", err)
	}
	if out.Start != "startup" || len(out.Unreachable) != 1 || out.Unreachable[0] != "attic" {
		t.Fatalf("graph = %+v", out)
	}
	if len(out.Missing) != 1 || out.Missing[0] != "bank" {
		t.Fatalf("missing = %v", out.Missing)
	}

	var text bytes.Buffer
	writeGraphText(&text, out)
	for _, want := range []string{
		"market (depth 1)\n  -> bank [gosub_scene, line 1]\n",
		"attic (unreachable)\n",
		"bank (missing)\n",
		"unreachable from startup: attic\n",
	} {
		if !strings.Contains(text.String(), want) {
			t.Fatalf("text output %q missing %q", text.String(), want)
		}
	}

	var dot bytes.Buffer
	writeGraphDot(&dot, out)
	for _, want := range []string{`"startup" -> "market" [style=dashed];`, `"market" -> "bank" [label=gosub];`, `"bank" [color=red];`} {
		if !strings.Contains(dot.String(), want) {
			t.Fatalf("dot output %q missing %q", dot.String(), want)
		}
	}
}
