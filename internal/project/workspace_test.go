package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"csls/internal/diag"
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

func gameTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	scenes := filepath.Join(root, "mygame", "scenes")
	writeFile(t, filepath.Join(root, ".gitignore"), "drafts/\n")
	writeFile(t, filepath.Join(root, "drafts", "startup.txt"), "*create old 1\n")
	writeFile(t, filepath.Join(scenes, "startup.txt"), "*create gold 10\n*scene_list\n  startup\n  market\n")
	writeFile(t, filepath.Join(scenes, "market.txt"), "You have ${gold} gold and ${silver} silver.\n*finish\n")
	writeFile(t, filepath.Join(scenes, "notes.md"), "not a scene\n")
	return root
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) count(stage Stage, status Status) int {
	n := 0
	for _, e := range s.events {
		if e.Stage == stage && e.Status == status {
			n++
		}
	}
	return n
}

func TestLoadFindsScenesAndIndexes(t *testing.T) {
	root := gameTree(t)
	sink := &recordingSink{}
	ws, err := Load(context.Background(), root, Options{Config: DefaultConfig(), Jobs: 2, Progress: sink})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantDir := filepath.Join(root, "mygame", "scenes")
	if ws.SceneDir != wantDir {
		t.Fatalf("scene dir = %s, want %s", ws.SceneDir, wantDir)
	}
	if len(ws.Documents) != 2 {
		t.Fatalf("documents = %d", len(ws.Documents))
	}
	if err := ws.RequireStartup(); err != nil {
		t.Fatalf("RequireStartup: %v", err)
	}
	if !ws.Index.ProjectIsIndexed() {
		t.Fatalf("project should be marked indexed")
	}
	if !ws.Index.GlobalVariables().Has("GOLD") {
		t.Fatalf("globals = %v", ws.Index.GlobalVariables().Names())
	}
	marketURI := source.PathToURI(filepath.Join(wantDir, "market.txt"))
	if _, ok := ws.Document(marketURI); !ok {
		t.Fatalf("market not loaded")
	}
	if got := sink.count(StageIndex, StatusWorking); got != 2 {
		t.Fatalf("index events = %d", got)
	}
	last := sink.events[len(sink.events)-1]
	if last.File != "" || last.Status != StatusDone || strings.Join(last.SceneList, ",") != "startup,market" {
		t.Fatalf("final load event = %+v", last)
	}
}

func TestDiagnoseReportsUndefinedVariable(t *testing.T) {
	root := gameTree(t)
	ws, err := Load(context.Background(), root, Options{Config: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sink := &recordingSink{}
	results, err := ws.Diagnose(context.Background(), ws.Config.ValidateOptions(), 0, sink)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	for _, e := range sink.events {
		if filepath.Base(e.File) == "market.txt" && e.Stage == StageValidate && e.Status != StatusWorking {
			if e.Status != StatusError || e.Errors == 0 {
				t.Fatalf("market validate event = %+v", e)
			}
		}
	}
	found := false
	for _, r := range results {
		for _, d := range r.Diagnostics {
			if d.Code == diag.RefUndefinedVariable {
				if r.Document.SceneName() != "market" {
					t.Fatalf("undefined variable reported in %s", r.Document.URI)
				}
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected an undefined-variable diagnostic for silver")
	}
}

func TestLoadWithoutStartup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "chapter.txt"), "Hello.\n")
	ws, err := Load(context.Background(), root, Options{Config: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ws.Documents) != 1 || ws.SceneDir != root {
		t.Fatalf("workspace = %+v", ws)
	}
	if err := ws.RequireStartup(); !errors.Is(err, ErrNoStartup) {
		t.Fatalf("RequireStartup = %v", err)
	}
}

func TestLoadHonoursConfiguredScenesAndExclude(t *testing.T) {
	root := gameTree(t)
	cfg := DefaultConfig()
	cfg.Project.Scenes = filepath.Join("mygame", "scenes")
	cfg.Project.Exclude = []string{"mygame/scenes/market.txt"}
	ws, err := Load(context.Background(), root, Options{Config: cfg})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ws.Documents) != 1 || ws.Documents[0].SceneName() != "startup" {
		t.Fatalf("documents = %d", len(ws.Documents))
	}

	cfg.Project.Scenes = "missing"
	if _, err := Load(context.Background(), root, Options{Config: cfg}); err == nil {
		t.Fatalf("expected error for missing scene directory")
	}
}
