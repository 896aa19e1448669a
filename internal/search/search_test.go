package search

import (
	"strings"
	"testing"

	"csls/internal/index"
	"csls/internal/indexer"
	"csls/internal/source"
)

const (
	startupURI = "file:///game/startup.txt"
	scene1URI  = "file:///game/scene1.txt"
	scene2URI  = "file:///game/scene2.txt"
)

func buildIndex(t *testing.T) *index.Index {
	t.Helper()
	idx := index.New()
	docs := map[string]string{
		startupURI: strings.Join([]string{
			"*title Test",
			"*create score 0",
			"*achievement hero true 10 Hero",
			"*scene_list",
			"  startup",
			"  scene1",
			"  scene2",
		}, "\n"),
		scene1URI: strings.Join([]string{
			"Intro text.",
			"*label start",
			"*achieve hero",
			"${choice_achieved_hero}",
			"*goto start",
			"You have ${score} points.",
			"*goto_scene scene2 finale",
		}, "\n"),
		scene2URI: strings.Join([]string{
			"*temp score 1",
			"Local ${score}.",
			"*label finale",
			"*gosub helper",
			"*finish",
			"*label helper",
			"*temp bonus 2",
			"*return",
			"${bonus}",
		}, "\n"),
	}
	for _, uri := range []string{startupURI, scene1URI, scene2URI} {
		indexer.IndexDocument(source.NewDocument(uri, docs[uri]), idx)
	}
	return idx
}

func at(line, char int) source.Position {
	return source.Position{Line: line, Character: char}
}

func TestFindDefinitionGlobalFromScene(t *testing.T) {
	idx := buildIndex(t)
	def := FindDefinition(idx, scene1URI, at(5, 13))
	if def.Kind != SymbolGlobalVariable || def.Location.URI != startupURI {
		t.Fatalf("definition = %+v", def)
	}
	if def.Location.Range.Start != at(1, 8) {
		t.Fatalf("definition range = %v", def.Location.Range)
	}
}

func TestRenameGlobalEditsBothFiles(t *testing.T) {
	idx := buildIndex(t)
	refs := FindReferences(idx, scene1URI, at(5, 13), false)
	if len(refs) != 1 {
		t.Fatalf("references = %+v", refs)
	}
	edit := GenerateRenames(idx, scene1URI, at(5, 13), "points")
	if edit.Len() != len(refs)+1 {
		t.Fatalf("edits = %d, want %d", edit.Len(), len(refs)+1)
	}
	for _, uri := range []string{startupURI, scene1URI} {
		edits := edit.Changes[uri]
		if len(edits) != 1 || edits[0].NewText != "points" {
			t.Fatalf("%s edits = %+v", uri, edits)
		}
	}
	if _, ok := edit.Changes[scene2URI]; ok {
		t.Fatalf("shadowed local in scene2 was renamed")
	}
}

func TestRenameCoversRedeclaredLocal(t *testing.T) {
	const uri = "file:///game/scene3.txt"
	idx := buildIndex(t)
	indexer.IndexDocument(source.NewDocument(uri, "*temp x 1\n${x}\n*temp x 2\n${x}\n"), idx)
	edit := GenerateRenames(idx, uri, at(1, 2), "y")
	if edit == nil {
		t.Fatalf("no rename edit")
	}
	edits := edit.Changes[uri]
	if len(edits) != 4 {
		t.Fatalf("edits = %+v", edits)
	}
	for i, e := range edits {
		if e.Range.Start.Line != i || e.NewText != "y" {
			t.Fatalf("edit %d = %+v", i, e)
		}
	}
	if edits[2].Range.Start != at(2, 6) {
		t.Fatalf("redeclaration edit = %+v", edits[2])
	}
}

func TestLocalShadowsGlobal(t *testing.T) {
	idx := buildIndex(t)
	def := FindDefinition(idx, scene2URI, at(1, 9))
	if def.Kind != SymbolLocalVariable || def.Location.URI != scene2URI || def.Location.Range.Start != at(0, 6) {
		t.Fatalf("definition = %+v", def)
	}
	refs := FindReferences(idx, scene2URI, at(0, 7), true)
	if len(refs) != 2 || refs[1].Location.Range.Start != at(0, 6) {
		t.Fatalf("references = %+v", refs)
	}
}

func TestSubroutineLocalResolvesToCreation(t *testing.T) {
	idx := buildIndex(t)
	def := FindDefinition(idx, scene2URI, at(8, 3))
	if def.Kind != SymbolLocalVariable || def.Location.Range.Start != at(6, 6) {
		t.Fatalf("definition = %+v", def)
	}
}

func TestAchievementRename(t *testing.T) {
	idx := buildIndex(t)
	def := FindDefinition(idx, scene1URI, at(2, 10))
	if def.Kind != SymbolAchievement || def.Location.URI != startupURI {
		t.Fatalf("definition = %+v", def)
	}
	if shadow := FindDefinition(idx, scene1URI, at(3, 4)); shadow.Kind != SymbolAchievement || shadow.Name != "hero" {
		t.Fatalf("shadow variable definition = %+v", shadow)
	}

	refs := FindReferences(idx, scene1URI, at(2, 10), true)
	if len(refs) != 3 {
		t.Fatalf("references = %+v", refs)
	}
	edit := GenerateRenames(idx, scene1URI, at(2, 10), "champion")
	if edit.Len() != len(refs) {
		t.Fatalf("edits = %d, want %d", edit.Len(), len(refs))
	}
	scene := edit.Changes[scene1URI]
	if len(scene) != 2 {
		t.Fatalf("scene1 edits = %+v", scene)
	}
	if scene[0].NewText != "champion" || scene[0].Range.Start.Line != 2 {
		t.Fatalf("achieve edit = %+v", scene[0])
	}
	if scene[1].NewText != "choice_achieved_champion" || scene[1].Range.Start.Line != 3 {
		t.Fatalf("shadow variable edit = %+v", scene[1])
	}
	if got := edit.Changes[startupURI]; len(got) != 1 || got[0].NewText != "champion" {
		t.Fatalf("startup edits = %+v", got)
	}
}

func TestLabelDefinitionAndReferences(t *testing.T) {
	idx := buildIndex(t)
	def := FindDefinition(idx, scene1URI, at(4, 7))
	if def.Kind != SymbolLabel || def.Location.Range.Start != at(1, 7) {
		t.Fatalf("definition = %+v", def)
	}
	refs := FindReferences(idx, scene1URI, at(1, 8), true)
	if len(refs) != 2 || refs[0].Location.Range.Start != at(4, 6) {
		t.Fatalf("references = %+v", refs)
	}

	other := FindDefinition(idx, scene1URI, at(6, 20))
	if other.Kind != SymbolLabel || other.Location.URI != scene2URI || other.Location.Range.Start != at(2, 7) {
		t.Fatalf("cross-scene definition = %+v", other)
	}
	refs = FindReferences(idx, scene2URI, at(2, 8), false)
	if len(refs) != 1 || refs[0].Location.URI != scene1URI {
		t.Fatalf("cross-scene references = %+v", refs)
	}
}

func TestNoSymbolIsEmptyResult(t *testing.T) {
	idx := buildIndex(t)
	if def := FindDefinition(idx, scene1URI, at(0, 2)); def.Found() {
		t.Fatalf("definition = %+v", def)
	}
	if refs := FindReferences(idx, scene1URI, at(0, 2), true); refs != nil {
		t.Fatalf("references = %+v", refs)
	}
	if edit := GenerateRenames(idx, scene1URI, at(0, 2), "x"); edit != nil {
		t.Fatalf("edit = %+v", edit)
	}
	if def := FindDefinition(idx, "file:///game/missing.txt", at(0, 0)); def.Found() {
		t.Fatalf("definition in unknown document = %+v", def)
	}
}
