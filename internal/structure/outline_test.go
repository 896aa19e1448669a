package structure

import (
	"testing"

	"csls/internal/index"
	"csls/internal/indexer"
	"csls/internal/language"
	"csls/internal/source"
)

const outlineScene = `*temp gold 10
*label market
Welcome.
*choice
  #Buy a sword
    *set gold - 5
    *goto market
  *selectable_if (gold > 3) #Buy a shield
    *finish
  *if (gold > 100) #Buy the castle
    *finish

*label leave
*fake_choice
  #Wave
  #Nod
Bye.
`

func indexed(t *testing.T, uri, text string) (*source.Document, *index.Index) {
	t.Helper()
	idx := index.New()
	doc := source.NewDocument(uri, text)
	indexer.IndexDocument(doc, idx)
	return doc, idx
}

func TestOutline(t *testing.T) {
	doc, idx := indexed(t, "file:///game/shop.txt", outlineScene)
	got := Outline(doc, idx)

	want := []struct {
		name string
		kind Kind
		line int
	}{
		{"gold", KindLocalVariable, 0},
		{"market", KindLabel, 1},
		{"*choice: Buy a sword | Buy a shield | Buy the castle", KindChoice, 3},
		{"Buy a sword", KindOption, 4},
		{"Buy a shield", KindOption, 7},
		{"Buy the castle", KindOption, 9},
		{"leave", KindLabel, 12},
		{"*fake_choice: Wave | Nod", KindChoice, 13},
		{"Wave", KindOption, 14},
		{"Nod", KindOption, 15},
	}
	if len(got) != len(want) {
		t.Fatalf("outline has %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		g := got[i]
		if g.Name != w.name || g.Kind != w.kind || g.Location.Range.Start.Line != w.line {
			t.Fatalf("entry %d = {%q %v line %d}, want {%q %v line %d}",
				i, g.Name, g.Kind, g.Location.Range.Start.Line, w.name, w.kind, w.line)
		}
	}
	if got[3].Location.Range.Start.Character != 3 {
		t.Fatalf("option starts at %v", got[3].Location.Range.Start)
	}
}

func TestOutlineStartupListsGlobals(t *testing.T) {
	doc, idx := indexed(t, "file:///game/startup.txt", "*create strength 1\n*create wits 2\n")
	got := Outline(doc, idx)
	if len(got) != 2 {
		t.Fatalf("outline = %+v", got)
	}
	for i, name := range []string{"strength", "wits"} {
		if got[i].Name != name || got[i].Kind != KindGlobalVariable {
			t.Fatalf("entry %d = %+v", i, got[i])
		}
	}
}

func TestChoiceSummaryIsShortened(t *testing.T) {
	b := ChoiceBlock{Name: "choice"}
	for range 10 {
		b.Options = append(b.Options, language.Word{Text: "Another rather long option"})
	}
	if s := b.Summary(); len([]rune(s)) > summaryWidth {
		t.Fatalf("summary too long: %q", s)
	}
}

func TestFolds(t *testing.T) {
	doc, idx := indexed(t, "file:///game/shop.txt", outlineScene)
	got := Folds(doc, idx)
	want := []Fold{
		{StartLine: 1, EndLine: 10},
		{StartLine: 3, EndLine: 10},
		{StartLine: 12, EndLine: 16},
		{StartLine: 13, EndLine: 15},
	}
	if len(got) != len(want) {
		t.Fatalf("folds = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fold %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
