package source

import (
	"testing"
)

func TestPositionAtUTF16(t *testing.T) {
	doc := NewDocument("file:///game/scene.txt", "first\nsé🙂x\nlast")
	off := len("first\nsé🙂")
	got := doc.PositionAt(off)
	want := Position{Line: 1, Character: 4}
	if got != want {
		t.Fatalf("PositionAt(%d) = %+v, want %+v", off, got, want)
	}
	if back := doc.OffsetAt(want); back != off {
		t.Fatalf("OffsetAt(%+v) = %d, want %d", want, back, off)
	}
}

func TestOffsetAtClampsToLineEnd(t *testing.T) {
	doc := NewDocument("file:///game/scene.txt", "abc\ndef")
	if got := doc.OffsetAt(Position{Line: 0, Character: 99}); got != 3 {
		t.Fatalf("expected clamp to 3, got %d", got)
	}
	if got := doc.OffsetAt(Position{Line: 9, Character: 0}); got != len(doc.Text) {
		t.Fatalf("expected clamp to end, got %d", got)
	}
}

func TestLineTextStripsCR(t *testing.T) {
	doc := NewDocument("file:///game/scene.txt", "one\r\ntwo\r\n")
	if got := doc.LineText(0); got != "one" {
		t.Fatalf("line 0 = %q", got)
	}
	if got := doc.LineText(1); got != "two" {
		t.Fatalf("line 1 = %q", got)
	}
	if doc.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", doc.LineCount())
	}
	if got := doc.LineOf(len("one\r\nt")); got != 1 {
		t.Fatalf("LineOf = %d, want 1", got)
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: Position{Line: 1, Character: 2}, End: Position{Line: 1, Character: 6}}
	tests := []struct {
		pos  Position
		want bool
	}{
		{Position{Line: 1, Character: 2}, true},
		{Position{Line: 1, Character: 6}, true},
		{Position{Line: 1, Character: 7}, false},
		{Position{Line: 0, Character: 4}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.pos); got != tt.want {
			t.Fatalf("Contains(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestSceneURIs(t *testing.T) {
	uri := "file:///games/my%20game/startup.txt"
	if got := SceneName(uri); got != "startup" {
		t.Fatalf("SceneName = %q", got)
	}
	if got := SiblingURI(uri, "chapter_1"); got != "file:///games/my%20game/chapter_1.txt" {
		t.Fatalf("SiblingURI = %q", got)
	}
	if got := FileName(uri); got != "startup.txt" {
		t.Fatalf("FileName = %q", got)
	}
}

func TestSpanHelpers(t *testing.T) {
	sp := SpanAt(4, 3)
	if sp.Len() != 3 || sp.End != 7 {
		t.Fatalf("unexpected span %v", sp)
	}
	if !sp.Contains(7) || sp.Contains(8) {
		t.Fatalf("unexpected containment for %v", sp)
	}
	if got := sp.Cover(Span{Start: 1, End: 5}); got != (Span{Start: 1, End: 7}) {
		t.Fatalf("Cover = %v", got)
	}
	if got := sp.ShiftRight(10); got != (Span{Start: 14, End: 17}) {
		t.Fatalf("ShiftRight = %v", got)
	}
}
