package diag

import (
	"testing"

	"csls/internal/source"
)

func TestBagLimitSortDedup(t *testing.T) {
	b := NewBag(3)
	b.Add(NewWarning(RefUnknownScene, source.Span{Start: 10, End: 12}, "b"))
	b.Add(NewError(RefUndefinedLabel, source.Span{Start: 1, End: 4}, "a"))
	b.Add(NewError(RefUndefinedLabel, source.Span{Start: 1, End: 4}, "a"))
	if b.Add(NewInfo(StyEllipsis, source.Span{}, "dropped")) {
		t.Fatal("expected bag to be full")
	}
	b.Sort()
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", b.Len())
	}
	if b.Items()[0].Span.Start != 1 {
		t.Fatalf("expected sorted by start, got %+v", b.Items())
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatal("expected both errors and warnings")
	}
}

func TestCodeIDs(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{ExpUnterminatedString, "EXP1001"},
		{CmdUnknown, "CMD2001"},
		{RefLabelNotInScene, "REF3006"},
		{LayMixedIndentation, "LAY4001"},
		{StyEmDash, "STY5002"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Fatalf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
	if RefLabelNotInScene.Title() != "Label not found in scene" {
		t.Fatalf("unexpected title %q", RefLabelNotInScene.Title())
	}
}

func TestSeverityLSP(t *testing.T) {
	if SevError.LSP() != 1 || SevWarning.LSP() != 2 || SevInfo.LSP() != 3 {
		t.Fatal("unexpected LSP severity mapping")
	}
}
