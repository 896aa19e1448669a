// Package fix applies the suggested replacements carried by diagnostics to
// scene files.
package fix

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"csls/internal/diag"
	"csls/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines which fixes are selected.
type ApplyMode uint8

const (
	// ApplyModeOnce applies the first fix of the document.
	ApplyModeOnce ApplyMode = iota
	ApplyModeAll
	// ApplyModeCode applies every fix of diagnostics with Code.
	ApplyModeCode
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode ApplyMode
	Code diag.Code
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	Title   string
	Code    diag.Code
	Message string
	Span    source.Span
}

// SkippedFix records a fix that was left out and why.
type SkippedFix struct {
	Title  string
	Code   diag.Code
	Span   source.Span
	Reason string
}

// Result is the outcome of fixing one document.
type Result struct {
	URI     string
	Text    string
	Applied []AppliedFix
	Skipped []SkippedFix
}

// Changed reports whether any fix was applied.
func (r *Result) Changed() bool {
	return len(r.Applied) > 0
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

// Apply selects fixes from the diagnostics of doc according to opts and
// returns the rewritten text. Overlapping fixes keep the earliest one.
func Apply(doc *source.Document, diagnostics []diag.Diagnostic, opts ApplyOptions) (*Result, error) {
	result := &Result{URI: doc.URI, Text: doc.Text}
	candidates := gatherCandidates(diagnostics)
	selected := selectCandidates(candidates, opts)
	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	var accepted []candidate
	for _, cand := range selected {
		sp := cand.diag.Span
		switch {
		case sp.Start < 0 || sp.End < sp.Start || sp.End > len(doc.Text):
			result.Skipped = append(result.Skipped, skipped(cand, "span out of range"))
		case conflictsWithAny(accepted, sp):
			result.Skipped = append(result.Skipped, skipped(cand, "overlaps an earlier fix"))
		default:
			accepted = append(accepted, cand)
		}
	}
	if len(accepted) == 0 {
		return result, ErrNoFixes
	}

	// Apply back to front so earlier offsets stay valid.
	text := doc.Text
	for i := len(accepted) - 1; i >= 0; i-- {
		sp := accepted[i].diag.Span
		text = text[:sp.Start] + accepted[i].fix.NewText + text[sp.End:]
	}
	result.Text = text
	for _, cand := range accepted {
		result.Applied = append(result.Applied, AppliedFix{
			Title:   cand.fix.Title,
			Code:    cand.diag.Code,
			Message: cand.diag.Message,
			Span:    cand.diag.Span,
		})
	}
	return result, nil
}

// gatherCandidates lists the first fix of every diagnostic, ordered by
// span.
func gatherCandidates(diagnostics []diag.Diagnostic) []candidate {
	var cands []candidate
	for _, d := range diagnostics {
		if len(d.Fixes) == 0 {
			continue
		}
		cands = append(cands, candidate{diag: d, fix: d.Fixes[0], order: len(cands)})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		di, dj := cands[i].diag, cands[j].diag
		if di.Span.Start != dj.Span.Start {
			return di.Span.Start < dj.Span.Start
		}
		if di.Span.End != dj.Span.End {
			return di.Span.End < dj.Span.End
		}
		return cands[i].order < cands[j].order
	})
	return cands
}

func selectCandidates(candidates []candidate, opts ApplyOptions) []candidate {
	switch opts.Mode {
	case ApplyModeAll:
		return candidates
	case ApplyModeCode:
		var out []candidate
		for _, cand := range candidates {
			if cand.diag.Code == opts.Code {
				out = append(out, cand)
			}
		}
		return out
	case ApplyModeOnce:
		if len(candidates) > 0 {
			return candidates[:1]
		}
	}
	return nil
}

func skipped(cand candidate, reason string) SkippedFix {
	return SkippedFix{Title: cand.fix.Title, Code: cand.diag.Code, Span: cand.diag.Span, Reason: reason}
}

func conflictsWithAny(accepted []candidate, sp source.Span) bool {
	for _, prev := range accepted {
		if spansConflict(prev.diag.Span, sp) {
			return true
		}
	}
	return false
}

// spansConflict reports whether two half-open spans overlap. Two insertions
// never conflict; an insertion conflicts with a span strictly containing
// its position.
func spansConflict(a, b source.Span) bool {
	if a.Start == a.End && b.Start == b.End {
		return false
	}
	if a.Start == a.End {
		return b.Start <= a.Start && a.Start < b.End
	}
	if b.Start == b.End {
		return a.Start <= b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// Write stores a changed result back to its file, keeping the file mode.
func Write(r *Result) error {
	if !r.Changed() {
		return nil
	}
	path := source.URIToPath(r.URI)
	if path == "" {
		return fmt.Errorf("fix: %s is not a file", r.URI)
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, []byte(r.Text), mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
