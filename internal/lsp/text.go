package lsp

import "csls/internal/source"

// applyChanges applies incremental or full content changes in order.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		doc := source.NewDocument("", text)
		start := doc.OffsetAt(toPosition(change.Range.Start))
		end := doc.OffsetAt(toPosition(change.Range.End))
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

func toPosition(p position) source.Position {
	return source.Position{Line: p.Line, Character: p.Character}
}

func fromPosition(p source.Position) position {
	return position{Line: p.Line, Character: p.Character}
}

func fromRange(r source.Range) lspRange {
	return lspRange{Start: fromPosition(r.Start), End: fromPosition(r.End)}
}

func toRange(r lspRange) source.Range {
	return source.Range{Start: toPosition(r.Start), End: toPosition(r.End)}
}

func fromLocation(l source.Location) location {
	return location{URI: l.URI, Range: fromRange(l.Range)}
}
