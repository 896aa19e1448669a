package diagfmt

import (
	"fmt"
	"strings"

	"csls/internal/diag"
	"csls/internal/source"
)

type fixPreview struct {
	before []string
	after  []string
}

// buildFixPreview renders the lines touched by span before and after the
// fix is applied.
func buildFixPreview(doc *source.Document, span source.Span, fix diag.Fix) (fixPreview, error) {
	if doc == nil {
		return fixPreview{}, fmt.Errorf("nil document")
	}
	if span.Start < 0 || span.End < span.Start || span.End > len(doc.Text) {
		return fixPreview{}, fmt.Errorf("fix span %s out of range", span)
	}
	blockStart := doc.LineSpan(doc.LineOf(span.Start)).Start
	blockEnd := max(doc.LineSpan(doc.LineOf(span.End)).End, blockStart)

	original := doc.Text[blockStart:blockEnd]
	relStart := span.Start - blockStart
	relEnd := span.End - blockStart

	after := original[:relStart] + fix.NewText + original[relEnd:]
	return fixPreview{
		before: splitPreviewLines(original),
		after:  splitPreviewLines(after),
	}, nil
}

func splitPreviewLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
