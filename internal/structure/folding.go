package structure

import (
	"sort"

	"csls/internal/index"
	"csls/internal/source"
)

// Fold is a foldable line range.
type Fold struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// Folds returns the label blocks and choice blocks of doc that span more
// than one line.
func Folds(doc *source.Document, idx *index.Index) []Fold {
	var out []Fold
	for _, l := range idx.Labels(doc.URI).Labels() {
		if l.Scope == nil {
			continue
		}
		end := lastContentLine(doc, l.Scope.End.Line)
		if end > l.Scope.Start.Line {
			out = append(out, Fold{StartLine: l.Scope.Start.Line, EndLine: end})
		}
	}
	for _, b := range Choices(doc) {
		if b.EndLine > b.StartLine {
			out = append(out, Fold{StartLine: b.StartLine, EndLine: b.EndLine})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartLine != out[j].StartLine {
			return out[i].StartLine < out[j].StartLine
		}
		return out[i].EndLine > out[j].EndLine
	})
	return out
}

// lastContentLine backs up over trailing blank lines.
func lastContentLine(doc *source.Document, line int) int {
	for line > 0 && line < doc.LineCount() && doc.LineText(line) == "" {
		line--
	}
	return line
}
