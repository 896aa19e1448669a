package lsp

import (
	"fmt"
	"strings"

	"csls/internal/index"
	"csls/internal/language"
	"csls/internal/search"
	"csls/internal/source"
)

func (s *Server) handleHover(msg *rpcMessage) error {
	var params textDocumentPositionParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	result := s.buildHover(canonicalURI(params.TextDocument.URI), toPosition(params.Position))
	return s.sendResponse(msg.ID, result)
}

func (s *Server) buildHover(uri string, pos source.Position) *hover {
	doc, idx, ok := s.document(uri)
	if !ok {
		return nil
	}
	if h := commandHover(doc, pos); h != nil {
		return h
	}
	def := search.FindDefinition(idx, uri, pos)
	if !def.Found() {
		return nil
	}
	lines := []string{fmt.Sprintf("**%s** `%s`", def.Kind, def.Name)}
	if defDoc, _, ok := s.document(def.Location.URI); ok {
		line := strings.TrimSpace(defDoc.LineText(def.Location.Range.Start.Line))
		if line != "" {
			lines = append(lines, "```choicescript\n"+line+"\n```")
		}
	}
	lines = append(lines, fmt.Sprintf("Defined in `%s`, line %d",
		source.FileName(def.Location.URI), def.Location.Range.Start.Line+1))
	return &hover{
		Contents: markupContent{
			Kind:  "markdown",
			Value: strings.Join(lines, "\n\n"),
		},
	}
}

// commandHover describes the *command under pos.
func commandHover(doc *source.Document, pos source.Position) *hover {
	sp := doc.LineSpan(pos.Line)
	cmd, ok := language.ParseCommandLine(doc.LineText(pos.Line), sp.Start)
	if !ok {
		return nil
	}
	off := doc.OffsetAt(pos)
	if off < cmd.Star || off > cmd.NameSpan.End {
		return nil
	}
	var detail string
	switch {
	case !language.IsCommand(cmd.Name):
		return nil
	case language.IsStartupOnly(cmd.Name):
		detail = "Only allowed in `" + index.StartupFileName + "`."
	case language.IsStandalone(cmd.Name):
		detail = "Must be on a line by itself."
	}
	value := "`*" + cmd.Name + "` command"
	if detail != "" {
		value += "\n\n" + detail
	}
	rng := fromRange(doc.RangeOf(source.Span{Start: cmd.Star, End: cmd.NameSpan.End}))
	return &hover{
		Contents: markupContent{Kind: "markdown", Value: value},
		Range:    &rng,
	}
}
