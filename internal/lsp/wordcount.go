package lsp

import (
	"csls/internal/language"
)

// handleWordCount answers csls/wordCount with the number of words in the
// document or in the requested range, or null for unknown documents.
func (s *Server) handleWordCount(msg *rpcMessage) error {
	var params wordCountParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	doc, idx, ok := s.document(params.URI)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	if params.Range != nil {
		return s.sendResponse(msg.ID, language.CountWords(doc.TextIn(toRange(*params.Range))))
	}
	if n, ok := idx.WordCount(doc.URI); ok {
		return s.sendResponse(msg.ID, n)
	}
	return s.sendResponse(msg.ID, language.CountWords(doc.Text))
}
