package lsp

import "csls/internal/structure"

func (s *Server) handleFoldingRange(msg *rpcMessage) error {
	var params foldingRangeParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	doc, idx, ok := s.document(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []foldingRange{})
	}
	folds := structure.Folds(doc, idx)
	out := make([]foldingRange, 0, len(folds))
	for _, f := range folds {
		out = append(out, foldingRange{StartLine: f.StartLine, EndLine: f.EndLine, Kind: "region"})
	}
	return s.sendResponse(msg.ID, out)
}
