package lsp

import (
	"strings"

	"csls/internal/search"
)

func (s *Server) handleDefinition(msg *rpcMessage) error {
	var params textDocumentPositionParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	def := search.FindDefinition(s.currentIndex(), canonicalURI(params.TextDocument.URI), toPosition(params.Position))
	if !def.Found() {
		return s.sendResponse(msg.ID, []location{})
	}
	return s.sendResponse(msg.ID, []location{fromLocation(def.Location)})
}

func (s *Server) handleReferences(msg *rpcMessage) error {
	var params referenceParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	refs := search.FindReferences(s.currentIndex(), canonicalURI(params.TextDocument.URI),
		toPosition(params.Position), params.Context.IncludeDeclaration)
	out := make([]location, 0, len(refs))
	for _, r := range refs {
		out = append(out, fromLocation(r.Location))
	}
	return s.sendResponse(msg.ID, out)
}

func (s *Server) handleRename(msg *rpcMessage) error {
	var params renameParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	name := strings.TrimSpace(params.NewName)
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return s.sendError(msg.ID, codeInvalidParams, "invalid name: "+params.NewName)
	}
	edit := search.GenerateRenames(s.currentIndex(), canonicalURI(params.TextDocument.URI), toPosition(params.Position), name)
	if edit == nil {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, toWorkspaceEdit(edit))
}

func toWorkspaceEdit(edit *search.WorkspaceEdit) workspaceEdit {
	out := workspaceEdit{Changes: make(map[string][]textEdit, len(edit.Changes))}
	for uri, edits := range edit.Changes {
		list := make([]textEdit, 0, len(edits))
		for _, e := range edits {
			list = append(list, textEdit{Range: fromRange(e.Range), NewText: e.NewText})
		}
		out.Changes[uri] = list
	}
	return out
}
