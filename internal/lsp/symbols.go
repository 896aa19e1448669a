package lsp

import "csls/internal/structure"

// LSP SymbolKind values.
const (
	symbolKindEnum       = 10
	symbolKindFunction   = 12
	symbolKindVariable   = 13
	symbolKindConstant   = 14
	symbolKindEnumMember = 22
)

func symbolKind(k structure.Kind) int {
	switch k {
	case structure.KindLabel:
		return symbolKindFunction
	case structure.KindChoice:
		return symbolKindEnum
	case structure.KindOption:
		return symbolKindEnumMember
	case structure.KindGlobalVariable:
		return symbolKindConstant
	}
	return symbolKindVariable
}

func (s *Server) handleDocumentSymbol(msg *rpcMessage) error {
	var params documentSymbolParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	doc, idx, ok := s.document(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []symbolInformation{})
	}
	outline := structure.Outline(doc, idx)
	out := make([]symbolInformation, 0, len(outline))
	container := ""
	for _, sym := range outline {
		info := symbolInformation{
			Name:     sym.Name,
			Kind:     symbolKind(sym.Kind),
			Location: fromLocation(sym.Location),
		}
		switch sym.Kind {
		case structure.KindChoice:
			container = sym.Name
		case structure.KindOption:
			info.ContainerName = container
		}
		out = append(out, info)
	}
	return s.sendResponse(msg.ID, out)
}
