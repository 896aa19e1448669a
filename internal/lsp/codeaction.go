package lsp

import (
	"strings"

	"csls/internal/diag"
	"csls/internal/fix"
	"csls/internal/source"
	"csls/internal/validate"
)

const (
	kindQuickFix     = "quickfix"
	kindSourceFixAll = "source.fixAll.csls"
)

// handleCodeAction offers one quick fix per fixable diagnostic touching the
// requested range, plus a source action applying every fix of the document.
func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	doc, idx, ok := s.document(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []codeAction{})
	}
	s.mu.Lock()
	opts := s.validate
	s.mu.Unlock()

	diags := validate.Generate(doc, idx, opts)
	want := doc.SpanOf(toRange(params.Range))
	actions := make([]codeAction, 0)
	if kindAllowed(params.Context.Only, kindQuickFix) {
		for _, d := range diags {
			if len(d.Fixes) == 0 || !touches(d.Span, want) {
				continue
			}
			lspDiag := toLSPDiagnostics(doc, []diag.Diagnostic{d})
			for i, f := range d.Fixes {
				actions = append(actions, codeAction{
					Title:       f.Title,
					Kind:        kindQuickFix,
					Diagnostics: lspDiag,
					IsPreferred: i == 0,
					Edit: &workspaceEdit{Changes: map[string][]textEdit{
						doc.URI: {{Range: fromRange(doc.RangeOf(d.Span)), NewText: f.NewText}},
					}},
				})
			}
		}
	}
	if kindAllowed(params.Context.Only, kindSourceFixAll) {
		if res, err := fix.Apply(doc, diags, fix.ApplyOptions{Mode: fix.ApplyModeAll}); err == nil {
			whole := doc.RangeOf(source.Span{Start: 0, End: len(doc.Text)})
			actions = append(actions, codeAction{
				Title: "Apply all csls fixes",
				Kind:  kindSourceFixAll,
				Edit: &workspaceEdit{Changes: map[string][]textEdit{
					doc.URI: {{Range: fromRange(whole), NewText: res.Text}},
				}},
			})
		}
	}
	s.tracef("codeAction: uri=%s actions=%d", doc.URI, len(actions))
	return s.sendResponse(msg.ID, actions)
}

func touches(a, b source.Span) bool {
	return a.Start <= b.End && b.Start <= a.End
}

// kindAllowed applies the client's "only" filter, where a kind matches any
// of its dot-separated prefixes.
func kindAllowed(only []string, kind string) bool {
	if len(only) == 0 {
		return true
	}
	for _, o := range only {
		if o == kind || strings.HasPrefix(kind, o+".") {
			return true
		}
	}
	return false
}
