package lsp

import (
	"sort"
	"sync/atomic"
	"time"

	"csls/internal/diag"
	"csls/internal/index"
	"csls/internal/source"
	"csls/internal/validate"
)

func (s *Server) scheduleDiagnostics() {
	s.mu.Lock()
	seq := atomic.AddUint64(&s.analysisSeq, 1)
	atomic.StoreUint64(&s.latestSeq, seq)
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(seq)
	})
	s.mu.Unlock()
}

// flushDiagnostics publishes immediately instead of waiting for the
// debounce timer.
func (s *Server) flushDiagnostics() {
	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	seq := atomic.AddUint64(&s.analysisSeq, 1)
	atomic.StoreUint64(&s.latestSeq, seq)
	s.mu.Unlock()
	s.runDiagnostics(seq)
}

type diagnosticsTarget struct {
	doc     *source.Document
	version *int
}

// runDiagnostics regenerates and publishes diagnostics for every indexed
// document. A newer request abandons an older run between documents.
func (s *Server) runDiagnostics(seq uint64) {
	if !s.isLatestSeq(seq) {
		return
	}
	s.mu.Lock()
	idx := s.idx
	opts := s.validate
	targets := make(map[string]diagnosticsTarget, len(s.diskDocs)+len(s.openDocs))
	for uri, doc := range s.diskDocs {
		targets[uri] = diagnosticsTarget{doc: doc}
	}
	for uri, doc := range s.openDocs {
		v := s.versions[uri]
		targets[uri] = diagnosticsTarget{doc: doc, version: &v}
	}
	s.mu.Unlock()

	uris := make([]string, 0, len(targets))
	for uri := range targets {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	start := time.Now()
	for _, uri := range uris {
		if !s.isLatestSeq(seq) {
			s.tracef("discard diagnostics: seq=%d", seq)
			return
		}
		t := targets[uri]
		list, ok := s.diagnose(uri, t.doc, idx, opts)
		if !ok {
			s.tracef("skip superseded diagnostics: uri=%s", uri)
			continue
		}
		if err := s.sendPublish(uri, t.version, list); err != nil {
			s.logf("failed to publish diagnostics: %v", err)
			continue
		}
		s.tracef("publishDiagnostics: uri=%s diags=%d", uri, len(list))
	}

	s.mu.Lock()
	prev := s.published
	s.published = make(map[string]struct{}, len(uris))
	for _, uri := range uris {
		s.published[uri] = struct{}{}
	}
	s.mu.Unlock()
	for uri := range prev {
		if _, ok := targets[uri]; ok {
			continue
		}
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
	s.tracef("diagnostics: seq=%d docs=%d in %s", seq, len(uris), time.Since(start).Round(time.Millisecond))
}

// diagnose validates doc against idx. It reports false when doc or idx was
// replaced before or during validation, since the index then no longer
// matches the text. The edit that replaced them schedules a newer run.
func (s *Server) diagnose(uri string, doc *source.Document, idx *index.Index, opts validate.Options) ([]lspDiagnostic, bool) {
	if !s.holds(uri, doc, idx) {
		return nil, false
	}
	diags := validate.Generate(doc, idx, opts)
	if !s.holds(uri, doc, idx) {
		return nil, false
	}
	return toLSPDiagnostics(doc, diags), true
}

// holds reports whether doc is still the current text of uri and idx the
// current index.
func (s *Server) holds(uri string, doc *source.Document, idx *index.Index) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx != idx {
		return false
	}
	if open, ok := s.openDocs[uri]; ok {
		return open == doc
	}
	return s.diskDocs[uri] == doc
}

func toLSPDiagnostics(doc *source.Document, diags []diag.Diagnostic) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, lspDiagnostic{
			Range:    fromRange(doc.RangeOf(d.Span)),
			Severity: d.Severity.LSP(),
			Code:     d.Code.ID(),
			Source:   "csls",
			Message:  d.Message,
		})
	}
	return out
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	if len(s.published) == 0 {
		s.mu.Unlock()
		return
	}
	prev := s.published
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	uris := make([]string, 0, len(prev))
	for uri := range prev {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}
