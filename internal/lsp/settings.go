package lsp

import "encoding/json"

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	if s.applySettings(params.Settings) {
		s.scheduleDiagnostics()
	}
	return nil
}

// applySettings reports whether diagnostics need to be regenerated.
func (s *Server) applySettings(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings.CSLS.LSP.Trace != nil {
		s.traceLSP = *settings.CSLS.LSP.Trace
	}
	if settings.CSLS.StyleGuide != nil && *settings.CSLS.StyleGuide != s.validate.StyleGuide {
		s.validate.StyleGuide = *settings.CSLS.StyleGuide
		return true
	}
	return false
}

func (s *Server) handleStyleGuide(msg *rpcMessage) error {
	var params styleGuideParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logf("invalid csls/styleGuide params: %v", err)
		return nil
	}
	s.mu.Lock()
	changed := s.validate.StyleGuide != params.Enabled
	s.validate.StyleGuide = params.Enabled
	s.mu.Unlock()
	if changed {
		s.scheduleDiagnostics()
	}
	return nil
}
