package diag

import "csls/internal/source"

// Reporter receives diagnostics from a scanning pass.
type Reporter interface {
	Report(code Code, sev Severity, span source.Span, msg string)
}

// SliceReporter appends reports to a slice.
type SliceReporter struct {
	Items []Diagnostic
}

func (r *SliceReporter) Report(code Code, sev Severity, span source.Span, msg string) {
	r.Items = append(r.Items, New(sev, code, span, msg))
}
