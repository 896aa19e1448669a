package diag

import (
	"csls/internal/source"
)

// Fix is a single replacement of the diagnostic's span.
type Fix struct {
	Title   string `json:"title"`
	NewText string `json:"newText"`
}

// Diagnostic is one finding in one document. Span is in byte offsets of
// that document; the protocol layer converts it to a range.
type Diagnostic struct {
	Severity Severity    `json:"severity"`
	Code     Code        `json:"code"`
	Message  string      `json:"message"`
	Span     source.Span `json:"span"`
	Fixes    []Fix       `json:"fixes,omitempty"`
}

func New(sev Severity, code Code, span source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Span:     span,
		Message:  msg,
	}
}

func NewError(code Code, span source.Span, msg string) Diagnostic {
	return New(SevError, code, span, msg)
}

func NewWarning(code Code, span source.Span, msg string) Diagnostic {
	return New(SevWarning, code, span, msg)
}

func NewInfo(code Code, span source.Span, msg string) Diagnostic {
	return New(SevInfo, code, span, msg)
}

func (d Diagnostic) WithFix(title, newText string) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, NewText: newText})
	return d
}

// Shift moves the diagnostic span by n bytes.
func (d Diagnostic) Shift(n int) Diagnostic {
	d.Span = d.Span.ShiftRight(n)
	return d
}
