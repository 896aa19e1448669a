package expr

import (
	"strings"

	"csls/internal/diag"
	"csls/internal/language"
	"csls/internal/source"
	"csls/internal/textutil"
)

// Multireplace is a parsed @{test a|b|...} construct.
type Multireplace struct {
	// Text is everything between the braces and GlobalIndex its offset.
	Text        string
	GlobalIndex int

	Test           Subtext
	TestExpression *Expression
	Body           []Subtext

	// EndGlobalIndex is one past the closing brace, or the end of the
	// scanned text when the construct is unterminated.
	EndGlobalIndex int
	Unterminated   bool

	ParseErrors []diag.Diagnostic
}

// TokenizeMultireplace parses the text that follows "@{" (or "@!{",
// "@!!{"). globalIndex is the document offset of text[0].
func TokenizeMultireplace(text string, globalIndex int) *Multireplace {
	m := &Multireplace{GlobalIndex: globalIndex}
	closeAt := textutil.MatchingDelimiter(text, '{', '}', 0)
	if closeAt < 0 {
		m.Text = text
		m.Unterminated = true
		m.EndGlobalIndex = globalIndex + len(text)
		m.errorf(diag.MrpUnterminated, source.SpanAt(globalIndex, len(text)), "Missing close curly brace")
	} else {
		m.Text = text[:closeAt]
		m.EndGlobalIndex = globalIndex + closeAt + 1
	}

	full := m.Text
	rest := 0
	switch {
	case strings.HasPrefix(full, "("):
		end := textutil.MatchingDelimiter(full, '(', ')', 1)
		if end < 0 {
			m.Test = Subtext{Text: full[1:], GlobalIndex: globalIndex + 1}
			m.errorf(diag.ExpUnterminatedParen, source.SpanAt(globalIndex, len(full)), "Missing close parenthesis")
			rest = len(full)
		} else {
			m.Test = Subtext{Text: full[1:end], GlobalIndex: globalIndex + 1}
			rest = end + 1
		}
	default:
		n := 0
		for n < len(full) && isWordByte(full[n]) {
			n++
		}
		m.Test = Subtext{Text: full[:n], GlobalIndex: globalIndex}
		rest = n
	}
	if strings.TrimSpace(m.Test.Text) == "" {
		m.errorf(diag.MrpMissingTest, source.SpanAt(globalIndex, len(full)), "Multireplace is missing its test")
	}
	m.TestExpression = Tokenize(m.Test.Text, m.Test.GlobalIndex, false)
	m.Body = splitOptions(full[rest:], globalIndex+rest)
	return m
}

// splitOptions splits on '|' outside braces. Each option is trimmed and
// its offset points at its first non-blank byte.
func splitOptions(text string, offset int) []Subtext {
	if strings.TrimSpace(text) == "" && !strings.Contains(text, "|") {
		return nil
	}
	var out []Subtext
	depth := 0
	start := 0
	emit := func(end int) {
		seg := text[start:end]
		trimmed := strings.TrimLeft(seg, " \t")
		lead := len(seg) - len(trimmed)
		trimmed = strings.TrimRight(trimmed, " \t")
		out = append(out, Subtext{Text: trimmed, GlobalIndex: offset + start + lead})
	}
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '{' && !textutil.IsEscaped(text, i):
			depth++
		case c == '}' && !textutil.IsEscaped(text, i) && depth > 0:
			depth--
		case c == '|' && depth == 0 && !textutil.IsEscaped(text, i):
			emit(i)
			start = i + 1
		}
	}
	emit(len(text))
	return out
}

func (m *Multireplace) errorf(code diag.Code, span source.Span, msg string) {
	m.ParseErrors = append(m.ParseErrors, diag.NewError(code, span, msg))
}

// Errors returns the construct's own errors followed by those of its test
// expression.
func (m *Multireplace) Errors() []diag.Diagnostic {
	out := append([]diag.Diagnostic(nil), m.ParseErrors...)
	if m.TestExpression != nil {
		out = append(out, m.TestExpression.Errors()...)
	}
	return out
}

// ValidateMultireplace checks the option count against the test type and
// validates each option as scene text. start is the offset of the "@" that
// opens the construct.
func ValidateMultireplace(m *Multireplace, start int) []diag.Diagnostic {
	var out []diag.Diagnostic
	whole := source.Span{Start: start, End: m.EndGlobalIndex}
	if len(strings.TrimSpace(m.Test.Text)) > 0 && !m.Unterminated {
		switch {
		case len(m.Body) < 2:
			out = append(out, diag.NewError(diag.MrpTooFewOptions, whole,
				"Multireplace must have at least two options separated by |"))
		case m.TestExpression.EvalType == EvalBoolean && len(m.Body) != 2:
			out = append(out, diag.NewError(diag.MrpBooleanOptionCount, whole,
				"A true/false multireplace must have exactly two options"))
		}
		if m.TestExpression.EvalType == EvalString {
			out = append(out, diag.NewError(diag.MrpInvalidTest, m.Test.Span(),
				"Multireplace test must be a number or a true/false value"))
		}
	}
	for _, opt := range m.Body {
		for _, r := range language.ScanReplacements(opt.Text, opt.GlobalIndex) {
			if r.Kind == language.ReplaceMultireplace {
				out = append(out, diag.NewError(diag.MrpNested,
					source.Span{Start: r.Start, End: r.End},
					"Multireplaces cannot be nested"))
				continue
			}
			if r.Unterminated {
				out = append(out, diag.NewError(diag.ExpUnterminatedVarRef,
					source.Span{Start: r.Start, End: r.End}, "Missing close curly brace"))
			}
		}
	}
	return out
}
