package expr

import (
	"regexp"
	"strings"

	"csls/internal/diag"
	"csls/internal/language"
	"csls/internal/source"
	"csls/internal/textutil"
)

var numberPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Expression is a tokenized and validated expression.
type Expression struct {
	// BareExpression is the text as it appears in the document and
	// GlobalIndex the offset of its first byte.
	BareExpression string
	GlobalIndex    int
	IsValueSetting bool

	Tokens   []Token
	EvalType EvalType

	// ArrayIndexes holds the contents of elided [..] array indexes.
	ArrayIndexes []*Expression

	ParseErrors    []diag.Diagnostic
	ValidateErrors []diag.Diagnostic

	// inner holds the sub-expression of each compound token, keyed by the
	// token's position in Tokens.
	inner map[int]*Expression
}

// Tokenize tokenizes and validates text, which starts at globalIndex in its
// document. isValueSetting allows the delta form "+ 2" used by *set.
func Tokenize(text string, globalIndex int, isValueSetting bool) *Expression {
	e := &Expression{
		BareExpression: text,
		GlobalIndex:    globalIndex,
		IsValueSetting: isValueSetting,
	}
	elided := e.elideArrays(text)
	raw := e.extractSpans(elided)
	e.Tokens = e.combine(raw)
	e.tokenizeInner()
	e.validate()
	return e
}

// Errors returns parse errors followed by validation errors, including
// those of nested sub-expressions.
func (e *Expression) Errors() []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(e.ParseErrors)+len(e.ValidateErrors))
	out = append(out, e.ParseErrors...)
	out = append(out, e.ValidateErrors...)
	return out
}

// HasErrors reports whether tokenizing or validating produced any error.
func (e *Expression) HasErrors() bool {
	return len(e.ParseErrors) > 0 || len(e.ValidateErrors) > 0
}

func (e *Expression) Span() source.Span {
	return source.SpanAt(e.GlobalIndex, len(e.BareExpression))
}

// Inner returns the sub-expression tokenized from the compound token at
// position i: the contents of a parenthesised group, a variable reference
// or a function's arguments. It returns nil for other tokens.
func (e *Expression) Inner(i int) *Expression {
	return e.inner[i]
}

// Slice re-tokenizes Tokens[start:end] as an independent expression with
// document offsets kept.
func (e *Expression) Slice(start, end int) *Expression {
	if start < 0 {
		start = 0
	}
	if end > len(e.Tokens) {
		end = len(e.Tokens)
	}
	if start >= end {
		at := e.GlobalIndex + len(e.BareExpression)
		if start < len(e.Tokens) {
			at = e.Tokens[start].Index
		}
		return Tokenize("", at, false)
	}
	from := e.Tokens[start].Index - e.GlobalIndex
	to := e.Tokens[end-1].End() - e.GlobalIndex
	return Tokenize(e.BareExpression[from:to], e.Tokens[start].Index, false)
}

// Variables returns every Variable token of the expression and of its
// nested sub-expressions and array indexes, in document order of discovery.
func (e *Expression) Variables() []Token {
	var out []Token
	e.walk(func(x *Expression) {
		for _, tok := range x.Tokens {
			if tok.Type == TokenVariable {
				out = append(out, tok)
			}
		}
	})
	return out
}

func (e *Expression) walk(fn func(*Expression)) {
	fn(e)
	for i := range e.Tokens {
		if sub := e.inner[i]; sub != nil {
			sub.walk(fn)
		}
	}
	for _, sub := range e.ArrayIndexes {
		sub.walk(fn)
	}
}

func (e *Expression) parseError(code diag.Code, span source.Span, msg string) {
	e.ParseErrors = append(e.ParseErrors, diag.NewError(code, span, msg))
}

func (e *Expression) validateError(code diag.Code, span source.Span, msg string) {
	e.ValidateErrors = append(e.ValidateErrors, diag.NewError(code, span, msg))
}

// elideArrays blanks every top-level [..] that follows a word character
// and tokenizes the index contents separately. Indexes nested in braces or
// parentheses are left to the sub-expression that owns them.
func (e *Expression) elideArrays(text string) string {
	if strings.IndexByte(text, '[') < 0 {
		return text
	}
	buf := []byte(text)
	inString := false
	depth := 0
	for i := 0; i < len(buf); i++ {
		c := text[i]
		if c == '"' && !textutil.IsEscaped(text, i) {
			inString = !inString
			continue
		}
		if inString || textutil.IsEscaped(text, i) {
			continue
		}
		switch c {
		case '(', '{':
			depth++
			continue
		case ')', '}':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth > 0 || c != '[' || i == 0 || !isWordByte(text[i-1]) {
			continue
		}
		// a[1][2]: consume every adjacent index.
		for i < len(text) && text[i] == '[' {
			closeAt := textutil.MatchingDelimiter(text, '[', ']', i+1)
			end := closeAt
			if closeAt < 0 {
				end = len(text)
				e.parseError(diag.ExpUnterminatedBracket,
					source.Span{Start: e.GlobalIndex + i, End: e.GlobalIndex + len(text)},
					"Missing close bracket")
			}
			e.ArrayIndexes = append(e.ArrayIndexes,
				Tokenize(text[i+1:end], e.GlobalIndex+i+1, false))
			if closeAt < 0 {
				closeAt = len(text) - 1
			}
			for j := i; j <= closeAt; j++ {
				buf[j] = ' '
			}
			i = closeAt + 1
		}
		i--
	}
	return string(buf)
}

// extractSpans splits text into delimited tokens and classified words.
func (e *Expression) extractSpans(text string) []Token {
	var out []Token
	pos := 0
	for pos < len(text) {
		open := nextOpener(text, pos)
		if open < 0 {
			out = append(out, e.chunk(text[pos:], pos)...)
			break
		}
		if open > pos {
			out = append(out, e.chunk(text[pos:open], pos)...)
		}
		opener := text[open]
		tok := Token{Index: e.GlobalIndex + open}
		switch opener {
		case '"':
			tok.Type = TokenString
		case '{':
			tok.Type = TokenVariableReference
		default:
			tok.Type = TokenParentheses
		}
		closeAt := textutil.MatchingDelimiter(text, opener, textutil.CloserFor(opener), open+1)
		if closeAt < 0 {
			tok.Text = e.BareExpression[open:]
			tok.Unterminated = true
			code, msg := unterminatedError(opener)
			e.parseError(code, tok.Span(), msg)
			out = append(out, tok)
			break
		}
		// Token text comes from the original so strings keep any brackets.
		tok.Text = e.BareExpression[open : closeAt+1]
		out = append(out, tok)
		pos = closeAt + 1
	}
	return out
}

func nextOpener(text string, from int) int {
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '"', '{', '(':
			if !textutil.IsEscaped(text, i) {
				return i
			}
		}
	}
	return -1
}

func unterminatedError(opener byte) (diag.Code, string) {
	switch opener {
	case '"':
		return diag.ExpUnterminatedString, "Missing close quote"
	case '{':
		return diag.ExpUnterminatedVarRef, "Missing close curly brace"
	}
	return diag.ExpUnterminatedParen, "Missing close parenthesis"
}

type piece struct {
	text   string
	offset int
	word   bool
}

// chunk splits an unprocessed span on word boundaries, reglues decimals and
// classifies the pieces. offset is relative to the expression.
func (e *Expression) chunk(text string, offset int) []Token {
	var pieces []piece
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case isWordByte(c):
			j := i
			for j < len(text) && isWordByte(text[j]) {
				j++
			}
			pieces = append(pieces, piece{text: text[i:j], offset: offset + i, word: true})
			i = j
		default:
			j := i
			for j < len(text) && !isWordByte(text[j]) && !isSpace(text[j]) {
				j++
			}
			pieces = append(pieces, piece{text: text[i:j], offset: offset + i})
			i = j
		}
	}
	pieces = reglueDecimals(pieces)

	out := make([]Token, 0, len(pieces))
	for _, p := range pieces {
		tok := Token{Text: p.text, Index: e.GlobalIndex + p.offset}
		if p.word {
			tok.Type = classifyWord(p.text)
			if tok.Type == TokenUnknown {
				e.parseError(diag.ExpUnknownElement, tok.Span(), "Unrecognized element: "+p.text)
			}
		} else {
			tok.Type = classifyOperator(p.text)
			if tok.Type == TokenUnknownOperator {
				e.parseError(diag.ExpUnknownOperator, tok.Span(), "Unknown operator: "+p.text)
			}
		}
		out = append(out, tok)
	}
	return out
}

// reglueDecimals joins "3", ".", "5" back into "3.5" when the three pieces
// touch.
func reglueDecimals(pieces []piece) []piece {
	out := pieces[:0:0]
	for i := 0; i < len(pieces); i++ {
		p := pieces[i]
		if i+2 < len(pieces) && p.word && isDigits(p.text) {
			dot, frac := pieces[i+1], pieces[i+2]
			if dot.text == "." && frac.word && isDigits(frac.text) &&
				dot.offset == p.offset+len(p.text) && frac.offset == dot.offset+1 {
				out = append(out, piece{text: p.text + "." + frac.text, offset: p.offset, word: true})
				i += 2
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func classifyWord(w string) TokenType {
	switch {
	case numberPattern.MatchString(w):
		return TokenNumber
	case language.IsNamedBooleanOperator(w):
		return TokenBooleanNamedOperator
	case language.IsNamedMathOperator(w):
		return TokenNumericNamedOperator
	case isFunction(w):
		return TokenFunction
	case language.IsBooleanValue(w):
		return TokenBoolean
	case language.IsValidVariableName(w):
		return TokenVariable
	}
	return TokenUnknown
}

func classifyOperator(op string) TokenType {
	switch language.SymbolicOperator(op) {
	case language.OpMath:
		return TokenMathOperator
	case language.OpComparison:
		return TokenComparisonOperator
	case language.OpString:
		return TokenStringOperator
	}
	return TokenUnknownOperator
}

func isFunction(w string) bool {
	_, ok := language.LookupFunction(w)
	return ok
}

// combine merges a function name with the parentheses that follow it.
func (e *Expression) combine(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Type != TokenFunction {
			out = append(out, tok)
			continue
		}
		if i+1 >= len(tokens) {
			e.parseError(diag.ExpFunctionNoArgs, tok.Span(), "Function "+tok.Text+" is missing its arguments")
			out = append(out, tok)
			continue
		}
		next := tokens[i+1]
		if next.Type != TokenParentheses {
			e.parseError(diag.ExpFunctionNoParens, tok.Span(), "Function "+tok.Text+" must be followed by parentheses")
			out = append(out, tok)
			continue
		}
		args := next
		out = append(out, Token{
			Type:         TokenFunctionAndContents,
			Text:         e.BareExpression[tok.Index-e.GlobalIndex : next.End()-e.GlobalIndex],
			Index:        tok.Index,
			Unterminated: next.Unterminated,
			Function:     strings.ToLower(tok.Text),
			Args:         &args,
		})
		i++
	}
	return out
}

// tokenizeInner tokenizes the contents of every compound token and pulls
// their parse errors up.
func (e *Expression) tokenizeInner() {
	for i, tok := range e.Tokens {
		var src Token
		switch tok.Type {
		case TokenParentheses, TokenVariableReference:
			src = tok
		case TokenFunctionAndContents:
			src = *tok.Args
		default:
			continue
		}
		text, at := src.Inner()
		sub := Tokenize(text, at, false)
		if e.inner == nil {
			e.inner = make(map[int]*Expression)
		}
		e.inner[i] = sub
		e.ParseErrors = append(e.ParseErrors, sub.ParseErrors...)
		e.ValidateErrors = append(e.ValidateErrors, sub.ValidateErrors...)
	}
	for _, sub := range e.ArrayIndexes {
		e.ParseErrors = append(e.ParseErrors, sub.ParseErrors...)
		e.ValidateErrors = append(e.ValidateErrors, sub.ValidateErrors...)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
