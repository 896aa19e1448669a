package expr

import (
	"csls/internal/source"
)

// TokenType classifies a token.
type TokenType uint8

const (
	TokenUnknown TokenType = iota
	TokenString
	TokenVariableReference
	TokenParentheses
	TokenFunction
	TokenFunctionAndContents
	TokenNumber
	TokenBoolean
	TokenVariable
	TokenBooleanNamedOperator
	TokenNumericNamedOperator
	TokenMathOperator
	TokenComparisonOperator
	TokenStringOperator
	TokenUnknownOperator
)

var tokenTypeNames = [...]string{
	TokenUnknown:              "Unknown",
	TokenString:               "String",
	TokenVariableReference:    "VariableReference",
	TokenParentheses:          "Parentheses",
	TokenFunction:             "Function",
	TokenFunctionAndContents:  "FunctionAndContents",
	TokenNumber:               "Number",
	TokenBoolean:              "Boolean",
	TokenVariable:             "Variable",
	TokenBooleanNamedOperator: "BooleanNamedOperator",
	TokenNumericNamedOperator: "NumericNamedOperator",
	TokenMathOperator:         "MathOperator",
	TokenComparisonOperator:   "ComparisonOperator",
	TokenStringOperator:       "StringOperator",
	TokenUnknownOperator:      "UnknownOperator",
}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return "Invalid"
}

// IsOperator reports whether tokens of this type sit between two values.
func (t TokenType) IsOperator() bool {
	switch t {
	case TokenBooleanNamedOperator, TokenNumericNamedOperator, TokenMathOperator,
		TokenComparisonOperator, TokenStringOperator, TokenUnknownOperator:
		return true
	}
	return false
}

// IsValue reports whether tokens of this type can stand as an operand.
func (t TokenType) IsValue() bool {
	switch t {
	case TokenString, TokenVariableReference, TokenParentheses,
		TokenFunctionAndContents, TokenNumber, TokenBoolean, TokenVariable:
		return true
	}
	return false
}

// IsMath reports whether the token is a math operator, symbolic or named.
func (t TokenType) IsMath() bool {
	return t == TokenMathOperator || t == TokenNumericNamedOperator
}

// Token is one element of a tokenized expression. Index is the offset of
// its first byte in the document.
type Token struct {
	Type         TokenType
	Text         string
	Index        int
	Unterminated bool
	// Set on FunctionAndContents tokens: the function name and the
	// parenthesised argument token.
	Function string
	Args     *Token
}

// End returns the document offset just past the token.
func (t Token) End() int {
	return t.Index + len(t.Text)
}

func (t Token) Span() source.Span {
	return source.Span{Start: t.Index, End: t.End()}
}

// Inner returns the text between the token's delimiters and its offset, for
// strings, variable references and parentheses. Unterminated tokens run to
// their end.
func (t Token) Inner() (string, int) {
	switch t.Type {
	case TokenString, TokenVariableReference, TokenParentheses:
	default:
		return "", t.Index
	}
	if len(t.Text) == 0 {
		return "", t.Index
	}
	body := t.Text[1:]
	if !t.Unterminated && len(body) > 0 {
		body = body[:len(body)-1]
	}
	return body, t.Index + 1
}

// EvalType is the statically inferred type of an expression.
type EvalType uint8

const (
	EvalEmpty EvalType = iota
	EvalNumber
	EvalNumberChange
	EvalBoolean
	EvalString
	EvalUnknowable
	EvalError
)

func (e EvalType) String() string {
	switch e {
	case EvalEmpty:
		return "Empty"
	case EvalNumber:
		return "Number"
	case EvalNumberChange:
		return "NumberChange"
	case EvalBoolean:
		return "Boolean"
	case EvalString:
		return "String"
	case EvalUnknowable:
		return "Unknowable"
	}
	return "Error"
}

// Subtext is a piece of an expression or template with its document offset.
type Subtext struct {
	Text        string
	GlobalIndex int
}

func (s Subtext) Span() source.Span {
	return source.SpanAt(s.GlobalIndex, len(s.Text))
}
