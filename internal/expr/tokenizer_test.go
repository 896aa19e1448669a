package expr

import (
	"testing"

	"csls/internal/diag"
	"csls/internal/source"
)

func tokenTexts(e *Expression) []string {
	out := make([]string, 0, len(e.Tokens))
	for _, tok := range e.Tokens {
		out = append(out, tok.Text)
	}
	return out
}

func hasCode(ds []diag.Diagnostic, code diag.Code) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestTokenizeLiterals(t *testing.T) {
	tests := []struct {
		text string
		typ  TokenType
		want EvalType
	}{
		{"3", TokenNumber, EvalNumber},
		{"3.25", TokenNumber, EvalNumber},
		{`"hi there"`, TokenString, EvalString},
		{"true", TokenBoolean, EvalBoolean},
		{"FALSE", TokenBoolean, EvalBoolean},
		{"strength", TokenVariable, EvalUnknowable},
		{"{name}", TokenVariableReference, EvalUnknowable},
	}
	for _, tt := range tests {
		e := Tokenize(tt.text, 0, false)
		if len(e.Tokens) != 1 {
			t.Fatalf("%q: expected one token, got %v", tt.text, tokenTexts(e))
		}
		if e.Tokens[0].Type != tt.typ {
			t.Fatalf("%q: token type = %s, want %s", tt.text, e.Tokens[0].Type, tt.typ)
		}
		if e.EvalType != tt.want {
			t.Fatalf("%q: eval type = %s, want %s", tt.text, e.EvalType, tt.want)
		}
		if e.HasErrors() {
			t.Fatalf("%q: unexpected errors %+v", tt.text, e.Errors())
		}
	}
}

func TestTokenizeEmpty(t *testing.T) {
	e := Tokenize("   ", 7, false)
	if len(e.Tokens) != 0 || e.EvalType != EvalEmpty || e.HasErrors() {
		t.Fatalf("unexpected result %+v", e)
	}
}

func TestTokenizeKeepsDocumentOffsets(t *testing.T) {
	e := Tokenize("strength > 3", 40, false)
	want := []struct {
		typ   TokenType
		index int
	}{
		{TokenVariable, 40},
		{TokenComparisonOperator, 49},
		{TokenNumber, 51},
	}
	if len(e.Tokens) != len(want) {
		t.Fatalf("tokens = %v", tokenTexts(e))
	}
	for i, w := range want {
		if e.Tokens[i].Type != w.typ || e.Tokens[i].Index != w.index {
			t.Fatalf("token %d = %+v, want %s at %d", i, e.Tokens[i], w.typ, w.index)
		}
	}
	if e.EvalType != EvalBoolean {
		t.Fatalf("eval type = %s", e.EvalType)
	}
}

func TestTokenizeReglueDecimals(t *testing.T) {
	e := Tokenize("3.5 + 1.25", 0, false)
	got := tokenTexts(e)
	if len(got) != 3 || got[0] != "3.5" || got[1] != "+" || got[2] != "1.25" {
		t.Fatalf("tokens = %q", got)
	}
	if e.EvalType != EvalNumber || e.HasErrors() {
		t.Fatalf("eval = %s errors = %+v", e.EvalType, e.Errors())
	}
}

func TestTokenizeNumberChange(t *testing.T) {
	e := Tokenize("+ 2", 0, true)
	if e.EvalType != EvalNumberChange || e.HasErrors() {
		t.Fatalf("eval = %s errors = %+v", e.EvalType, e.Errors())
	}

	e = Tokenize("%- bonus", 0, true)
	if e.EvalType != EvalNumberChange {
		t.Fatalf("fairmath change eval = %s", e.EvalType)
	}

	e = Tokenize("+ 2", 0, false)
	if e.EvalType != EvalError || !hasCode(e.ValidateErrors, diag.ExpMissingValue) {
		t.Fatalf("outside assignment: eval = %s errors = %+v", e.EvalType, e.Errors())
	}

	e = Tokenize(`- "x"`, 0, true)
	if e.EvalType != EvalError || !hasCode(e.ValidateErrors, diag.ExpTypeMismatch) {
		t.Fatalf("string change: eval = %s errors = %+v", e.EvalType, e.Errors())
	}
	if got := e.ValidateErrors[0].Span; got != (source.Span{Start: 2, End: 5}) {
		t.Fatalf("mismatch span = %v", got)
	}
}

func TestTokenizeFunctions(t *testing.T) {
	e := Tokenize("round(hp / 2)", 10, false)
	if len(e.Tokens) != 1 || e.Tokens[0].Type != TokenFunctionAndContents {
		t.Fatalf("tokens = %+v", e.Tokens)
	}
	fn := e.Tokens[0]
	if fn.Function != "round" || fn.Index != 10 || fn.Text != "round(hp / 2)" {
		t.Fatalf("function token = %+v", fn)
	}
	if fn.Args == nil || fn.Args.Index != 15 {
		t.Fatalf("args = %+v", fn.Args)
	}
	if e.EvalType != EvalNumber || e.HasErrors() {
		t.Fatalf("eval = %s errors = %+v", e.EvalType, e.Errors())
	}
	vars := e.Variables()
	if len(vars) != 1 || vars[0].Text != "hp" || vars[0].Index != 16 {
		t.Fatalf("variables = %+v", vars)
	}
	if inner := e.Inner(0); inner == nil || inner.EvalType != EvalNumber {
		t.Fatalf("inner = %+v", inner)
	}
}

func TestTokenizeFunctionErrors(t *testing.T) {
	tests := []struct {
		text string
		code diag.Code
		span source.Span
	}{
		{"not", diag.ExpFunctionNoArgs, source.Span{Start: 0, End: 3}},
		{"not x", diag.ExpFunctionNoParens, source.Span{Start: 0, End: 3}},
		{`round("a")`, diag.ExpBadFunctionArgument, source.Span{Start: 6, End: 9}},
		{"round()", diag.ExpFunctionNoArgs, source.Span{Start: 5, End: 7}},
	}
	for _, tt := range tests {
		e := Tokenize(tt.text, 0, false)
		errs := e.Errors()
		if len(errs) == 0 {
			t.Fatalf("%q: expected an error", tt.text)
		}
		if errs[0].Code != tt.code || errs[0].Span != tt.span {
			t.Fatalf("%q: got %s at %v, want %s at %v", tt.text, errs[0].Code.ID(), errs[0].Span, tt.code.ID(), tt.span)
		}
	}
}

func TestTokenizeUnterminated(t *testing.T) {
	tests := []struct {
		text string
		code diag.Code
		span source.Span
		want EvalType
	}{
		{`x & "abc`, diag.ExpUnterminatedString, source.Span{Start: 9, End: 13}, EvalString},
		{"(a + b", diag.ExpUnterminatedParen, source.Span{Start: 5, End: 11}, EvalNumber},
		{"{name", diag.ExpUnterminatedVarRef, source.Span{Start: 5, End: 10}, EvalUnknowable},
	}
	for _, tt := range tests {
		e := Tokenize(tt.text, 5, false)
		if len(e.ParseErrors) != 1 {
			t.Fatalf("%q: parse errors = %+v", tt.text, e.ParseErrors)
		}
		if e.ParseErrors[0].Code != tt.code || e.ParseErrors[0].Span != tt.span {
			t.Fatalf("%q: got %s at %v", tt.text, e.ParseErrors[0].Code.ID(), e.ParseErrors[0].Span)
		}
		if e.ParseErrors[0].Severity != diag.SevError {
			t.Fatalf("%q: parse error severity = %v", tt.text, e.ParseErrors[0].Severity)
		}
		if e.EvalType != tt.want {
			t.Fatalf("%q: eval = %s, want %s", tt.text, e.EvalType, tt.want)
		}
	}
}

func TestTokenizeArrayElision(t *testing.T) {
	e := Tokenize("inventory[i + 1] > 2", 0, false)
	got := tokenTexts(e)
	if len(got) != 3 || got[0] != "inventory" || got[1] != ">" || got[2] != "2" {
		t.Fatalf("tokens = %q", got)
	}
	if e.Tokens[1].Index != 17 {
		t.Fatalf("operator index = %d", e.Tokens[1].Index)
	}
	if e.EvalType != EvalBoolean || e.HasErrors() {
		t.Fatalf("eval = %s errors = %+v", e.EvalType, e.Errors())
	}
	if len(e.ArrayIndexes) != 1 || e.ArrayIndexes[0].GlobalIndex != 10 {
		t.Fatalf("array indexes = %+v", e.ArrayIndexes)
	}
	vars := e.Variables()
	if len(vars) != 2 || vars[0].Text != "inventory" || vars[1].Text != "i" || vars[1].Index != 10 {
		t.Fatalf("variables = %+v", vars)
	}

	e = Tokenize("grid[1][x]", 0, false)
	if len(e.Tokens) != 1 || len(e.ArrayIndexes) != 2 {
		t.Fatalf("grid: tokens = %q indexes = %d", tokenTexts(e), len(e.ArrayIndexes))
	}
	if vars := e.Variables(); len(vars) != 2 || vars[1].Text != "x" || vars[1].Index != 8 {
		t.Fatalf("grid variables = %+v", vars)
	}

	e = Tokenize(`"a[1]" = name`, 0, false)
	if len(e.ArrayIndexes) != 0 || e.Tokens[0].Text != `"a[1]"` {
		t.Fatalf("string contents were elided: %+v", e.Tokens)
	}

	e = Tokenize("list[2", 0, false)
	if !hasCode(e.ParseErrors, diag.ExpUnterminatedBracket) {
		t.Fatalf("expected unterminated bracket, got %+v", e.ParseErrors)
	}
}

func TestTokenizeUnknownOperator(t *testing.T) {
	e := Tokenize("x <> 3", 0, false)
	if len(e.ParseErrors) != 1 || e.ParseErrors[0].Code != diag.ExpUnknownOperator {
		t.Fatalf("parse errors = %+v", e.ParseErrors)
	}
	if e.ParseErrors[0].Span != (source.Span{Start: 2, End: 4}) {
		t.Fatalf("span = %v", e.ParseErrors[0].Span)
	}
	if len(e.ValidateErrors) != 0 {
		t.Fatalf("unknown operator cascaded: %+v", e.ValidateErrors)
	}

	e = Tokenize("2nd + 1", 0, false)
	if !hasCode(e.ParseErrors, diag.ExpUnknownElement) {
		t.Fatalf("expected unknown element, got %+v", e.ParseErrors)
	}
}

func TestTokenizeTooManyElements(t *testing.T) {
	e := Tokenize("a + b + c", 0, false)
	if len(e.ValidateErrors) != 1 || e.ValidateErrors[0].Code != diag.ExpTooManyElements {
		t.Fatalf("errors = %+v", e.ValidateErrors)
	}
	if e.ValidateErrors[0].Span != (source.Span{Start: 6, End: 9}) {
		t.Fatalf("span = %v", e.ValidateErrors[0].Span)
	}
	if e.EvalType != EvalNumber {
		t.Fatalf("best-effort eval = %s", e.EvalType)
	}
}

func TestExpressionSlice(t *testing.T) {
	e := Tokenize("(a + 1) * b", 20, false)
	if len(e.Tokens) != 3 {
		t.Fatalf("tokens = %q", tokenTexts(e))
	}
	s := e.Slice(2, 3)
	if s.BareExpression != "b" || s.GlobalIndex != 30 || s.EvalType != EvalUnknowable {
		t.Fatalf("slice = %+v", s)
	}
	s = e.Slice(1, 3)
	if s.BareExpression != "* b" || s.Tokens[0].Index != 28 {
		t.Fatalf("slice = %+v", s)
	}
	s = e.Slice(2, 2)
	if s.EvalType != EvalEmpty || s.GlobalIndex != 30 {
		t.Fatalf("empty slice = %+v", s)
	}
	inner := e.Inner(0)
	if inner == nil || inner.Tokens[0].Text != "a" || inner.Tokens[0].Index != 21 {
		t.Fatalf("inner = %+v", inner)
	}
}
