package expr

import (
	"fmt"

	"csls/internal/diag"
	"csls/internal/language"
	"csls/internal/source"
)

func (e *Expression) validate() {
	n := len(e.Tokens)
	switch {
	case n == 0:
		e.EvalType = EvalEmpty
	case n == 1:
		e.EvalType = e.validateSingle(0)
	case n == 2:
		e.EvalType = e.validatePair()
	case n == 3:
		e.EvalType = e.validateTriple()
	default:
		e.validateError(diag.ExpTooManyElements, e.spanOf(3, n-1), "Too many elements - are you missing parentheses?")
		e.EvalType = e.validateTriple()
	}
}

// valueType returns the type a value token evaluates to. ok is false for
// tokens that are not values; those have already been reported when they
// are unknown words or bare functions.
func (e *Expression) valueType(i int) (EvalType, bool) {
	tok := e.Tokens[i]
	switch tok.Type {
	case TokenNumber:
		return EvalNumber, true
	case TokenBoolean:
		return EvalBoolean, true
	case TokenString:
		return EvalString, true
	case TokenVariable, TokenVariableReference:
		return EvalUnknowable, true
	case TokenParentheses:
		sub := e.inner[i]
		if sub == nil || sub.EvalType == EvalEmpty {
			return EvalError, true
		}
		if sub.EvalType == EvalNumberChange {
			return EvalError, true
		}
		return sub.EvalType, true
	case TokenFunctionAndContents:
		fn, ok := language.LookupFunction(tok.Function)
		if !ok {
			return EvalError, true
		}
		return fromValueType(fn.Returns), true
	}
	return EvalError, false
}

func fromValueType(t language.ValueType) EvalType {
	switch t {
	case language.TypeNumber:
		return EvalNumber
	case language.TypeBoolean:
		return EvalBoolean
	case language.TypeString:
		return EvalString
	}
	return EvalUnknowable
}

// checkCompound reports errors local to a parenthesised group or a function
// call at position i: empty groups and mistyped function arguments.
func (e *Expression) checkCompound(i int) {
	tok := e.Tokens[i]
	sub := e.inner[i]
	if sub == nil {
		return
	}
	switch tok.Type {
	case TokenParentheses:
		if sub.EvalType == EvalEmpty && !tok.Unterminated {
			e.validateError(diag.ExpEmpty, tok.Span(), "Empty parentheses")
		}
	case TokenFunctionAndContents:
		fn, ok := language.LookupFunction(tok.Function)
		if !ok {
			return
		}
		if sub.EvalType == EvalEmpty {
			e.validateError(diag.ExpFunctionNoArgs, tok.Args.Span(),
				fmt.Sprintf("Function %s() is missing its argument", fn.Name))
			return
		}
		if !compatible(sub.EvalType, fn.Arg) {
			e.validateError(diag.ExpBadFunctionArgument, sub.Span(),
				fmt.Sprintf("Function %s() needs a %s argument", fn.Name, fn.Arg))
		}
	}
}

// compatible reports whether a value of type got can be used where want is
// expected. Unknowable values are compatible with everything; Error values
// have been reported already and are accepted to avoid cascades.
func compatible(got EvalType, want language.ValueType) bool {
	switch got {
	case EvalUnknowable, EvalError:
		return true
	}
	switch want {
	case language.TypeNumber:
		return got == EvalNumber
	case language.TypeBoolean:
		return got == EvalBoolean
	case language.TypeString:
		return got == EvalString
	}
	return true
}

func (e *Expression) validateSingle(i int) EvalType {
	tok := e.Tokens[i]
	if tok.Type == TokenParentheses || tok.Type == TokenFunctionAndContents {
		e.checkCompound(i)
	}
	t, ok := e.valueType(i)
	if ok {
		return t
	}
	if tok.Type.IsOperator() && tok.Type != TokenUnknownOperator {
		e.validateError(diag.ExpMissingValue, tok.Span(), "Operator "+tok.Text+" has no values to work on")
	}
	return EvalError
}

func (e *Expression) validatePair() EvalType {
	first, second := e.Tokens[0], e.Tokens[1]
	if first.Type.IsMath() && e.IsValueSetting {
		t, ok := e.operandType(1)
		if !ok {
			return EvalError
		}
		if !compatible(t, language.TypeNumber) {
			e.validateError(diag.ExpTypeMismatch, second.Span(), "Not a number: "+second.Text)
			return EvalError
		}
		return EvalNumberChange
	}
	for i := range e.Tokens {
		if e.Tokens[i].Type == TokenParentheses || e.Tokens[i].Type == TokenFunctionAndContents {
			e.checkCompound(i)
		}
	}
	if _, ok := e.valueType(0); ok {
		e.validateError(diag.ExpIncomplete, second.Span(), "Incomplete expression")
		return EvalError
	}
	if first.Type.IsOperator() && first.Type != TokenUnknownOperator {
		e.validateError(diag.ExpMissingValue, first.Span(), "Missing value before operator "+first.Text)
	}
	return EvalError
}

// operandType checks compound tokens and returns the operand's type. ok is
// false, with an error reported where needed, when the token is no value.
func (e *Expression) operandType(i int) (EvalType, bool) {
	tok := e.Tokens[i]
	if tok.Type == TokenParentheses || tok.Type == TokenFunctionAndContents {
		e.checkCompound(i)
	}
	t, ok := e.valueType(i)
	if ok {
		return t, true
	}
	if tok.Type.IsOperator() && tok.Type != TokenUnknownOperator {
		e.validateError(diag.ExpMissingValue, tok.Span(), "Expected a value, not operator "+tok.Text)
	}
	return EvalError, false
}

func (e *Expression) validateTriple() EvalType {
	a, op, b := e.Tokens[0], e.Tokens[1], e.Tokens[2]
	aType, aOK := e.operandType(0)

	if !op.Type.IsOperator() {
		if op.Type.IsValue() {
			e.validateError(diag.ExpNotAnOperator, op.Span(), "Expected an operator, not "+op.Text)
		}
		e.operandType(2)
		return EvalError
	}
	bType, bOK := e.operandType(2)
	if op.Type == TokenUnknownOperator || !aOK || !bOK {
		return EvalError
	}

	mismatch := func(tok Token, want string) {
		e.validateError(diag.ExpTypeMismatch, tok.Span(),
			fmt.Sprintf("%s requires a %s, not %s", operatorName(op), want, describe(tok)))
	}

	var result EvalType
	switch {
	case op.Type.IsMath():
		if !compatible(aType, language.TypeNumber) {
			mismatch(a, "number")
		}
		if !compatible(bType, language.TypeNumber) {
			mismatch(b, "number")
		}
		result = EvalNumber
	case op.Type == TokenComparisonOperator && language.IsEqualityOperator(op.Text):
		if aType != EvalUnknowable && bType != EvalUnknowable &&
			aType != EvalError && bType != EvalError && aType != bType {
			e.validateError(diag.ExpTypeMismatch, b.Span(),
				fmt.Sprintf("Can't compare %s to %s", typeName(aType), typeName(bType)))
		}
		result = EvalBoolean
	case op.Type == TokenComparisonOperator:
		if !compatible(aType, language.TypeNumber) {
			mismatch(a, "number")
		}
		if !compatible(bType, language.TypeNumber) {
			mismatch(b, "number")
		}
		result = EvalBoolean
	case op.Type == TokenStringOperator:
		if !compatible(aType, language.TypeString) {
			mismatch(a, "string")
		}
		if !compatible(bType, language.TypeString) {
			mismatch(b, "string")
		}
		result = EvalString
	case op.Type == TokenBooleanNamedOperator:
		if !compatible(aType, language.TypeBoolean) {
			mismatch(a, "boolean")
		}
		if !compatible(bType, language.TypeBoolean) {
			mismatch(b, "boolean")
		}
		result = EvalBoolean
	}
	// Operand mismatches are reported above; the operator still decides
	// the result type.
	return result
}

func operatorName(op Token) string {
	return fmt.Sprintf("Operator %q", op.Text)
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenNumber:
		return "the number " + tok.Text
	case TokenString:
		return "the string " + tok.Text
	case TokenBoolean:
		return "the boolean " + tok.Text
	}
	return tok.Text
}

func typeName(t EvalType) string {
	switch t {
	case EvalNumber:
		return "a number"
	case EvalBoolean:
		return "a boolean"
	case EvalString:
		return "a string"
	}
	return "an unknown value"
}

// spanOf covers tokens i through j.
func (e *Expression) spanOf(i, j int) source.Span {
	return e.Tokens[i].Span().Cover(e.Tokens[j].Span())
}
