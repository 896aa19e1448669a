package language

import "strings"

// ValueType is the static type of a value or the type an operator or
// function argument expects.
type ValueType uint8

const (
	TypeAny ValueType = iota
	TypeNumber
	TypeBoolean
	TypeString
)

func (t ValueType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeString:
		return "string"
	}
	return "any"
}

// OperatorKind groups operators by the types they accept and produce.
type OperatorKind uint8

const (
	OpNone OperatorKind = iota
	OpMath
	OpComparison
	OpString
	OpBoolean
)

var mathOperators = makeSet("+", "-", "*", "/", "%+", "%-")
var namedMathOperators = makeSet("modulo")
var comparisonOperators = makeSet("=", "<", ">", "<=", ">=", "!=")
var equalityOperators = makeSet("=", "!=")
var stringOperators = makeSet("&")
var namedBooleanOperators = makeSet("and", "or")
var booleanValues = makeSet("true", "false")

// SymbolicOperator classifies a non-word operator.
func SymbolicOperator(op string) OperatorKind {
	if _, ok := mathOperators[op]; ok {
		return OpMath
	}
	if _, ok := comparisonOperators[op]; ok {
		return OpComparison
	}
	if _, ok := stringOperators[op]; ok {
		return OpString
	}
	return OpNone
}

// IsNamedMathOperator reports whether word is a word-form math operator.
func IsNamedMathOperator(word string) bool {
	_, ok := namedMathOperators[strings.ToLower(word)]
	return ok
}

// IsNamedBooleanOperator reports whether word is "and" or "or".
func IsNamedBooleanOperator(word string) bool {
	_, ok := namedBooleanOperators[strings.ToLower(word)]
	return ok
}

// IsEqualityOperator reports whether op compares any two values.
func IsEqualityOperator(op string) bool {
	_, ok := equalityOperators[op]
	return ok
}

// IsBooleanValue reports whether word is a boolean literal.
func IsBooleanValue(word string) bool {
	_, ok := booleanValues[strings.ToLower(word)]
	return ok
}

// Function describes a built-in function.
type Function struct {
	Name    string
	Returns ValueType
	Arg     ValueType
}

var functions = map[string]Function{
	"not":       {Name: "not", Returns: TypeBoolean, Arg: TypeBoolean},
	"round":     {Name: "round", Returns: TypeNumber, Arg: TypeNumber},
	"timestamp": {Name: "timestamp", Returns: TypeNumber, Arg: TypeString},
	"log":       {Name: "log", Returns: TypeNumber, Arg: TypeNumber},
	"length":    {Name: "length", Returns: TypeNumber, Arg: TypeString},
}

// LookupFunction returns the built-in function named word.
func LookupFunction(word string) (Function, bool) {
	f, ok := functions[strings.ToLower(word)]
	return f, ok
}
