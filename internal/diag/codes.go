package diag

import (
	"fmt"
	"strings"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Expression parsing and typing
	ExpInfo                 Code = 1000
	ExpUnterminatedString   Code = 1001
	ExpUnterminatedVarRef   Code = 1002
	ExpUnterminatedParen    Code = 1003
	ExpFunctionNoArgs       Code = 1004
	ExpFunctionNoParens     Code = 1005
	ExpUnknownOperator      Code = 1006
	ExpUnknownElement       Code = 1007
	ExpIncomplete           Code = 1008
	ExpMissingValue         Code = 1009
	ExpNotAnOperator        Code = 1010
	ExpTypeMismatch         Code = 1011
	ExpTooManyElements      Code = 1012
	ExpEmpty                Code = 1013
	ExpUnterminatedBracket  Code = 1014
	ExpBadFunctionArgument  Code = 1015
	MrpUnterminated         Code = 1100
	MrpMissingTest          Code = 1101
	MrpTooFewOptions        Code = 1102
	MrpNested               Code = 1103
	MrpBooleanOptionCount   Code = 1104
	MrpInvalidTest          Code = 1106

	// Commands
	CmdInfo             Code = 2000
	CmdUnknown          Code = 2001
	CmdNotAlone         Code = 2002
	CmdStartupOnly      Code = 2003
	CmdMissingArgument  Code = 2004
	CmdDuplicateCreate  Code = 2005
	CmdDuplicateLabel   Code = 2006
	CmdDuplicateAchieve Code = 2007

	// References
	RefInfo               Code = 3000
	RefUndefinedVariable  Code = 3001
	RefUsedBeforeCreation Code = 3002
	RefUnknownAchievement Code = 3003
	RefUndefinedLabel     Code = 3004
	RefUnknownScene       Code = 3005
	RefLabelNotInScene    Code = 3006

	// Layout
	LayInfo             Code = 4000
	LayMixedIndentation Code = 4001

	// House style
	StyInfo          Code = 5000
	StyEllipsis      Code = 5001
	StyEmDash        Code = 5002
	StyInlineCommand Code = 5003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		ExpInfo:                "Expression information",
		ExpUnterminatedString:  "Unterminated string",
		ExpUnterminatedVarRef:  "Unterminated variable reference",
		ExpUnterminatedParen:   "Unterminated parenthesis",
		ExpFunctionNoArgs:      "Function is missing its arguments",
		ExpFunctionNoParens:    "Function must be followed by parentheses",
		ExpUnknownOperator:     "Unknown operator",
		ExpUnknownElement:      "Unrecognized element",
		ExpIncomplete:          "Incomplete expression",
		ExpMissingValue:        "Missing value",
		ExpNotAnOperator:       "Expected an operator",
		ExpTypeMismatch:        "Type mismatch",
		ExpTooManyElements:     "Too many elements",
		ExpEmpty:               "Empty expression",
		ExpUnterminatedBracket: "Unterminated array index",
		ExpBadFunctionArgument: "Invalid function argument",
		MrpUnterminated:        "Unterminated multireplace",
		MrpMissingTest:         "Multireplace is missing its test",
		MrpTooFewOptions:       "Multireplace needs at least two options",
		MrpNested:              "Nested multireplace",
		MrpBooleanOptionCount:  "Boolean multireplace needs exactly two options",
		MrpInvalidTest:         "Invalid multireplace test",
		CmdInfo:                "Command information",
		CmdUnknown:             "Unknown command",
		CmdNotAlone:            "Command must be on a line by itself",
		CmdStartupOnly:         "Command only allowed in startup",
		CmdMissingArgument:     "Command is missing an argument",
		CmdDuplicateCreate:     "Variable created twice",
		CmdDuplicateLabel:      "Label defined twice",
		CmdDuplicateAchieve:    "Achievement defined twice",
		RefInfo:                "Reference information",
		RefUndefinedVariable:   "Undefined variable",
		RefUsedBeforeCreation:  "Variable used before creation",
		RefUnknownAchievement:  "Unknown achievement",
		RefUndefinedLabel:      "Undefined label",
		RefUnknownScene:        "Unknown scene",
		RefLabelNotInScene:     "Label not found in scene",
		LayInfo:                "Layout information",
		LayMixedIndentation:    "Mixed indentation",
		StyInfo:                "Style information",
		StyEllipsis:            "Use an ellipsis",
		StyEmDash:              "Use an em-dash",
		StyInlineCommand:       "Command in the middle of a line",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("EXP%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CMD%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("REF%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LAY%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("STY%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.ID()), nil
}

// ParseCode maps an identifier such as "STY5001" back to its code.
func ParseCode(id string) (Code, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	for c := range codeDescription {
		if c != UnknownCode && c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
