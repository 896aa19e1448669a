package language

import (
	"regexp"
	"strings"

	"csls/internal/source"
	"csls/internal/textutil"
)

var (
	commandLinePattern   = regexp.MustCompile(`^([ \t]*)\*([A-Za-z_]\w*)`)
	inlineCommandPattern = regexp.MustCompile(`\S[ \t]*(\*([A-Za-z_]\w*))`)
	replacementPattern   = regexp.MustCompile(`([$@])(!{0,2})\{`)
	argumentPattern      = regexp.MustCompile(`\S+`)
)

// Word is a piece of text together with its byte span in the document.
type Word struct {
	Text string
	Span source.Span
}

// CommandLine is a line whose first non-blank character starts a *command.
type CommandLine struct {
	Indent   string
	Star     int // offset of '*'
	Name     string
	NameSpan source.Span
	Args     string
	ArgsSpan source.Span
}

// Span covers the command from its '*' to the end of its arguments.
func (c CommandLine) Span() source.Span {
	end := c.NameSpan.End
	if c.Args != "" {
		end = c.ArgsSpan.End
	}
	return source.Span{Start: c.Star, End: end}
}

// ParseCommandLine recognises a command at the start of line, which begins
// at offset lineStart in its document. Arguments are trimmed of surrounding
// blanks; ArgsSpan points at the trimmed text.
func ParseCommandLine(line string, lineStart int) (CommandLine, bool) {
	m := commandLinePattern.FindStringSubmatchIndex(line)
	if m == nil {
		return CommandLine{}, false
	}
	cmd := CommandLine{
		Indent:   line[m[2]:m[3]],
		Star:     lineStart + m[3],
		Name:     line[m[4]:m[5]],
		NameSpan: source.Span{Start: lineStart + m[4], End: lineStart + m[5]},
	}
	rest := line[m[5]:]
	argStart := m[5] + (len(rest) - len(strings.TrimLeft(rest, " \t")))
	args := strings.TrimRight(line[argStart:], " \t\r")
	cmd.Args = args
	cmd.ArgsSpan = source.SpanAt(lineStart+argStart, len(args))
	return cmd, true
}

// SplitArgs splits command arguments on blanks.
func SplitArgs(args string, argsStart int) []Word {
	locs := argumentPattern.FindAllStringIndex(args, -1)
	out := make([]Word, 0, len(locs))
	for _, loc := range locs {
		out = append(out, Word{Text: args[loc[0]:loc[1]], Span: source.Span{Start: argsStart + loc[0], End: argsStart + loc[1]}})
	}
	return out
}

// FirstArg returns the first blank-separated argument and the trimmed rest.
func FirstArg(args string, argsStart int) (first Word, rest Word, ok bool) {
	loc := argumentPattern.FindStringIndex(args)
	if loc == nil {
		return Word{}, Word{}, false
	}
	first = Word{Text: args[loc[0]:loc[1]], Span: source.Span{Start: argsStart + loc[0], End: argsStart + loc[1]}}
	restStart := textutil.SkipSpaces(args, loc[1])
	rest = Word{Text: args[restStart:], Span: source.Span{Start: argsStart + restStart, End: argsStart + len(args)}}
	return first, rest, true
}

// InlineCommand is a known *command found after other text on a line.
type InlineCommand struct {
	Name string
	Span source.Span // covers '*' and the name
}

// ScanInlineCommands finds known commands embedded after text on a line.
func ScanInlineCommands(line string, lineStart int) []InlineCommand {
	var out []InlineCommand
	for _, m := range inlineCommandPattern.FindAllStringSubmatchIndex(line, -1) {
		name := line[m[4]:m[5]]
		if !IsCommand(name) {
			continue
		}
		out = append(out, InlineCommand{
			Name: name,
			Span: source.Span{Start: lineStart + m[2], End: lineStart + m[3]},
		})
	}
	return out
}

// ReplacementKind tells ${...} interpolations from @{...} multireplaces.
type ReplacementKind uint8

const (
	ReplaceVariable ReplacementKind = iota + 1
	ReplaceMultireplace
)

// Replacement is one ${...} or @{...} construct in scene text.
type Replacement struct {
	Kind         ReplacementKind
	Start        int // offset of '$' or '@'
	ContentStart int // offset just past '{'
	Content      string
	End          int // offset just past '}', or end of text when unterminated
	Unterminated bool
}

// ScanReplacements finds the top-level replacements in text, which begins
// at offset in its document. Replacements nested inside another are left
// to the caller. A backslash before '$' or '@' escapes it.
func ScanReplacements(text string, offset int) []Replacement {
	var out []Replacement
	pos := 0
	for pos < len(text) {
		m := replacementPattern.FindStringSubmatchIndex(text[pos:])
		if m == nil {
			break
		}
		start := pos + m[0]
		contentStart := pos + m[1]
		if textutil.IsEscaped(text, start) {
			pos = contentStart
			continue
		}
		r := Replacement{
			Kind:         ReplaceVariable,
			Start:        offset + start,
			ContentStart: offset + contentStart,
		}
		if text[pos+m[2]] == '@' {
			r.Kind = ReplaceMultireplace
		}
		closeAt := textutil.MatchingDelimiter(text, '{', '}', contentStart)
		if closeAt < 0 {
			r.Content = text[contentStart:]
			r.End = offset + len(text)
			r.Unterminated = true
			out = append(out, r)
			break
		}
		r.Content = text[contentStart:closeAt]
		r.End = offset + closeAt + 1
		out = append(out, r)
		pos = closeAt + 1
	}
	return out
}

// StyleKind identifies a house-style deviation.
type StyleKind uint8

const (
	StyleEllipsis StyleKind = iota + 1
	StyleEmDash
)

// StyleMatch is an ASCII stand-in for a typographic character.
type StyleMatch struct {
	Kind StyleKind
	Span source.Span
}

// ScanStyle finds runs of exactly three periods and exactly two hyphens.
func ScanStyle(line string, lineStart int) []StyleMatch {
	var out []StyleMatch
	for i := 0; i < len(line); {
		c := line[i]
		if c != '.' && c != '-' {
			i++
			continue
		}
		j := i
		for j < len(line) && line[j] == c {
			j++
		}
		switch {
		case c == '.' && j-i == 3:
			out = append(out, StyleMatch{Kind: StyleEllipsis, Span: source.Span{Start: lineStart + i, End: lineStart + j}})
		case c == '-' && j-i == 2:
			out = append(out, StyleMatch{Kind: StyleEmDash, Span: source.Span{Start: lineStart + i, End: lineStart + j}})
		}
		i = j
	}
	return out
}

// OptionText finds the #option text in a line body that may start with a
// parenthesised condition and further option-modifier commands, e.g.
// "(strength > 3) *hide_reuse #Lift the gate".
func OptionText(text string, textStart int) (Word, bool) {
	i := 0
	for i < len(text) {
		i = textutil.SkipSpaces(text, i)
		if i >= len(text) {
			break
		}
		switch text[i] {
		case '#':
			body := strings.TrimSpace(text[i+1:])
			if body == "" {
				return Word{}, false
			}
			at := i + 1 + strings.Index(text[i+1:], body)
			return Word{Text: body, Span: source.SpanAt(textStart+at, len(body))}, true
		case '(':
			closeAt := textutil.MatchingDelimiter(text, '(', ')', i+1)
			if closeAt < 0 {
				return Word{}, false
			}
			i = closeAt + 1
		case '*':
			j := i + 1
			for j < len(text) && isWordByte(text[j]) {
				j++
			}
			if !IsOptionModifier(text[i+1 : j]) {
				return Word{}, false
			}
			i = j
		default:
			return Word{}, false
		}
	}
	return Word{}, false
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
