package language

import (
	"strings"
	"unicode"
)

// CountWords counts the words a player would read in scene text: prose
// lines and #option text. Comments and other commands do not count, a
// ${...} interpolation counts as one word and a multireplace counts as its
// first option.
func CountWords(text string) int {
	total := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch trimmed[0] {
		case '*':
			cmd, ok := ParseCommandLine(trimmed, 0)
			if !ok || !IsOptionModifier(cmd.Name) {
				continue
			}
			if opt, ok := OptionText(cmd.Args, 0); ok {
				total += countProse(opt.Text)
			}
		case '#':
			total += countProse(trimmed[1:])
		default:
			total += countProse(trimmed)
		}
	}
	return total
}

func countProse(text string) int {
	var b strings.Builder
	last := 0
	for _, r := range ScanReplacements(text, 0) {
		b.WriteString(text[last:r.Start])
		switch r.Kind {
		case ReplaceVariable:
			b.WriteString(" x ")
		case ReplaceMultireplace:
			b.WriteString(" ")
			b.WriteString(firstOption(r.Content))
			b.WriteString(" ")
		}
		last = r.End
	}
	b.WriteString(text[last:])

	count := 0
	for _, field := range strings.Fields(b.String()) {
		if strings.IndexFunc(field, isWordRune) >= 0 {
			count++
		}
	}
	return count
}

func firstOption(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	// Drop the test: a parenthesised expression or a bare word.
	if content[0] == '(' {
		depth := 0
		for i := 0; i < len(content); i++ {
			switch content[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 {
				content = content[i+1:]
				break
			}
		}
	} else if i := strings.IndexFunc(content, unicode.IsSpace); i >= 0 {
		content = content[i:]
	} else {
		return ""
	}
	if i := strings.IndexByte(content, '|'); i >= 0 {
		content = content[:i]
	}
	return content
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
