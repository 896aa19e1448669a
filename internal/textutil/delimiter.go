// Package textutil holds the small scanners shared by the tokenizer, the
// indexer and the validator: delimiter matching and line boundaries.
package textutil

// IsEscaped reports whether the byte at i is preceded by a backslash.
func IsEscaped(text string, i int) bool {
	return i > 0 && i <= len(text) && text[i-1] == '\\'
}

// MatchingDelimiter scans text from start for the close delimiter that
// balances an already-consumed open delimiter. Delimiters preceded by a
// backslash never count. When open and close are the same byte (quotes) the
// first unescaped occurrence closes. It returns the offset of the closing
// delimiter, or -1 when the text runs out first.
func MatchingDelimiter(text string, open, close byte, start int) int {
	if start < 0 {
		start = 0
	}
	depth := 0
	for i := start; i < len(text); i++ {
		c := text[i]
		if c != open && c != close {
			continue
		}
		if IsEscaped(text, i) {
			continue
		}
		if c == close {
			if depth == 0 {
				return i
			}
			depth--
			continue
		}
		depth++
	}
	return -1
}

// ExtractToMatchingDelimiter returns the text between start and the matching
// close delimiter, or false when the delimiter is unbalanced.
func ExtractToMatchingDelimiter(text string, open, close byte, start int) (string, bool) {
	end := MatchingDelimiter(text, open, close, start)
	if end < 0 {
		return "", false
	}
	if start < 0 {
		start = 0
	}
	return text[start:end], true
}

// CloserFor returns the close delimiter paired with an open delimiter.
func CloserFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '{':
		return '}'
	case '[':
		return ']'
	}
	return open
}
