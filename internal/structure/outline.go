// Package structure derives the outline of a scene: labels, choice blocks
// with their options, and the variables the scene creates.
package structure

import (
	"sort"
	"strings"

	"csls/internal/index"
	"csls/internal/language"
	"csls/internal/source"
	"csls/internal/textutil"
)

// Kind classifies an outline entry.
type Kind uint8

const (
	KindLabel Kind = iota + 1
	KindChoice
	KindOption
	KindLocalVariable
	KindGlobalVariable
)

func (k Kind) String() string {
	switch k {
	case KindLabel:
		return "label"
	case KindChoice:
		return "choice"
	case KindOption:
		return "option"
	case KindLocalVariable:
		return "local variable"
	case KindGlobalVariable:
		return "global variable"
	}
	return "unknown"
}

// Symbol is one outline entry.
type Symbol struct {
	Name     string          `json:"name"`
	Kind     Kind            `json:"kind"`
	Location source.Location `json:"location"`
}

const summaryWidth = 60

// Outline lists the labels, choice blocks, options and variables of doc in
// document order. Labels and variables come from idx; choices are read
// from the text.
func Outline(doc *source.Document, idx *index.Index) []Symbol {
	var out []Symbol
	for _, l := range idx.Labels(doc.URI).Labels() {
		out = append(out, Symbol{Name: l.Name, Kind: KindLabel, Location: l.Location})
	}
	for _, b := range Choices(doc) {
		out = append(out, Symbol{Name: b.Summary(), Kind: KindChoice, Location: doc.LocationOf(b.Command)})
		for _, opt := range b.Options {
			out = append(out, Symbol{Name: opt.Text, Kind: KindOption, Location: doc.LocationOf(opt.Span)})
		}
	}
	kind := KindLocalVariable
	if idx.IsStartupFileURI(doc.URI) {
		kind = KindGlobalVariable
		idx.GlobalVariables().Range(func(name string, loc source.Location) bool {
			out = append(out, Symbol{Name: name, Kind: KindGlobalVariable, Location: loc})
			return true
		})
	}
	idx.LocalVariables(doc.URI).Range(func(name string, locs []source.Location) bool {
		if len(locs) > 0 {
			out = append(out, Symbol{Name: name, Kind: kind, Location: locs[0]})
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		return source.CompareLocations(out[i].Location, out[j].Location) < 0
	})
	return out
}

// ChoiceBlock is a *choice or *fake_choice and its direct options.
type ChoiceBlock struct {
	Name    string // "choice" or "fake_choice"
	Command source.Span
	Options []language.Word

	StartLine int
	EndLine   int // last line of the block body

}

// Summary is a one-line description of the block.
func (b ChoiceBlock) Summary() string {
	texts := make([]string, 0, len(b.Options))
	for _, o := range b.Options {
		texts = append(texts, o.Text)
	}
	return textutil.Summarize("*"+b.Name+": "+strings.Join(texts, " | "), summaryWidth)
}

// Choices finds every choice block in doc. Options are the #option lines
// at the first indentation level below the command.
func Choices(doc *source.Document) []ChoiceBlock {
	var out []ChoiceBlock
	n := doc.LineCount()
	for line := 0; line < n; line++ {
		text := doc.LineText(line)
		cmd, ok := language.ParseCommandLine(text, doc.LineSpan(line).Start)
		if !ok || (cmd.Name != "choice" && cmd.Name != "fake_choice") {
			continue
		}
		b := ChoiceBlock{
			Name:      cmd.Name,
			Command:   source.Span{Start: cmd.Star, End: cmd.NameSpan.End},
			StartLine: line,
			EndLine:   line,
		}
		base := len(cmd.Indent)
		optionIndent := -1
		for next := line + 1; next < n; next++ {
			body := doc.LineText(next)
			if textutil.IsBlank(body) {
				continue
			}
			w := textutil.IndentWidth(body)
			if w <= base {
				break
			}
			b.EndLine = next
			if optionIndent < 0 {
				optionIndent = w
			}
			if w != optionIndent {
				continue
			}
			if opt, ok := optionOnLine(body, doc.LineSpan(next).Start); ok {
				b.Options = append(b.Options, opt)
			}
		}
		out = append(out, b)
	}
	return out
}

func optionOnLine(line string, start int) (language.Word, bool) {
	ws := textutil.Indentation(line)
	rest := line[len(ws):]
	if strings.HasPrefix(rest, "#") {
		return language.OptionText(rest, start+len(ws))
	}
	cmd, ok := language.ParseCommandLine(line, start)
	if !ok || !language.IsOptionModifier(cmd.Name) {
		return language.Word{}, false
	}
	return language.OptionText(cmd.Args, cmd.ArgsSpan.Start)
}
