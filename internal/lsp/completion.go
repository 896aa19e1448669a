package lsp

import (
	"sort"
	"strings"

	"csls/internal/index"
	"csls/internal/language"
	"csls/internal/source"
	"csls/internal/textutil"
)

const (
	completionItemKindVariable   = 6
	completionItemKindKeyword    = 14
	completionItemKindFile       = 17
	completionItemKindReference  = 18
	completionItemKindEnumMember = 20
	completionItemKindConstant   = 21
)

// Commands whose arguments are expressions.
var expressionCommands = map[string]bool{
	"set": true, "if": true, "elseif": true, "elsif": true, "selectable_if": true,
	"print": true, "temp": true, "input_text": true, "input_number": true,
	"rand": true, "setref": true, "delete": true,
}

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params completionParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	doc, idx, ok := s.document(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, completionList{Items: []completionItem{}})
	}
	items := buildCompletion(doc, idx, toPosition(params.Position))
	if items == nil {
		items = []completionItem{}
	}
	return s.sendResponse(msg.ID, completionList{Items: items})
}

// buildCompletion proposes commands after a leading '*', labels and scenes
// after flow commands, achievements after *achieve and variables inside
// expressions and {} replacements.
func buildCompletion(doc *source.Document, idx *index.Index, pos source.Position) []completionItem {
	lineSpan := doc.LineSpan(pos.Line)
	cursor := doc.OffsetAt(pos)
	before := doc.Text[lineSpan.Start:cursor]
	word := trailingWord(before)

	if open := strings.LastIndexByte(before, '{'); open >= 0 && open > strings.LastIndexByte(before, '}') {
		return variableCompletions(doc, idx, word)
	}

	trimmed := before[len(textutil.Indentation(before)):]
	if !strings.HasPrefix(trimmed, "*") {
		return nil
	}
	body := trimmed[1:]
	name, args, hasArgs := strings.Cut(body, " ")
	if !hasArgs {
		return commandCompletions(name)
	}
	argIndex := len(strings.Fields(args))
	if word != "" {
		argIndex--
	}

	if flow, ok := language.LookupFlowCommand(name); ok {
		if flow.TargetsScene() {
			if argIndex == 0 {
				return sceneCompletions(idx, word)
			}
			if argIndex == 1 {
				fields := strings.Fields(args)
				return labelCompletions(idx, idx.SceneURI(fields[0]), word)
			}
			return nil
		}
		if argIndex == 0 {
			return labelCompletions(idx, doc.URI, word)
		}
		return nil
	}
	switch {
	case name == "achieve" && argIndex == 0:
		return namedCompletions(idx.Achievements().Names(), word, completionItemKindEnumMember, "achievement")
	case expressionCommands[name]:
		return variableCompletions(doc, idx, word)
	}
	return nil
}

func trailingWord(text string) string {
	i := len(text)
	for i > 0 {
		c := text[i-1]
		if c != '_' && !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') {
			break
		}
		i--
	}
	return text[i:]
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func commandCompletions(prefix string) []completionItem {
	var out []completionItem
	for _, name := range language.Commands() {
		if hasPrefixFold(name, prefix) {
			out = append(out, completionItem{Label: name, Kind: completionItemKindKeyword, Detail: "command"})
		}
	}
	return out
}

func sceneCompletions(idx *index.Index, prefix string) []completionItem {
	seen := make(map[string]bool)
	var names []string
	for _, list := range [][]string{idx.AllReferencedScenes(), idx.IndexedScenes()} {
		for _, scene := range list {
			key := strings.ToLower(scene)
			if seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, scene)
		}
	}
	sort.Strings(names)
	return namedCompletions(names, prefix, completionItemKindFile, "scene")
}

func labelCompletions(idx *index.Index, uri, prefix string) []completionItem {
	if uri == "" {
		return nil
	}
	var names []string
	for _, l := range idx.Labels(uri).Labels() {
		names = append(names, l.Name)
	}
	return namedCompletions(names, prefix, completionItemKindReference, "label in "+source.FileName(uri))
}

func variableCompletions(doc *source.Document, idx *index.Index, prefix string) []completionItem {
	var out []completionItem
	seen := make(map[string]bool)
	add := func(names []string, kind int, detail string) {
		for _, n := range names {
			key := strings.ToLower(n)
			if seen[key] || !hasPrefixFold(n, prefix) {
				continue
			}
			seen[key] = true
			out = append(out, completionItem{Label: n, Kind: kind, Detail: detail})
		}
	}
	add(idx.LocalVariables(doc.URI).Names(), completionItemKindVariable, "local variable")
	add(idx.GlobalVariables().Names(), completionItemKindVariable, "global variable")
	var achieved []string
	for _, a := range idx.Achievements().Names() {
		achieved = append(achieved, language.AchievementVariable(a))
	}
	add(achieved, completionItemKindConstant, "achievement")
	add(language.BuiltinVariables(), completionItemKindConstant, "built-in")
	return out
}

func namedCompletions(names []string, prefix string, kind int, detail string) []completionItem {
	var out []completionItem
	for _, n := range names {
		if hasPrefixFold(n, prefix) {
			out = append(out, completionItem{Label: n, Kind: kind, Detail: detail})
		}
	}
	return out
}
