// Package indexer scans one document and records what it creates and
// references in an index.Index.
package indexer

import (
	"strings"

	"csls/internal/diag"
	"csls/internal/expr"
	"csls/internal/index"
	"csls/internal/language"
	"csls/internal/source"
	"csls/internal/textutil"
)

// IndexDocument scans doc and replaces its entries in idx.
func IndexDocument(doc *source.Document, idx *index.Index) *index.DocumentEntries {
	entries := Scan(doc)
	idx.Update(doc.URI, entries)
	return entries
}

// Scan indexes doc without touching any shared state.
func Scan(doc *source.Document) *index.DocumentEntries {
	s := &scanner{
		doc:     doc,
		entries: index.NewDocumentEntries(),
		startup: index.IsStartupFile(doc.URI),
	}
	if s.startup {
		s.entries.GlobalVariables = index.NewIdentifierIndex()
		s.entries.Achievements = index.NewIdentifierIndex()
	}
	s.run()
	s.entries.WordCount = language.CountWords(doc.Text)
	return s.entries
}

type creation struct {
	name string
	line int
	loc  source.Location
}

type gosubCall struct {
	label string
	loc   source.Location
}

type scanner struct {
	doc     *source.Document
	entries *index.DocumentEntries
	startup bool

	temps  []creation
	gosubs []gosubCall
}

func (s *scanner) run() {
	n := s.doc.LineCount()
	for line := 0; line < n; line++ {
		text := s.doc.LineText(line)
		start := s.doc.LineSpan(line).Start
		cmd, ok := language.ParseCommandLine(text, start)
		if !ok {
			s.sceneText(text, start)
			continue
		}
		switch cmd.Name {
		case "scene_list":
			line = s.sceneList(line, cmd)
		case "stat_chart":
			line = s.statChart(line, cmd)
		default:
			s.command(line, cmd)
		}
	}
	s.finishLabels()
	s.finishSubroutines()
}

func (s *scanner) loc(span source.Span) source.Location {
	return s.doc.LocationOf(span)
}

func (s *scanner) toEnd(line int) source.Range {
	return source.Range{
		Start: source.Position{Line: line},
		End:   s.doc.PositionAt(len(s.doc.Text)),
	}
}

func (s *scanner) errors(ds ...diag.Diagnostic) {
	s.entries.ParseErrors = append(s.entries.ParseErrors, ds...)
}

// expression tokenizes text and records the variables it reads. strict
// also keeps type errors; commands that take a list of values only keep
// parse errors.
func (s *scanner) expression(text string, at int, valueSetting, strict bool) *expr.Expression {
	e := expr.Tokenize(text, at, valueSetting)
	for _, v := range e.Variables() {
		s.reference(v.Text, v.Span())
	}
	s.errors(e.ParseErrors...)
	if strict {
		s.errors(e.ValidateErrors...)
	}
	return e
}

func (s *scanner) reference(name string, span source.Span) {
	s.entries.VariableReferences.Add(name, s.loc(span))
}

func (s *scanner) command(line int, cmd language.CommandLine) {
	args, argsAt := cmd.Args, cmd.ArgsSpan.Start
	switch cmd.Name {
	case "comment":
	case "create":
		if name, rest, ok := language.FirstArg(args, argsAt); ok {
			s.global(name)
			s.expression(rest.Text, rest.Span.Start, false, true)
		}
	case "create_array":
		s.array(args, argsAt, true)
	case "temp":
		if name, rest, ok := language.FirstArg(args, argsAt); ok {
			s.temp(line, name)
			s.expression(rest.Text, rest.Span.Start, false, true)
		}
	case "temp_array":
		s.array(args, argsAt, false)
		if name, _, ok := language.FirstArg(args, argsAt); ok {
			s.temp(line, name)
		}
	case "params":
		for _, w := range language.SplitArgs(args, argsAt) {
			s.temp(line, w)
		}
		s.entries.Scopes.ParamScopes = append(s.entries.Scopes.ParamScopes, s.toEnd(line))
	case "set", "setref":
		if target, rest, ok := language.FirstArg(args, argsAt); ok {
			s.expression(target.Text, target.Span.Start, false, false)
			s.expression(rest.Text, rest.Span.Start, cmd.Name == "set", true)
		}
	case "rand", "input_number", "input_text", "delete", "gotoref":
		s.expression(args, argsAt, false, false)
	case "print":
		s.expression(args, argsAt, false, true)
	case "if", "elseif", "elsif", "selectable_if":
		s.condition(args, argsAt)
	case "label":
		if name, _, ok := language.FirstArg(args, argsAt); ok {
			s.entries.Labels.Add(index.Label{Name: name.Text, Location: s.loc(name.Span)})
		}
	case "goto", "gosub", "goto_scene", "gosub_scene", "return":
		s.flow(cmd)
	case "achievement":
		if name, _, ok := language.FirstArg(args, argsAt); ok && s.startup {
			s.entries.Achievements.SetFirst(name.Text, s.loc(name.Span))
		}
	case "achieve":
		if name, _, ok := language.FirstArg(args, argsAt); ok {
			s.entries.AchievementReferences.Add(name.Text, s.loc(name.Span))
		}
	case "check_achievements":
		s.entries.Scopes.AchievementVarScopes = append(s.entries.Scopes.AchievementVarScopes, s.toEnd(line))
	default:
		s.sceneText(args, argsAt)
	}
}

func (s *scanner) global(name language.Word) {
	if !s.startup {
		return
	}
	s.entries.GlobalVariables.SetFirst(name.Text, s.loc(name.Span))
}

func (s *scanner) temp(line int, name language.Word) {
	loc := s.loc(name.Span)
	s.entries.LocalVariables.Add(name.Text, loc)
	s.temps = append(s.temps, creation{name: name.Text, line: line, loc: loc})
}

// array handles "*create_array name n [values...]" and its *temp_array
// twin. The array name and every element name are created at the name.
func (s *scanner) array(args string, at int, global bool) {
	name, rest, ok := language.FirstArg(args, at)
	if !ok {
		return
	}
	length, values, hasLen := language.FirstArg(rest.Text, rest.Span.Start)
	if global {
		s.global(name)
	}
	if hasLen {
		e := s.expression(length.Text, length.Span.Start, false, false)
		if n, ok := literalCount(e); ok {
			loc := s.loc(name.Span)
			for _, el := range language.ArrayElementNames(name.Text, n) {
				if global && s.startup {
					s.entries.GlobalVariables.SetFirst(el, loc)
				} else if !global {
					s.entries.LocalVariables.Add(el, loc)
				}
			}
		}
		s.expression(values.Text, values.Span.Start, false, false)
	}
}

func literalCount(e *expr.Expression) (int, bool) {
	if len(e.Tokens) != 1 || e.Tokens[0].Type != expr.TokenNumber {
		return 0, false
	}
	n := 0
	for _, c := range e.Tokens[0].Text {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
		if n > 10000 {
			return 0, false
		}
	}
	return n, true
}

// condition handles *if and friends. On an option line such as
// "*if (x) #Go" only the parenthesised part is the condition.
func (s *scanner) condition(args string, at int) {
	text := args
	if opt, ok := language.OptionText(args, at); ok && strings.HasPrefix(args, "(") {
		if closeAt := textutil.MatchingDelimiter(args, '(', ')', 1); closeAt >= 0 {
			text = args[:closeAt+1]
		}
		s.sceneText(opt.Text, opt.Span.Start)
	}
	e := s.expression(text, at, false, true)
	switch e.EvalType {
	case expr.EvalNumber, expr.EvalString, expr.EvalNumberChange:
		s.errors(diag.NewError(diag.ExpTypeMismatch, e.Span(), "Condition must be true or false"))
	}
}

func (s *scanner) flow(cmd language.CommandLine) {
	kind, _ := language.LookupFlowCommand(cmd.Name)
	ev := index.FlowControlEvent{
		Command:         kind,
		CommandLocation: s.loc(cmd.NameSpan),
	}
	args := language.SplitArgs(cmd.Args, cmd.ArgsSpan.Start)
	next := 0
	if kind.TargetsScene() && next < len(args) {
		scene := args[next]
		ev.Scene = scene.Text
		sceneLoc := s.loc(scene.Span)
		ev.SceneLocation = &sceneLoc
		s.interpolation(scene)
		next++
	}
	if kind != language.FlowReturn && next < len(args) {
		label := args[next]
		ev.Label = label.Text
		labelLoc := s.loc(label.Span)
		ev.LabelLocation = &labelLoc
		s.interpolation(label)
		next++
	}
	// Remaining words are arguments passed to the subroutine.
	if kind.IsSubroutineCall() && next < len(args) {
		from := args[next].Span.Start
		s.expression(cmd.Args[from-cmd.ArgsSpan.Start:], from, false, false)
	}
	if kind == language.FlowGosub && ev.Label != "" && !ev.LabelIsInterpolated() {
		s.gosubs = append(s.gosubs, gosubCall{label: ev.Label, loc: ev.CommandLocation})
	}
	s.entries.FlowControlEvents = append(s.entries.FlowControlEvents, ev)
}

// interpolation records the variables read by a computed name like
// "{next_scene}".
func (s *scanner) interpolation(w language.Word) {
	if strings.HasPrefix(w.Text, "{") {
		s.expression(w.Text, w.Span.Start, false, false)
	}
}

// sceneText records the ${...} and @{...} constructs of prose.
func (s *scanner) sceneText(text string, at int) {
	for _, r := range language.ScanReplacements(text, at) {
		switch r.Kind {
		case language.ReplaceVariable:
			if r.Unterminated {
				s.errors(diag.NewError(diag.ExpUnterminatedVarRef,
					source.Span{Start: r.Start, End: r.End}, "Missing close curly brace"))
			}
			s.expression(r.Content, r.ContentStart, false, true)
		case language.ReplaceMultireplace:
			rel := r.ContentStart - at
			m := expr.TokenizeMultireplace(text[rel:], r.ContentStart)
			for _, v := range m.TestExpression.Variables() {
				s.reference(v.Text, v.Span())
			}
			s.errors(m.Errors()...)
			s.errors(expr.ValidateMultireplace(m, r.Start)...)
			for _, opt := range m.Body {
				s.optionText(opt)
			}
		}
	}
}

// optionText records the ${...} references inside a multireplace option.
// Nested multireplaces are reported by ValidateMultireplace.
func (s *scanner) optionText(opt expr.Subtext) {
	for _, r := range language.ScanReplacements(opt.Text, opt.GlobalIndex) {
		if r.Kind == language.ReplaceVariable {
			e := expr.Tokenize(r.Content, r.ContentStart, false)
			for _, v := range e.Variables() {
				s.reference(v.Text, v.Span())
			}
			s.errors(e.Errors()...)
		}
	}
}

// sceneList reads the indented block under *scene_list and returns the
// last line it consumed.
func (s *scanner) sceneList(line int, cmd language.CommandLine) int {
	var scenes []string
	last := line
	for next := line + 1; next < s.doc.LineCount(); next++ {
		text := s.doc.LineText(next)
		if textutil.IsBlank(text) {
			continue
		}
		if textutil.IndentWidth(text) <= len(cmd.Indent) {
			break
		}
		last = next
		name := strings.TrimSpace(text)
		// "$ scene" and "$purchase scene" mark purchasable scenes.
		if strings.HasPrefix(name, "$") {
			if i := strings.IndexAny(name, " \t"); i >= 0 {
				name = strings.TrimSpace(name[i:])
			}
		}
		if name != "" {
			scenes = append(scenes, name)
		}
	}
	if s.startup {
		s.entries.SceneList = append(s.entries.SceneList, scenes...)
	}
	return last
}

// statChart reads the indented block under *stat_chart. Entries name the
// variable they display: "text strength", "percent morale Morale",
// "opposed_pair honesty".
func (s *scanner) statChart(line int, cmd language.CommandLine) int {
	last := line
	for next := line + 1; next < s.doc.LineCount(); next++ {
		text := s.doc.LineText(next)
		if textutil.IsBlank(text) {
			continue
		}
		if textutil.IndentWidth(text) <= len(cmd.Indent) {
			break
		}
		last = next
		start := s.doc.LineSpan(next).Start
		words := language.SplitArgs(text, start)
		if len(words) < 2 {
			continue
		}
		switch strings.ToLower(words[0].Text) {
		case "text", "percent", "opposed_pair":
			s.expression(words[1].Text, words[1].Span.Start, false, false)
		}
	}
	return last
}

// finishLabels gives each label the block up to the next label.
func (s *scanner) finishLabels() {
	labels := s.entries.Labels.Labels()
	for i := range labels {
		end := s.doc.PositionAt(len(s.doc.Text))
		if i+1 < len(labels) {
			nextLine := labels[i+1].Location.Range.Start.Line
			prev := nextLine - 1
			if prev < labels[i].Location.Range.Start.Line {
				prev = labels[i].Location.Range.Start.Line
			}
			end = s.doc.PositionAt(s.doc.LineSpan(prev).End)
		}
		scope := source.Range{
			Start: source.Position{Line: labels[i].Location.Range.Start.Line},
			End:   end,
		}
		labels[i].Scope = &scope
	}
	rebuilt := index.NewLabelIndex()
	for _, l := range labels {
		rebuilt.Add(l)
	}
	s.entries.Labels = rebuilt
}

// finishSubroutines records, for every variable created inside a
// subroutine, the first *gosub that reaches it. That call is where the
// variable effectively comes into existence.
func (s *scanner) finishSubroutines() {
	for _, call := range s.gosubs {
		label, ok := s.entries.Labels.Get(call.label)
		if !ok || label.Scope == nil {
			continue
		}
		for _, c := range s.temps {
			if c.line < label.Scope.Start.Line || c.line > label.Scope.End.Line {
				continue
			}
			s.entries.SubroutineLocalVariables.SetFirst(c.name, call.loc)
		}
	}
}
