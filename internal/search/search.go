// Package search resolves definitions, enumerates references and builds
// rename edits from an index.Index. Misses are empty results, never errors.
package search

import (
	"sort"

	"csls/internal/index"
	"csls/internal/language"
	"csls/internal/source"
)

// SymbolKind classifies a resolved symbol or a reference to one.
type SymbolKind uint8

const (
	SymbolNone SymbolKind = iota
	SymbolLocalVariable
	SymbolGlobalVariable
	SymbolLabel
	SymbolAchievement
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolLocalVariable:
		return "local variable"
	case SymbolGlobalVariable:
		return "global variable"
	case SymbolLabel:
		return "label"
	case SymbolAchievement:
		return "achievement"
	}
	return "none"
}

// Definition is where a symbol is created. The zero value means nothing
// was found.
type Definition struct {
	Kind     SymbolKind
	Name     string
	Location source.Location
}

func (d Definition) Found() bool {
	return d.Kind != SymbolNone
}

// Reference is one occurrence of a symbol. Kind tells how the occurrence
// refers to it: a choice_achieved_ variable referring to an achievement is
// a SymbolLocalVariable reference.
type Reference struct {
	Kind     SymbolKind
	Location source.Location
}

// FindDefinition resolves the symbol at pos in document uri.
func FindDefinition(idx *index.Index, uri string, pos source.Position) Definition {
	startup := idx.IsStartupFileURI(uri)
	variableKind := SymbolLocalVariable
	if startup {
		variableKind = SymbolGlobalVariable
	}

	if name, loc, ok := idx.LocalVariables(uri).Find(uri, pos); ok {
		return Definition{Kind: variableKind, Name: name, Location: loc}
	}
	if startup {
		if name, loc, ok := idx.GlobalVariables().Find(uri, pos); ok {
			return Definition{Kind: SymbolGlobalVariable, Name: name, Location: loc}
		}
	}
	if name, _, ok := idx.VariableReferences(uri).Find(uri, pos); ok {
		return resolveVariable(idx, uri, name)
	}
	if l, ok := idx.Labels(uri).Find(pos); ok {
		return Definition{Kind: SymbolLabel, Name: l.Name, Location: l.Location}
	}
	for _, ev := range idx.FlowControlEvents(uri) {
		if ev.LabelLocation == nil || !ev.LabelLocation.Range.Contains(pos) {
			continue
		}
		if loc, ok := FindLabelLocation(idx, uri, ev); ok {
			return Definition{Kind: SymbolLabel, Name: ev.Label, Location: loc}
		}
		return Definition{}
	}
	if name, loc, ok := idx.Achievements().Find(uri, pos); ok {
		return Definition{Kind: SymbolAchievement, Name: name, Location: loc}
	}
	if name, _, ok := idx.AchievementReferences(uri).Find(uri, pos); ok {
		return achievement(idx, name)
	}
	return Definition{}
}

// resolveVariable applies the shadowing order: a variable created in this
// document, whether directly or inside a subroutine, wins over a global.
// Unresolved choice_achieved_ names resolve to their achievement.
func resolveVariable(idx *index.Index, uri, name string) Definition {
	locals := idx.LocalVariables(uri)
	kind := SymbolLocalVariable
	if idx.IsStartupFileURI(uri) {
		kind = SymbolGlobalVariable
	}
	if idx.SubroutineLocalVariables(uri).Has(name) || locals.Has(name) {
		if loc, ok := locals.First(name); ok {
			return Definition{Kind: kind, Name: name, Location: loc}
		}
	}
	if loc, ok := idx.GlobalVariables().Get(name); ok {
		return Definition{Kind: SymbolGlobalVariable, Name: name, Location: loc}
	}
	if codename, ok := language.AchievementCodename(name); ok {
		return achievement(idx, codename)
	}
	return Definition{}
}

func achievement(idx *index.Index, codename string) Definition {
	loc, ok := idx.Achievements().Get(codename)
	if !ok {
		return Definition{}
	}
	return Definition{Kind: SymbolAchievement, Name: codename, Location: loc}
}

// FindLabelLocation resolves the label an event jumps to: in uri itself
// when the event names no scene, otherwise in the named scene. Computed
// names cannot be resolved.
func FindLabelLocation(idx *index.Index, uri string, ev index.FlowControlEvent) (source.Location, bool) {
	if ev.Label == "" || ev.LabelIsInterpolated() {
		return source.Location{}, false
	}
	target := uri
	if ev.Scene != "" {
		if ev.SceneIsInterpolated() {
			return source.Location{}, false
		}
		target = idx.SceneURI(ev.Scene)
		if target == "" {
			return source.Location{}, false
		}
	}
	l, ok := idx.Labels(target).Get(ev.Label)
	if !ok {
		return source.Location{}, false
	}
	return l.Location, true
}

// FindReferences lists the occurrences of the symbol at pos. With
// includeDeclaration the definition comes last. It returns nil when the
// symbol is unknown or never referenced.
func FindReferences(idx *index.Index, uri string, pos source.Position, includeDeclaration bool) []Reference {
	def := FindDefinition(idx, uri, pos)
	if !def.Found() {
		return nil
	}
	var refs []Reference
	switch def.Kind {
	case SymbolLocalVariable:
		for _, loc := range idx.VariableReferences(def.Location.URI).Get(def.Name) {
			refs = append(refs, Reference{Kind: SymbolLocalVariable, Location: loc})
		}
	case SymbolGlobalVariable:
		refs = globalReferences(idx, def.Name)
	case SymbolAchievement:
		refs = achievementReferences(idx, def.Name)
	case SymbolLabel:
		refs = labelReferences(idx, def.Location)
	}
	if len(refs) == 0 {
		return nil
	}
	if includeDeclaration {
		if def.Kind == SymbolLocalVariable {
			refs = append(refs, redeclarations(idx, def)...)
		}
		refs = append(refs, Reference{Kind: def.Kind, Location: def.Location})
	}
	return refs
}

// redeclarations lists the other *temp lines in the definition's scene
// that create the same name.
func redeclarations(idx *index.Index, def Definition) []Reference {
	var refs []Reference
	for _, loc := range idx.LocalVariables(def.Location.URI).Get(def.Name) {
		if loc.Equal(def.Location) {
			continue
		}
		refs = append(refs, Reference{Kind: SymbolLocalVariable, Location: loc})
	}
	return refs
}

// globalReferences skips documents where a local of the same name shadows
// the global. The startup document's own creations are globals.
func globalReferences(idx *index.Index, name string) []Reference {
	var refs []Reference
	for _, uri := range idx.URIs() {
		if !idx.IsStartupFileURI(uri) && shadowed(idx, uri, name) {
			continue
		}
		for _, loc := range idx.VariableReferences(uri).Get(name) {
			refs = append(refs, Reference{Kind: SymbolGlobalVariable, Location: loc})
		}
	}
	return refs
}

func shadowed(idx *index.Index, uri, name string) bool {
	return idx.LocalVariables(uri).Has(name) || idx.SubroutineLocalVariables(uri).Has(name)
}

func achievementReferences(idx *index.Index, codename string) []Reference {
	variable := language.AchievementVariable(codename)
	var refs []Reference
	for _, uri := range idx.URIs() {
		for _, loc := range idx.AchievementReferences(uri).Get(codename) {
			refs = append(refs, Reference{Kind: SymbolAchievement, Location: loc})
		}
		for _, loc := range idx.VariableReferences(uri).Get(variable) {
			refs = append(refs, Reference{Kind: SymbolLocalVariable, Location: loc})
		}
	}
	return refs
}

func labelReferences(idx *index.Index, def source.Location) []Reference {
	var refs []Reference
	for _, uri := range idx.URIs() {
		for _, ev := range idx.FlowControlEvents(uri) {
			if ev.LabelLocation == nil {
				continue
			}
			loc, ok := FindLabelLocation(idx, uri, ev)
			if !ok || !loc.Equal(def) {
				continue
			}
			refs = append(refs, Reference{Kind: SymbolLabel, Location: *ev.LabelLocation})
		}
	}
	return refs
}

// TextEdit replaces the text of Range.
type TextEdit struct {
	Range   source.Range `json:"range"`
	NewText string       `json:"newText"`
}

// WorkspaceEdit groups edits by document URI.
type WorkspaceEdit struct {
	Changes map[string][]TextEdit `json:"changes"`
}

// Len returns the total number of edits.
func (w *WorkspaceEdit) Len() int {
	if w == nil {
		return 0
	}
	n := 0
	for _, edits := range w.Changes {
		n += len(edits)
	}
	return n
}

// GenerateRenames builds the edits renaming the symbol at pos to newName.
// Renaming an achievement rewrites its choice_achieved_ variable
// references to the matching variable name. It returns nil when there is
// nothing to rename.
func GenerateRenames(idx *index.Index, uri string, pos source.Position, newName string) *WorkspaceEdit {
	def := FindDefinition(idx, uri, pos)
	refs := FindReferences(idx, uri, pos, true)
	if len(refs) == 0 {
		return nil
	}
	edit := &WorkspaceEdit{Changes: make(map[string][]TextEdit)}
	for _, ref := range refs {
		text := newName
		if def.Kind == SymbolAchievement && ref.Kind == SymbolLocalVariable {
			text = language.AchievementVariable(newName)
		}
		edit.Changes[ref.Location.URI] = append(edit.Changes[ref.Location.URI], TextEdit{
			Range:   ref.Location.Range,
			NewText: text,
		})
	}
	for uri := range edit.Changes {
		edits := edit.Changes[uri]
		sort.SliceStable(edits, func(i, j int) bool {
			return edits[i].Range.Start.Before(edits[j].Range.Start)
		})
	}
	return edit
}
