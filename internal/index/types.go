package index

import (
	"sort"
	"strings"

	"csls/internal/diag"
	"csls/internal/language"
	"csls/internal/source"
)

// Label is a *label definition. Scope, when set, covers the block the label
// opens, up to the next label or the end of the document.
type Label struct {
	Name     string          `json:"name"`
	Location source.Location `json:"location"`
	Scope    *source.Range   `json:"scope,omitempty"`
}

func sortLabels(ls []Label) {
	sort.Slice(ls, func(i, j int) bool {
		return source.CompareLocations(ls[i].Location, ls[j].Location) < 0
	})
}

// FlowControlEvent is one goto, gosub, goto_scene, gosub_scene or return.
// An empty Scene means the event stays in its own document.
type FlowControlEvent struct {
	Command         language.FlowCommand `json:"command"`
	CommandLocation source.Location      `json:"commandLocation"`
	Label           string               `json:"label,omitempty"`
	LabelLocation   *source.Location     `json:"labelLocation,omitempty"`
	Scene           string               `json:"scene,omitempty"`
	SceneLocation   *source.Location     `json:"sceneLocation,omitempty"`
}

// SceneIsInterpolated reports whether the scene name is computed at run
// time, as in "*goto_scene {next}".
func (e FlowControlEvent) SceneIsInterpolated() bool {
	return strings.HasPrefix(e.Scene, "{")
}

// LabelIsInterpolated reports whether the label name is computed.
func (e FlowControlEvent) LabelIsInterpolated() bool {
	return strings.HasPrefix(e.Label, "{")
}

// DocumentScopes lists the ranges where implicitly provided variables may
// be used without a creation.
type DocumentScopes struct {
	// After *check_achievements every choice_achieved_ variable is set.
	AchievementVarScopes []source.Range `json:"achievementVarScopes,omitempty"`
	// After *params the param_ variables exist.
	ParamScopes []source.Range `json:"paramScopes,omitempty"`
}

// InAchievementScope reports whether pos lies in any achievement scope.
func (s DocumentScopes) InAchievementScope(pos source.Position) bool {
	return inAny(s.AchievementVarScopes, pos)
}

// InParamScope reports whether pos lies in any param scope.
func (s DocumentScopes) InParamScope(pos source.Position) bool {
	return inAny(s.ParamScopes, pos)
}

func inAny(ranges []source.Range, pos source.Position) bool {
	for _, r := range ranges {
		if r.Contains(pos) {
			return true
		}
	}
	return false
}

// DocumentEntries is everything indexing one document produces.
type DocumentEntries struct {
	WordCount                int
	LocalVariables           *MultiIndex
	SubroutineLocalVariables *IdentifierIndex
	VariableReferences       *MultiIndex
	Labels                   *LabelIndex
	FlowControlEvents        []FlowControlEvent
	AchievementReferences    *MultiIndex
	Scopes                   DocumentScopes
	ParseErrors              []diag.Diagnostic

	// Set only for the startup document.
	GlobalVariables *IdentifierIndex
	Achievements    *IdentifierIndex
	SceneList       []string
}

// NewDocumentEntries returns entries with every index allocated.
func NewDocumentEntries() *DocumentEntries {
	return &DocumentEntries{
		LocalVariables:           NewMultiIndex(),
		SubroutineLocalVariables: NewIdentifierIndex(),
		VariableReferences:       NewMultiIndex(),
		Labels:                   NewLabelIndex(),
		AchievementReferences:    NewMultiIndex(),
	}
}
