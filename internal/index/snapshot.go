package index

import (
	"csls/internal/diag"
	"csls/internal/source"
)

// Snapshot is a serialisable point-in-time copy of an Index.
type Snapshot struct {
	Startup        string                     `json:"startup,omitempty"`
	ProjectIndexed bool                       `json:"projectIndexed"`
	SceneList      []string                   `json:"sceneList,omitempty"`
	Globals        map[string]source.Location `json:"globals,omitempty"`
	Achievements   map[string]source.Location `json:"achievements,omitempty"`
	Documents      []DocumentSnapshot         `json:"documents"`
}

// DocumentSnapshot holds the entries of one document.
type DocumentSnapshot struct {
	URI                      string                       `json:"uri"`
	Scene                    string                       `json:"scene"`
	WordCount                int                          `json:"wordCount"`
	LocalVariables           map[string][]source.Location `json:"localVariables,omitempty"`
	SubroutineLocalVariables map[string]source.Location   `json:"subroutineLocalVariables,omitempty"`
	VariableReferences       map[string][]source.Location `json:"variableReferences,omitempty"`
	Labels                   []Label                      `json:"labels,omitempty"`
	FlowControlEvents        []FlowControlEvent           `json:"flowControlEvents,omitempty"`
	AchievementReferences    map[string][]source.Location `json:"achievementReferences,omitempty"`
	Scopes                   DocumentScopes               `json:"scopes"`
	ParseErrors              []diag.Diagnostic            `json:"parseErrors,omitempty"`
}

// Snapshot copies the whole index under one read lock.
func (idx *Index) Snapshot() *Snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	s := &Snapshot{
		Startup:        idx.startupURI,
		ProjectIndexed: idx.projectIndexed,
		SceneList:      append([]string(nil), idx.sceneList...),
		Globals:        idx.globals.Map(),
		Achievements:   idx.achievements.Map(),
	}
	for _, uri := range idx.urisLocked() {
		s.Documents = append(s.Documents, DocumentSnapshot{
			URI:                      uri,
			Scene:                    source.SceneName(uri),
			WordCount:                idx.wordCounts[uri],
			LocalVariables:           idx.locals[uri].Map(),
			SubroutineLocalVariables: idx.subroutineLocals[uri].Map(),
			VariableReferences:       idx.references[uri].Map(),
			Labels:                   idx.labels[uri].Labels(),
			FlowControlEvents:        append([]FlowControlEvent(nil), idx.flowControl[uri]...),
			AchievementReferences:    idx.achievementRefs[uri].Map(),
			Scopes:                   idx.scopes[uri],
			ParseErrors:              append([]diag.Diagnostic(nil), idx.parseErrors[uri]...),
		})
	}
	return s
}
