package index

import (
	"sort"
	"strings"
	"sync"

	"csls/internal/cimap"
	"csls/internal/diag"
	"csls/internal/source"
)

// StartupFileName names the document that owns globals, achievements and
// the scene list.
const StartupFileName = "startup" + source.SceneExt

// IsStartupFile reports whether uri names a startup document.
func IsStartupFile(uri string) bool {
	return strings.EqualFold(source.FileName(uri), StartupFileName)
}

// Index is the project symbol table. The zero value is not usable; call New.
//
// Setters replace one category of one document. Getters never return nil
// for index-valued categories and never fail for unknown documents. Stored
// indexes are never mutated after they are set, so callers may keep what a
// getter returns, but must not modify it.
type Index struct {
	mu sync.RWMutex

	startupURI     string
	globals        *IdentifierIndex
	achievements   *IdentifierIndex
	sceneList      []string
	projectIndexed bool

	wordCounts       map[string]int
	locals           map[string]*MultiIndex
	subroutineLocals map[string]*IdentifierIndex
	references       map[string]*MultiIndex
	labels           map[string]*LabelIndex
	flowControl      map[string][]FlowControlEvent
	achievementRefs  map[string]*MultiIndex
	scopes           map[string]DocumentScopes
	parseErrors      map[string][]diag.Diagnostic
}

func New() *Index {
	return &Index{
		globals:          NewIdentifierIndex(),
		achievements:     NewIdentifierIndex(),
		wordCounts:       make(map[string]int),
		locals:           make(map[string]*MultiIndex),
		subroutineLocals: make(map[string]*IdentifierIndex),
		references:       make(map[string]*MultiIndex),
		labels:           make(map[string]*LabelIndex),
		flowControl:      make(map[string][]FlowControlEvent),
		achievementRefs:  make(map[string]*MultiIndex),
		scopes:           make(map[string]DocumentScopes),
		parseErrors:      make(map[string][]diag.Diagnostic),
	}
}

// Update replaces every category of one document at once. Entries of a
// startup document also replace the project-wide categories.
func (idx *Index) Update(uri string, e *DocumentEntries) {
	if e == nil {
		idx.RemoveDocument(uri)
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.wordCounts[uri] = e.WordCount
	idx.locals[uri] = unionCopy(e.LocalVariables)
	idx.subroutineLocals[uri] = orEmpty(e.SubroutineLocalVariables)
	idx.references[uri] = unionCopy(e.VariableReferences)
	idx.labels[uri] = orEmptyLabels(e.Labels)
	idx.flowControl[uri] = append([]FlowControlEvent(nil), e.FlowControlEvents...)
	idx.achievementRefs[uri] = unionCopy(e.AchievementReferences)
	idx.scopes[uri] = e.Scopes
	idx.parseErrors[uri] = append([]diag.Diagnostic(nil), e.ParseErrors...)
	if e.GlobalVariables != nil || IsStartupFile(uri) {
		idx.setStartupLocked(uri, e.GlobalVariables)
		idx.achievements = orEmpty(e.Achievements)
		idx.sceneList = append([]string(nil), e.SceneList...)
	}
}

func unionCopy(m *MultiIndex) *MultiIndex {
	out := NewMultiIndex()
	out.Union(m)
	return out
}

func orEmpty(m *IdentifierIndex) *IdentifierIndex {
	if m == nil {
		return NewIdentifierIndex()
	}
	return m
}

func orEmptyLabels(m *LabelIndex) *LabelIndex {
	if m == nil {
		return NewLabelIndex()
	}
	return m
}

func (idx *Index) setStartupLocked(uri string, globals *IdentifierIndex) {
	idx.startupURI = uri
	idx.globals = orEmpty(globals)
}

// SetGlobalVariables registers uri as the startup document and replaces
// the global variables.
func (idx *Index) SetGlobalVariables(uri string, globals *IdentifierIndex) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.setStartupLocked(uri, globals)
}

func (idx *Index) GlobalVariables() *IdentifierIndex {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.globals
}

func (idx *Index) SetAchievements(achievements *IdentifierIndex) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.achievements = orEmpty(achievements)
}

func (idx *Index) Achievements() *IdentifierIndex {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.achievements
}

func (idx *Index) SetSceneList(scenes []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.sceneList = append([]string(nil), scenes...)
}

// SceneList returns the scenes declared by *scene_list.
func (idx *Index) SceneList() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]string(nil), idx.sceneList...)
}

func (idx *Index) SetWordCount(uri string, n int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.wordCounts[uri] = n
}

// WordCount returns the word count of an indexed document.
func (idx *Index) WordCount(uri string) (int, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n, ok := idx.wordCounts[uri]
	return n, ok
}

// SetLocalVariables replaces the *temp creations of a document.
func (idx *Index) SetLocalVariables(uri string, m *MultiIndex) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.locals[uri] = unionCopy(m)
}

func (idx *Index) LocalVariables(uri string) *MultiIndex {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return orEmptyMulti(idx.locals[uri])
}

// SetSubroutineLocalVariables replaces the effective creations of variables
// created inside subroutines.
func (idx *Index) SetSubroutineLocalVariables(uri string, m *IdentifierIndex) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.subroutineLocals[uri] = orEmpty(m)
}

func (idx *Index) SubroutineLocalVariables(uri string) *IdentifierIndex {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return orEmpty(idx.subroutineLocals[uri])
}

func (idx *Index) SetVariableReferences(uri string, m *MultiIndex) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.references[uri] = unionCopy(m)
}

func (idx *Index) VariableReferences(uri string) *MultiIndex {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return orEmptyMulti(idx.references[uri])
}

func (idx *Index) SetLabels(uri string, m *LabelIndex) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.labels[uri] = orEmptyLabels(m)
}

func (idx *Index) Labels(uri string) *LabelIndex {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return orEmptyLabels(idx.labels[uri])
}

func (idx *Index) SetFlowControlEvents(uri string, events []FlowControlEvent) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.flowControl[uri] = append([]FlowControlEvent(nil), events...)
}

func (idx *Index) FlowControlEvents(uri string) []FlowControlEvent {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]FlowControlEvent(nil), idx.flowControl[uri]...)
}

func (idx *Index) SetAchievementReferences(uri string, m *MultiIndex) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.achievementRefs[uri] = unionCopy(m)
}

func (idx *Index) AchievementReferences(uri string) *MultiIndex {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return orEmptyMulti(idx.achievementRefs[uri])
}

func (idx *Index) SetDocumentScopes(uri string, s DocumentScopes) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.scopes[uri] = s
}

func (idx *Index) DocumentScopes(uri string) DocumentScopes {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.scopes[uri]
}

func (idx *Index) SetParseErrors(uri string, errs []diag.Diagnostic) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.parseErrors[uri] = append([]diag.Diagnostic(nil), errs...)
}

func (idx *Index) ParseErrors(uri string) []diag.Diagnostic {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]diag.Diagnostic(nil), idx.parseErrors[uri]...)
}

func orEmptyMulti(m *MultiIndex) *MultiIndex {
	if m == nil {
		return NewMultiIndex()
	}
	return m
}

// StartupURI returns the registered startup document, or "".
func (idx *Index) StartupURI() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.startupURI
}

// IsStartupFileURI reports whether uri is the registered startup document.
func (idx *Index) IsStartupFileURI(uri string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.startupURI != "" && idx.startupURI == uri
}

// SceneURI returns the URI of a scene: an indexed document with that scene
// name if there is one, otherwise the startup URI with the scene name
// substituted. It returns "" when no document is known to derive it from.
func (idx *Index) SceneURI(scene string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, uri := range idx.urisLocked() {
		if cimap.EqualFold(source.SceneName(uri), scene) {
			return uri
		}
	}
	base := idx.startupURI
	if base == "" {
		if uris := idx.urisLocked(); len(uris) > 0 {
			base = uris[0]
		}
	}
	if base == "" {
		return ""
	}
	return source.SiblingURI(base, scene)
}

// RemoveDocument deletes every entry of uri. Removing the startup document
// also clears globals, achievements and the scene list.
func (idx *Index) RemoveDocument(uri string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.wordCounts, uri)
	delete(idx.locals, uri)
	delete(idx.subroutineLocals, uri)
	delete(idx.references, uri)
	delete(idx.labels, uri)
	delete(idx.flowControl, uri)
	delete(idx.achievementRefs, uri)
	delete(idx.scopes, uri)
	delete(idx.parseErrors, uri)
	if uri == idx.startupURI {
		idx.startupURI = ""
		idx.globals = NewIdentifierIndex()
		idx.achievements = NewIdentifierIndex()
		idx.sceneList = nil
	}
}

// URIs returns every document with at least one entry, sorted.
func (idx *Index) URIs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.urisLocked()
}

func (idx *Index) urisLocked() []string {
	seen := make(map[string]struct{})
	add := func(uri string) { seen[uri] = struct{}{} }
	for uri := range idx.wordCounts {
		add(uri)
	}
	for uri := range idx.locals {
		add(uri)
	}
	for uri := range idx.subroutineLocals {
		add(uri)
	}
	for uri := range idx.references {
		add(uri)
	}
	for uri := range idx.labels {
		add(uri)
	}
	for uri := range idx.flowControl {
		add(uri)
	}
	for uri := range idx.achievementRefs {
		add(uri)
	}
	for uri := range idx.scopes {
		add(uri)
	}
	for uri := range idx.parseErrors {
		add(uri)
	}
	out := make([]string, 0, len(seen))
	for uri := range seen {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// IndexedScenes returns the scene names of every indexed document, without
// duplicates.
func (idx *Index) IndexedScenes() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var seen cimap.Map[struct{}]
	var out []string
	for _, uri := range idx.urisLocked() {
		name := source.SceneName(uri)
		if name == "" || seen.Has(name) {
			continue
		}
		seen.Set(name, struct{}{})
		out = append(out, name)
	}
	return out
}

// AllReferencedScenes returns the declared scene list followed by every
// literal scene named by a *goto_scene or *gosub_scene, without duplicates.
func (idx *Index) AllReferencedScenes() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var seen cimap.Map[struct{}]
	var out []string
	add := func(name string) {
		if name == "" || seen.Has(name) {
			return
		}
		seen.Set(name, struct{}{})
		out = append(out, name)
	}
	for _, s := range idx.sceneList {
		add(s)
	}
	for _, uri := range idx.urisLocked() {
		for _, ev := range idx.flowControl[uri] {
			if ev.Command.TargetsScene() && !ev.SceneIsInterpolated() {
				add(ev.Scene)
			}
		}
	}
	return out
}

// SetProjectIsIndexed records that every workspace document has been
// indexed once, enabling checks that need the whole project.
func (idx *Index) SetProjectIsIndexed(v bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.projectIndexed = v
}

func (idx *Index) ProjectIsIndexed() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.projectIndexed
}
