// Package dag builds the scene flow graph of a game: which scene can hand
// control to which.
package dag

import (
	"slices"

	"csls/internal/index"
	"csls/internal/language"
	"csls/internal/source"
)

// EdgeKind is how control moves between two scenes.
type EdgeKind uint8

const (
	// EdgeNext follows the scene list, as *finish does.
	EdgeNext EdgeKind = iota
	EdgeGoto
	EdgeGosub
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeGoto:
		return "goto_scene"
	case EdgeGosub:
		return "gosub_scene"
	default:
		return "next"
	}
}

type Edge struct {
	To   SceneID
	Kind EdgeKind
	// At is the first command creating the edge; nil for EdgeNext.
	At   *source.Location
}

type Graph struct {
	Edges   [][]Edge // Edges[from], sorted by target then kind
	Present []bool   // the scene has an indexed document
}

// BuildGraph connects consecutive scene-list entries and every literal
// *goto_scene or *gosub_scene target. Interpolated targets and jumps
// within a scene are not edges.
func BuildGraph(si SceneIndex, idx *index.Index) Graph {
	n := len(si.IDToName)
	g := Graph{
		Edges:   make([][]Edge, n),
		Present: make([]bool, n),
	}
	for _, name := range idx.IndexedScenes() {
		if id, ok := si.Lookup(name); ok {
			g.Present[int(id)] = true
		}
	}

	list := idx.SceneList()
	for i := 0; i+1 < len(list); i++ {
		from, okFrom := si.Lookup(list[i])
		to, okTo := si.Lookup(list[i+1])
		if okFrom && okTo {
			g.add(from, Edge{To: to, Kind: EdgeNext})
		}
	}

	for _, uri := range idx.URIs() {
		from, ok := si.Lookup(source.SceneName(uri))
		if !ok {
			continue
		}
		for _, ev := range idx.FlowControlEvents(uri) {
			if !ev.Command.TargetsScene() || ev.SceneIsInterpolated() || ev.Scene == "" {
				continue
			}
			to, ok := si.Lookup(ev.Scene)
			if !ok {
				continue
			}
			kind := EdgeGoto
			if ev.Command == language.FlowGosubScene {
				kind = EdgeGosub
			}
			at := ev.CommandLocation
			g.add(from, Edge{To: to, Kind: kind, At: &at})
		}
	}

	for from := range g.Edges {
		slices.SortStableFunc(g.Edges[from], func(a, b Edge) int {
			if a.To != b.To {
				return int(a.To) - int(b.To)
			}
			return int(a.Kind) - int(b.Kind)
		})
	}
	return g
}

// add records an edge once per target and kind; self edges are dropped.
func (g *Graph) add(from SceneID, e Edge) {
	if from == e.To {
		return
	}
	for _, prev := range g.Edges[int(from)] {
		if prev.To == e.To && prev.Kind == e.Kind {
			return
		}
	}
	g.Edges[int(from)] = append(g.Edges[int(from)], e)
}
