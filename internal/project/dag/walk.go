package dag

import "slices"

type Walk struct {
	Order       []SceneID   // breadth-first from the start scene
	Levels      [][]SceneID // scenes first reached after the same number of hops
	Unreachable []SceneID   // indexed scenes never reached
	Missing     []SceneID   // reached scenes with no document
}

// WalkFrom visits every scene reachable from start. Missing scenes are
// recorded but not expanded.
func WalkFrom(g Graph, start SceneID) *Walk {
	n := len(g.Edges)
	w := &Walk{
		Order: make([]SceneID, 0, n),
	}
	visited := make([]bool, n)
	visited[int(start)] = true
	current := []SceneID{start}
	for len(current) > 0 {
		level := make([]SceneID, len(current))
		copy(level, current)
		w.Levels = append(w.Levels, level)

		next := make([]SceneID, 0)
		for _, id := range level {
			w.Order = append(w.Order, id)
			if !g.Present[int(id)] {
				w.Missing = append(w.Missing, id)
				continue
			}
			for _, e := range g.Edges[int(id)] {
				if visited[int(e.To)] {
					continue
				}
				visited[int(e.To)] = true
				next = append(next, e.To)
			}
		}
		slices.Sort(next)
		current = next
	}

	for i := range n {
		if g.Present[i] && !visited[i] {
			w.Unreachable = append(w.Unreachable, toID(i))
		}
	}
	slices.Sort(w.Missing)
	return w
}
