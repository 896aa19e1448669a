package dag

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"csls/internal/cimap"
	"csls/internal/index"
)

type SceneID uint32

// SceneIndex assigns IDs to every scene the project knows of: the scene
// list in order, then other indexed scenes, then scenes that are only
// referenced. Names keep the casing of their first occurrence.
type SceneIndex struct {
	NameToID cimap.Map[SceneID]
	IDToName []string
}

func BuildIndex(idx *index.Index) SceneIndex {
	var si SceneIndex
	for _, name := range idx.SceneList() {
		si.add(name)
	}
	indexed := idx.IndexedScenes()
	sort.Strings(indexed)
	for _, name := range indexed {
		si.add(name)
	}
	for _, name := range idx.AllReferencedScenes() {
		si.add(name)
	}
	return si
}

func (si *SceneIndex) add(name string) {
	if name == "" || si.NameToID.Has(name) {
		return
	}
	si.NameToID.Set(name, toID(len(si.IDToName)))
	si.IDToName = append(si.IDToName, name)
}

// Lookup returns the ID of a scene name, ignoring case.
func (si *SceneIndex) Lookup(name string) (SceneID, bool) {
	return si.NameToID.Get(name)
}

func (si *SceneIndex) Names(ids []SceneID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = si.IDToName[int(id)]
	}
	return out
}

func toID(i int) SceneID {
	id, err := safecast.Conv[SceneID](i)
	if err != nil {
		panic(fmt.Errorf("scene id overflow: %w", err))
	}
	return id
}
