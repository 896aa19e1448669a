package index

import (
	"csls/internal/cimap"
	"csls/internal/source"
)

// IdentifierIndex maps a case-insensitive name to one location.
type IdentifierIndex struct {
	m cimap.Map[source.Location]
}

func NewIdentifierIndex() *IdentifierIndex {
	return &IdentifierIndex{}
}

// Set records loc for name, replacing any earlier location.
func (x *IdentifierIndex) Set(name string, loc source.Location) {
	x.m.Set(name, loc)
}

// SetFirst records loc only when name is not present yet.
func (x *IdentifierIndex) SetFirst(name string, loc source.Location) bool {
	if x.m.Has(name) {
		return false
	}
	x.m.Set(name, loc)
	return true
}

func (x *IdentifierIndex) Get(name string) (source.Location, bool) {
	if x == nil {
		return source.Location{}, false
	}
	return x.m.Get(name)
}

func (x *IdentifierIndex) Has(name string) bool {
	_, ok := x.Get(name)
	return ok
}

func (x *IdentifierIndex) Len() int {
	if x == nil {
		return 0
	}
	return x.m.Len()
}

// Names returns the names in sorted order, each with its first casing.
func (x *IdentifierIndex) Names() []string {
	if x == nil {
		return nil
	}
	return x.m.Keys()
}

func (x *IdentifierIndex) Range(fn func(name string, loc source.Location) bool) {
	if x == nil {
		return
	}
	x.m.Range(fn)
}

// Map returns a plain copy keyed by first casing.
func (x *IdentifierIndex) Map() map[string]source.Location {
	out := make(map[string]source.Location, x.Len())
	x.Range(func(name string, loc source.Location) bool {
		out[name] = loc
		return true
	})
	return out
}

// MultiIndex maps a case-insensitive name to every location it occurs at,
// in insertion order.
type MultiIndex struct {
	m cimap.Map[[]source.Location]
}

func NewMultiIndex() *MultiIndex {
	return &MultiIndex{}
}

// Add appends locations to name. Names differing only in case share one
// entry.
func (x *MultiIndex) Add(name string, locs ...source.Location) {
	if len(locs) == 0 {
		return
	}
	prev, _ := x.m.Get(name)
	next := make([]source.Location, 0, len(prev)+len(locs))
	next = append(next, prev...)
	next = append(next, locs...)
	x.m.Set(name, next)
}

// Union adds every entry of other to x.
func (x *MultiIndex) Union(other *MultiIndex) {
	other.Range(func(name string, locs []source.Location) bool {
		x.Add(name, locs...)
		return true
	})
}

// Get returns the locations of name. The slice must not be modified.
func (x *MultiIndex) Get(name string) []source.Location {
	if x == nil {
		return nil
	}
	locs, _ := x.m.Get(name)
	return locs
}

// First returns the earliest recorded location of name.
func (x *MultiIndex) First(name string) (source.Location, bool) {
	locs := x.Get(name)
	if len(locs) == 0 {
		return source.Location{}, false
	}
	return locs[0], true
}

func (x *MultiIndex) Has(name string) bool {
	return len(x.Get(name)) > 0
}

func (x *MultiIndex) Len() int {
	if x == nil {
		return 0
	}
	return x.m.Len()
}

func (x *MultiIndex) Names() []string {
	if x == nil {
		return nil
	}
	return x.m.Keys()
}

func (x *MultiIndex) Range(fn func(name string, locs []source.Location) bool) {
	if x == nil {
		return
	}
	x.m.Range(fn)
}

// Find returns the name and location of the entry whose range contains pos
// in document uri.
func (x *MultiIndex) Find(uri string, pos source.Position) (string, source.Location, bool) {
	var (
		name  string
		found source.Location
		ok    bool
	)
	x.Range(func(n string, locs []source.Location) bool {
		for _, loc := range locs {
			if loc.URI == uri && loc.Range.Contains(pos) {
				name, found, ok = n, loc, true
				return false
			}
		}
		return true
	})
	return name, found, ok
}

// Map returns a plain copy keyed by first casing.
func (x *MultiIndex) Map() map[string][]source.Location {
	out := make(map[string][]source.Location, x.Len())
	x.Range(func(name string, locs []source.Location) bool {
		out[name] = append([]source.Location(nil), locs...)
		return true
	})
	return out
}

// Find returns the name whose location contains pos in document uri.
func (x *IdentifierIndex) Find(uri string, pos source.Position) (string, source.Location, bool) {
	var (
		name  string
		found source.Location
		ok    bool
	)
	x.Range(func(n string, loc source.Location) bool {
		if loc.URI == uri && loc.Range.Contains(pos) {
			name, found, ok = n, loc, true
			return false
		}
		return true
	})
	return name, found, ok
}

// LabelIndex maps a case-insensitive label name to its definition.
type LabelIndex struct {
	m cimap.Map[Label]
}

func NewLabelIndex() *LabelIndex {
	return &LabelIndex{}
}

// Add records a label unless one with the same name exists, and reports
// whether it was added.
func (x *LabelIndex) Add(l Label) bool {
	if x.m.Has(l.Name) {
		return false
	}
	x.m.Set(l.Name, l)
	return true
}

func (x *LabelIndex) Get(name string) (Label, bool) {
	if x == nil {
		return Label{}, false
	}
	return x.m.Get(name)
}

func (x *LabelIndex) Len() int {
	if x == nil {
		return 0
	}
	return x.m.Len()
}

// Labels returns the labels in document order.
func (x *LabelIndex) Labels() []Label {
	if x == nil {
		return nil
	}
	out := make([]Label, 0, x.m.Len())
	x.m.Range(func(_ string, l Label) bool {
		out = append(out, l)
		return true
	})
	sortLabels(out)
	return out
}

// Find returns the label whose definition range contains pos.
func (x *LabelIndex) Find(pos source.Position) (Label, bool) {
	for _, l := range x.Labels() {
		if l.Location.Range.Contains(pos) {
			return l, true
		}
	}
	return Label{}, false
}
