package source

import "fmt"

// Position is a zero-based line and UTF-16 character offset, the unit
// editors speak.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Compare returns -1, 0 or +1 ordering p against other.
func (p Position) Compare(other Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Character < other.Character:
		return -1
	case p.Character > other.Character:
		return 1
	}
	return 0
}

func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// Range is a start/end pair of positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether pos is inside r, both ends included.
func (r Range) Contains(pos Position) bool {
	return !pos.Before(r.Start) && !pos.After(r.End)
}

// ContainsRange reports whether other lies entirely inside r.
func (r Range) ContainsRange(other Range) bool {
	return r.Contains(other.Start) && r.Contains(other.End)
}

func (r Range) Empty() bool {
	return r.Start == r.End
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Location pins a range to a document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

func (l Location) Equal(other Location) bool {
	return l.URI == other.URI && l.Range == other.Range
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%s", l.URI, l.Range)
}

// CompareLocations orders locations by URI and then by start position.
func CompareLocations(a, b Location) int {
	switch {
	case a.URI < b.URI:
		return -1
	case a.URI > b.URI:
		return 1
	}
	if c := a.Range.Start.Compare(b.Range.Start); c != 0 {
		return c
	}
	return a.Range.End.Compare(b.Range.End)
}
