// Package cimap provides a map keyed by case-insensitive identifiers.
//
// Keys are normalised with Unicode NFC followed by full case folding, so
// "Score", "SCORE" and "score" are the same key. The map remembers the
// casing of the first key stored for each entry; callers that need the
// casing of a particular occurrence should keep it in the value.
package cimap

import (
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type entry[V any] struct {
	key   string
	value V
}

// Map is a case-insensitive map. The zero value is ready to use.
type Map[V any] struct {
	entries map[string]entry[V]
}

// New returns an empty map.
func New[V any]() *Map[V] {
	return &Map[V]{entries: make(map[string]entry[V])}
}

// Normalize returns the canonical form used for key comparison.
func Normalize(key string) string {
	ascii := true
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return asciiLower(key)
	}
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(norm.NFC.String(key))
}

// EqualFold reports whether two identifiers name the same key.
func EqualFold(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// Set stores value under key, replacing any entry with an equal key.
// The originally stored casing is kept.
func (m *Map[V]) Set(key string, value V) {
	if m.entries == nil {
		m.entries = make(map[string]entry[V])
	}
	k := Normalize(key)
	if old, ok := m.entries[k]; ok {
		key = old.key
	}
	m.entries[k] = entry[V]{key: key, value: value}
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	if m == nil || m.entries == nil {
		var zero V
		return zero, false
	}
	e, ok := m.entries[Normalize(key)]
	return e.value, ok
}

// Has reports whether key is present.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key.
func (m *Map[V]) Delete(key string) {
	if m == nil || m.entries == nil {
		return
	}
	delete(m.entries, Normalize(key))
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Keys returns the stored keys, sorted by their normalised form.
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	norms := make([]string, 0, len(m.entries))
	for k := range m.entries {
		norms = append(norms, k)
	}
	sort.Strings(norms)
	out := make([]string, len(norms))
	for i, k := range norms {
		out[i] = m.entries[k].key
	}
	return out
}

// Range calls fn for every entry in key order until fn returns false.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	if m == nil {
		return
	}
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		if !fn(k, v) {
			return
		}
	}
}

// Clone returns a shallow copy.
func (m *Map[V]) Clone() *Map[V] {
	out := New[V]()
	if m == nil {
		return out
	}
	for k, e := range m.entries {
		out.entries[k] = e
	}
	return out
}
