package cimap

import "testing"

func TestCaseInsensitiveLookup(t *testing.T) {
	m := New[int]()
	m.Set("Variable", 1)
	if v, ok := m.Get("vArIaBlE"); !ok || v != 1 {
		t.Fatalf("Get = (%d, %v)", v, ok)
	}
	m.Set("VARIABLE", 2)
	if m.Len() != 1 {
		t.Fatalf("expected single entry, got %d", m.Len())
	}
	if keys := m.Keys(); len(keys) != 1 || keys[0] != "Variable" {
		t.Fatalf("expected first casing kept, got %v", keys)
	}
	if v, _ := m.Get("variable"); v != 2 {
		t.Fatalf("expected overwrite, got %d", v)
	}
}

func TestUnicodeFolding(t *testing.T) {
	m := New[string]()
	m.Set("Straße", "x")
	if !m.Has("STRASSE") {
		t.Fatal("expected full case folding to match STRASSE")
	}
	if !EqualFold("ÉCOLE", "école") {
		t.Fatal("expected NFC + fold equality")
	}
}

func TestZeroValueAndDelete(t *testing.T) {
	var m Map[bool]
	if m.Has("x") {
		t.Fatal("zero map should be empty")
	}
	m.Set("X", true)
	m.Delete("x")
	if m.Len() != 0 {
		t.Fatalf("expected empty after delete, got %d", m.Len())
	}
	var nilMap *Map[bool]
	if nilMap.Len() != 0 || nilMap.Has("a") {
		t.Fatal("nil map should read as empty")
	}
}

func TestRangeOrderAndClone(t *testing.T) {
	m := New[int]()
	m.Set("beta", 2)
	m.Set("Alpha", 1)
	var order []string
	m.Range(func(k string, _ int) bool {
		order = append(order, k)
		return true
	})
	if len(order) != 2 || order[0] != "Alpha" || order[1] != "beta" {
		t.Fatalf("unexpected order %v", order)
	}
	c := m.Clone()
	c.Set("gamma", 3)
	if m.Has("gamma") {
		t.Fatal("clone must not alias original")
	}
}
