package ordered

import (
	"encoding/json"
	"testing"
)

func TestMap_SetKeepsInsertionOrder(t *testing.T) {
	var m Map[int]
	m.Set("zeta", 1)
	m.Set("alpha", 2)
	m.Set("mid", 3)

	want := []string{"zeta", "alpha", "mid"}
	got := m.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestMap_OverwriteKeepsPosition(t *testing.T) {
	var m Map[string]
	m.Set("a", "first")
	m.Set("b", "second")
	m.Set("a", "replaced")

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if m.Keys()[0] != "a" {
		t.Errorf("Keys()[0] = %s, want a", m.Keys()[0])
	}
	v, _ := m.Get("a")
	if v != "replaced" {
		t.Errorf("Get(a) = %s, want replaced", v)
	}
}

func TestMap_Delete(t *testing.T) {
	var m Map[int]
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Delete("b")
	m.Delete("missing")

	if m.Has("b") {
		t.Error("Has(b) should be false after Delete")
	}
	if got := m.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Keys() = %v, want [a c]", got)
	}
}

func TestMap_CloneIsIndependent(t *testing.T) {
	var m Map[int]
	m.Set("a", 1)

	c := m.Clone()
	c.Set("b", 2)
	c.Set("a", 10)

	if m.Len() != 1 {
		t.Errorf("original Len() = %d, want 1", m.Len())
	}
	if v, _ := m.Get("a"); v != 1 {
		t.Errorf("original Get(a) = %d, want 1", v)
	}
}

func TestMap_MarshalJSON(t *testing.T) {
	var m Map[int]
	m.Set("second", 2)
	m.Set("first", 1)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(data) != `{"second":2,"first":1}` {
		t.Errorf("Marshal = %s", data)
	}

	var empty Map[int]
	data, _ = json.Marshal(empty)
	if string(data) != `{}` {
		t.Errorf("Marshal(empty) = %s, want {}", data)
	}
}

func TestMap_UnmarshalJSON(t *testing.T) {
	var m Map[string]
	if err := json.Unmarshal([]byte(`{"z":"last","a":"first"}`), &m); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if got := m.Keys(); got[0] != "z" || got[1] != "a" {
		t.Errorf("Keys() = %v, want [z a]", got)
	}

	if err := json.Unmarshal([]byte(`[1,2]`), &m); err == nil {
		t.Error("Unmarshal of array should fail")
	}

	if err := json.Unmarshal([]byte(`null`), &m); err != nil {
		t.Errorf("Unmarshal(null) error = %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() after null = %d, want 0", m.Len())
	}
}

func TestMap_ZeroValue(t *testing.T) {
	var m Map[int]

	if _, ok := m.Get("a"); ok {
		t.Error("Get on zero map should miss")
	}
	if m.Has("a") || m.Len() != 0 || len(m.Keys()) != 0 || len(m.Values()) != 0 {
		t.Error("zero map should be empty")
	}
	m.Delete("a")
	m.Each(func(string, int) { t.Error("Each on zero map called fn") })

	if c := m.Clone(); c.Len() != 0 {
		t.Errorf("Clone().Len() = %d, want 0", c.Len())
	}
}

func TestMap_UnmarshalJSONReplacesContents(t *testing.T) {
	var m Map[int]
	m.Set("old", 1)

	if err := json.Unmarshal([]byte(`{"b":2,"a":1,"b":3}`), &m); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if m.Has("old") {
		t.Error("Unmarshal kept a key from before")
	}
	if got := m.Keys(); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("Keys() = %v, want [b a]", got)
	}
	if v, _ := m.Get("b"); v != 3 {
		t.Errorf("Get(b) = %d, want 3 (last duplicate wins)", v)
	}
}

func TestMap_RoundTripStructValues(t *testing.T) {
	type field struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	}

	var m Map[field]
	m.Set("title", field{Name: "Title", Size: 12})
	m.Set("body", field{Name: "Body", Size: 6})

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	var back Map[field]
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", data, err)
	}
	if got := back.Keys(); len(got) != 2 || got[0] != "title" || got[1] != "body" {
		t.Errorf("Keys() = %v", got)
	}
	if v, _ := back.Get("body"); v.Name != "Body" || v.Size != 6 {
		t.Errorf("Get = %+v", v)
	}
}
