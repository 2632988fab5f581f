// Package ordered provides a string-keyed map that remembers insertion order.
//
// The admin renderer lays out fields and navigation entries in the order they
// were declared, so mappings in the served configuration document must keep
// that order through JSON encoding. Overwriting an existing key replaces its
// value but keeps its original position.
//
// Map wraps github.com/wk8/go-ordered-map and adds the value-style helpers the
// schema snapshots need (Clone, Keys, a usable zero value).
package ordered

import (
	"bytes"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is an insertion-ordered map from string keys to values of type V.
// The zero value is an empty map ready to use. Copies of a Map share storage;
// use Clone for an independent copy.
type Map[V any] struct {
	om *orderedmap.OrderedMap[string, V]
}

// New creates an empty map.
func New[V any]() Map[V] {
	return Map[V]{om: orderedmap.New[string, V]()}
}

// Set stores v under key. A new key is appended to the order; an existing key
// keeps its position.
func (m *Map[V]) Set(key string, v V) {
	if m.om == nil {
		m.om = orderedmap.New[string, V]()
	}
	m.om.Set(key, v)
}

// Get returns the value stored under key.
func (m Map[V]) Get(key string) (V, bool) {
	if m.om == nil {
		var zero V
		return zero, false
	}
	return m.om.Get(key)
}

// Has reports whether key is present.
func (m Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key, if present.
func (m *Map[V]) Delete(key string) {
	if m.om == nil {
		return
	}
	m.om.Delete(key)
}

// Len returns the number of entries.
func (m Map[V]) Len() int {
	if m.om == nil {
		return 0
	}
	return m.om.Len()
}

// Keys returns the keys in insertion order.
func (m Map[V]) Keys() []string {
	keys := make([]string, 0, m.Len())
	m.Each(func(k string, _ V) {
		keys = append(keys, k)
	})
	return keys
}

// Values returns the values in insertion order.
func (m Map[V]) Values() []V {
	values := make([]V, 0, m.Len())
	m.Each(func(_ string, v V) {
		values = append(values, v)
	})
	return values
}

// Each calls fn for every entry in insertion order.
func (m Map[V]) Each(fn func(key string, v V)) {
	if m.om == nil {
		return
	}
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns a copy that shares no storage with m. Values are copied by
// assignment.
func (m Map[V]) Clone() Map[V] {
	c := New[V]()
	m.Each(func(k string, v V) {
		c.om.Set(k, v)
	})
	return c
}

// MarshalJSON encodes the map as a JSON object with keys in insertion order.
func (m Map[V]) MarshalJSON() ([]byte, error) {
	if m.om == nil {
		return []byte("{}"), nil
	}
	return m.om.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the document.
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	*m = New[V]()

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return m.om.UnmarshalJSON(data)
}
