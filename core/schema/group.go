package schema

import (
	"strings"

	"github.com/artpar/agencms/pkg/ordered"
	"github.com/gosimple/slug"
)

// GroupSpec is the serialized form of a group.
type GroupSpec struct {
	Name     string                 `json:"name"`
	Key      string                 `json:"key"`
	Size     int                    `json:"size"`
	Repeater bool                   `json:"repeater"`
	Fields   ordered.Map[FieldSpec] `json:"fields"`
	Groups   []GroupSpec            `json:"groups"`
}

// Clone returns a deep copy of s.
func (s GroupSpec) Clone() GroupSpec {
	c := s
	c.Fields = ordered.New[FieldSpec]()
	s.Fields.Each(func(key string, f FieldSpec) {
		c.Fields.Set(key, f.Clone())
	})
	c.Groups = cloneGroups(s.Groups)
	return c
}

func cloneGroups(groups []GroupSpec) []GroupSpec {
	c := make([]GroupSpec, len(groups))
	for i, g := range groups {
		c[i] = g.Clone()
	}
	return c
}

// Group builds a named, sized container of fields. Nested groups are used for
// repeaters: sets of fields the user can add, remove and reorder.
//
// Nested groups are stored as snapshots, so a group can never contain itself.
type Group struct {
	spec GroupSpec
}

// SizedGroup creates a group of the given column width, clamped to 0..12.
func SizedGroup(name string, size int) Group {
	if name == "" {
		name = "New Group"
	}
	return Group{spec: GroupSpec{
		Name:   name,
		Size:   clampSize(size),
		Fields: ordered.New[FieldSpec](),
		Groups: []GroupSpec{},
	}}
}

// TinyGroup creates a group SizeTiny columns wide.
func TinyGroup(name string) Group { return SizedGroup(name, SizeTiny) }

// SmallGroup creates a group SizeSmall columns wide.
func SmallGroup(name string) Group { return SizedGroup(name, SizeSmall) }

// MediumGroup creates a group SizeMedium columns wide.
func MediumGroup(name string) Group { return SizedGroup(name, SizeMedium) }

// LargeGroup creates a group SizeLarge columns wide.
func LargeGroup(name string) Group { return SizedGroup(name, SizeLarge) }

// FullGroup creates a group spanning the whole row.
func FullGroup(name string) Group { return SizedGroup(name, SizeFull) }

// WithKey sets the key that stored content for this group is saved under.
func (g Group) WithKey(key string) Group {
	g.spec.Key = key
	return g
}

// Key returns the group's key.
func (g Group) Key() string {
	return g.spec.Key
}

// Name returns the display name.
func (g Group) Name() string {
	return g.spec.Name
}

// Repeater marks the group as a repeater stored under key. An empty key is
// derived from the group name.
func (g Group) Repeater(key string) Group {
	g.spec.Repeater = true
	g.spec.Key = key
	return g
}

// AddField adds fields keyed by their own key. A field whose key is already
// present replaces the earlier one in place.
func (g Group) AddField(fields ...Field) Group {
	g.spec.Fields = g.spec.Fields.Clone()
	for _, f := range fields {
		g.spec.Fields.Set(f.Key(), f.Get())
	}
	return g
}

// AddGroup appends nested groups.
func (g Group) AddGroup(groups ...Group) Group {
	nested := make([]GroupSpec, len(g.spec.Groups), len(g.spec.Groups)+len(groups))
	copy(nested, g.spec.Groups)
	for _, sub := range groups {
		nested = append(nested, sub.Get())
	}
	g.spec.Groups = nested
	return g
}

// Get returns the group snapshot. A repeater always carries a non-empty key.
func (g Group) Get() GroupSpec {
	spec := g.spec.Clone()
	if spec.Repeater && spec.Key == "" {
		spec.Key = deriveKey(spec.Name)
	}
	return spec
}

// deriveKey turns a display name into a storage key: "Call To Action" becomes
// "call_to_action".
func deriveKey(name string) string {
	key := strings.ReplaceAll(slug.Make(name), "-", "_")
	if key == "" {
		return "repeater"
	}
	return key
}
