package schema

import "fmt"

// FieldType is the input type of a field. It decides which of the secondary
// attributes the renderer looks at.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
	FieldTypeImage   FieldType = "image"
	FieldTypeSelect  FieldType = "select"
	FieldTypeRelated FieldType = "related"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeDate,
		FieldTypeImage, FieldTypeSelect, FieldTypeRelated:
		return true
	}
	return false
}

// Mode refines how select and text inputs are presented.
type Mode string

const (
	ModeNone     Mode = ""
	ModeCheckbox Mode = "checkbox"
	ModeSelect   Mode = "select"
	ModeTags     Mode = "tags"
	ModeSlug     Mode = "slug"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeNone, ModeCheckbox, ModeSelect, ModeTags, ModeSlug:
		return true
	}
	return false
}

// Column widths on the admin UI's 12 column grid.
const (
	SizeTiny   = 2
	SizeSmall  = 4
	SizeMedium = 6
	SizeLarge  = 8
	SizeFull   = 12
)

// Defaults used by the helper mutators.
const (
	DefaultMultiple      = 50
	DefaultMaxLength     = 50
	DefaultMultilineRows = 5
	DefaultListPosition  = 50
)

// clampSize keeps a width inside the grid.
func clampSize(size int) int {
	if size < 0 {
		return 0
	}
	if size > SizeFull {
		return SizeFull
	}
	return size
}

// FieldSpec is the serialized form of a field.
type FieldSpec struct {
	Key       string           `json:"key"`
	Name      string           `json:"name"`
	Type      FieldType        `json:"type"`
	Required  bool             `json:"required"`
	Readonly  bool             `json:"readonly"`
	Size      int              `json:"size"`
	List      int              `json:"list"`
	Min       int              `json:"min"`
	Max       int              `json:"max"`
	Rows      int              `json:"rows"`
	Mode      Mode             `json:"mode"`
	Link      string           `json:"link"`
	Ratio     string           `json:"ratio"`
	ImageSize *string          `json:"imagesize"`
	Choices   []OptionSpec     `json:"choices"`
	Related   RelationshipSpec `json:"related"`
}

// Clone returns a copy sharing no storage with s.
func (s FieldSpec) Clone() FieldSpec {
	c := s
	c.Choices = make([]OptionSpec, len(s.Choices))
	copy(c.Choices, s.Choices)
	if s.ImageSize != nil {
		size := *s.ImageSize
		c.ImageSize = &size
	}
	return c
}

// Field builds one input of a resource. Every mutator returns a new Field;
// the receiver is never modified. No cross-attribute validation happens here:
// a ratio on a string field is accepted and simply ignored by the renderer.
type Field struct {
	spec FieldSpec
}

// NewField creates a field of the given type. An empty key defaults to "new"
// and an empty name to "New Field".
func NewField(typ FieldType, key, name string) Field {
	f := Field{spec: FieldSpec{
		Key:     "new",
		Name:    "New Field",
		Type:    typ,
		Size:    SizeFull,
		Rows:    1,
		Choices: []OptionSpec{},
	}}
	if key != "" {
		f.spec.Key = key
	}
	if name != "" {
		f.spec.Name = name
	}
	return f
}

// StringField creates a text input with no length bounds.
func StringField(key, name string) Field {
	return NewField(FieldTypeString, key, name).MinLength(0).MaxLength(0)
}

// NumberField creates a numeric input.
func NumberField(key, name string) Field {
	return NewField(FieldTypeNumber, key, name)
}

// BooleanField creates a toggle.
func BooleanField(key, name string) Field {
	return NewField(FieldTypeBoolean, key, name)
}

// DateField creates a date picker.
func DateField(key, name string) Field {
	return NewField(FieldTypeDate, key, name)
}

// ImageField creates an image upload.
func ImageField(key, name string) Field {
	return NewField(FieldTypeImage, key, name)
}

// SelectField creates a choice input.
func SelectField(key, name string) Field {
	return NewField(FieldTypeSelect, key, name)
}

// RelatedField creates a reference to records of another resource.
func RelatedField(key, name string) Field {
	return NewField(FieldTypeRelated, key, name)
}

// WithKey sets the key the field is stored under.
func (f Field) WithKey(key string) Field {
	f.spec.Key = key
	return f
}

// Key returns the field's key.
func (f Field) Key() string {
	return f.spec.Key
}

// WithName sets the display name.
func (f Field) WithName(name string) Field {
	f.spec.Name = name
	return f
}

// Type returns the field type.
func (f Field) Type() FieldType {
	return f.spec.Type
}

// Required marks the field as mandatory for client side validation.
func (f Field) Required() Field {
	f.spec.Required = true
	return f
}

// Optional clears Required.
func (f Field) Optional() Field {
	f.spec.Required = false
	return f
}

// Readonly toggles editing in the admin UI.
func (f Field) Readonly(readonly bool) Field {
	f.spec.Readonly = readonly
	return f
}

// Size sets the column width, clamped to 0..12.
func (f Field) Size(size int) Field {
	f.spec.Size = clampSize(size)
	return f
}

// Tiny is Size(SizeTiny).
func (f Field) Tiny() Field { return f.Size(SizeTiny) }

// Small is Size(SizeSmall).
func (f Field) Small() Field { return f.Size(SizeSmall) }

// Medium is Size(SizeMedium).
func (f Field) Medium() Field { return f.Size(SizeMedium) }

// Large is Size(SizeLarge).
func (f Field) Large() Field { return f.Size(SizeLarge) }

// Full is Size(SizeFull), the whole row.
func (f Field) Full() Field { return f.Size(SizeFull) }

// List shows the field as a column of the list view at the given position.
// Zero hides it.
func (f Field) List(position int) Field {
	f.spec.List = position
	return f
}

// Rows sets the number of text rows.
func (f Field) Rows(rows int) Field {
	f.spec.Rows = rows
	return f
}

// Singleline is Rows(1).
func (f Field) Singleline() Field {
	return f.Rows(1)
}

// Multiline is Rows(DefaultMultilineRows).
func (f Field) Multiline() Field {
	return f.Rows(DefaultMultilineRows)
}

// Multiple allows up to n uploads on an image field.
func (f Field) Multiple(n int) Field {
	f.spec.Max = n
	return f
}

// Single is Multiple(1).
func (f Field) Single() Field {
	return f.Multiple(1)
}

// MaxLength limits input to n characters. Zero means unbounded.
func (f Field) MaxLength(n int) Field {
	f.spec.Max = n
	return f
}

// MinLength requires at least n characters.
func (f Field) MinLength(n int) Field {
	f.spec.Min = n
	return f
}

// Mode sets the presentation mode.
func (f Field) Mode(mode Mode) Field {
	f.spec.Mode = mode
	return f
}

// Checkbox renders a boolean or select field as checkboxes.
func (f Field) Checkbox() Field { return f.Mode(ModeCheckbox) }

// Dropdown renders the choices as a select box.
func (f Field) Dropdown() Field { return f.Mode(ModeSelect) }

// Tags renders the value as free-form tags.
func (f Field) Tags() Field { return f.Mode(ModeTags) }

// Slug renders the value as a URL slug, usually together with Link.
func (f Field) Slug() Field { return f.Mode(ModeSlug) }

// Link feeds the value of the field keyed other into this one, e.g. a slug
// generated from a title.
func (f Field) Link(other string) Field {
	f.spec.Link = other
	return f
}

// Ratio requests the given image aspect ratio. With resize, uploads are also
// scaled to width x height.
func (f Field) Ratio(width, height int, resize bool) Field {
	f.spec.Ratio = fmt.Sprintf("%d:%d", width, height)
	if resize {
		size := fmt.Sprintf("%d,%d", width, height)
		f.spec.ImageSize = &size
	}
	return f
}

// AddOption appends choices.
func (f Field) AddOption(options ...Option) Field {
	choices := make([]OptionSpec, len(f.spec.Choices), len(f.spec.Choices)+len(options))
	copy(choices, f.spec.Choices)
	for _, o := range options {
		choices = append(choices, o.Get())
	}
	f.spec.Choices = choices
	return f
}

// AddOptions appends one choice per label: the value is the lower-cased label
// and the text is the label verbatim.
func (f Field) AddOptions(labels []string) Field {
	options := make([]Option, 0, len(labels))
	for _, label := range labels {
		options = append(options, OptionFromText(label))
	}
	return f.AddOption(options...)
}

// Model sets the related resource.
func (f Field) Model(rel Relationship) Field {
	f.spec.Related = rel.Get()
	return f
}

// Get returns the field snapshot.
func (f Field) Get() FieldSpec {
	return f.spec.Clone()
}

// String implements fmt.Stringer for debugging.
func (f Field) String() string {
	return fmt.Sprintf("%s(%s)", f.spec.Type, f.spec.Key)
}
