package schema

import (
	"encoding/json"
	"testing"
)

func TestNewField_Defaults(t *testing.T) {
	spec := NewField(FieldTypeNumber, "", "").Get()

	if spec.Key != "new" {
		t.Errorf("Key = %q, want new", spec.Key)
	}
	if spec.Name != "New Field" {
		t.Errorf("Name = %q, want New Field", spec.Name)
	}
	if spec.Type != FieldTypeNumber {
		t.Errorf("Type = %q, want number", spec.Type)
	}
	if spec.Size != 12 {
		t.Errorf("Size = %d, want 12", spec.Size)
	}
	if spec.Rows != 1 {
		t.Errorf("Rows = %d, want 1", spec.Rows)
	}
	if spec.Required || spec.Readonly {
		t.Error("new field should be optional and editable")
	}
	if spec.ImageSize != nil {
		t.Errorf("ImageSize = %v, want nil", *spec.ImageSize)
	}
	if spec.Choices == nil || len(spec.Choices) != 0 {
		t.Errorf("Choices = %v, want empty slice", spec.Choices)
	}
}

func TestFieldFactories(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  FieldType
	}{
		{"string", StringField("a", "A"), FieldTypeString},
		{"number", NumberField("a", "A"), FieldTypeNumber},
		{"boolean", BooleanField("a", "A"), FieldTypeBoolean},
		{"date", DateField("a", "A"), FieldTypeDate},
		{"image", ImageField("a", "A"), FieldTypeImage},
		{"select", SelectField("a", "A"), FieldTypeSelect},
		{"related", RelatedField("a", "A"), FieldTypeRelated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.Type(); got != tt.want {
				t.Errorf("Type() = %s, want %s", got, tt.want)
			}
			if !tt.want.Valid() {
				t.Errorf("%s should be a valid type", tt.want)
			}
		})
	}

	if FieldType("colour").Valid() {
		t.Error("unknown type should not be valid")
	}
}

func TestField_SizeClamped(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 0},
		{0, 0},
		{7, 7},
		{12, 12},
		{40, 12},
	}

	for _, tt := range tests {
		if got := StringField("k", "K").Size(tt.in).Get().Size; got != tt.want {
			t.Errorf("Size(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestField_SizeHelpers(t *testing.T) {
	f := StringField("k", "K")
	tests := []struct {
		name  string
		field Field
		want  int
	}{
		{"tiny", f.Tiny(), 2},
		{"small", f.Small(), 4},
		{"medium", f.Medium(), 6},
		{"large", f.Large(), 8},
		{"full", f.Tiny().Full(), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.Get().Size; got != tt.want {
				t.Errorf("size = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestField_KeyRoundTrip(t *testing.T) {
	f := StringField("title", "Title").WithKey("headline")
	if got := f.Key(); got != "headline" {
		t.Errorf("Key() = %q, want headline", got)
	}
	if got := f.Get().Key; got != "headline" {
		t.Errorf("Get().Key = %q, want headline", got)
	}
}

func TestField_IsPersistent(t *testing.T) {
	base := StringField("title", "Title")
	required := base.Required().AddOptions([]string{"A"})

	if base.Get().Required {
		t.Error("Required() modified the receiver")
	}
	if len(base.Get().Choices) != 0 {
		t.Error("AddOptions() modified the receiver")
	}
	if !required.Get().Required {
		t.Error("derived field should be required")
	}

	// Two branches from the same parent must not share choices.
	parent := SelectField("c", "C").AddOptions([]string{"Red"})
	left := parent.AddOptions([]string{"Blue"})
	right := parent.AddOptions([]string{"Green"})
	if got := left.Get().Choices[1].Text; got != "Blue" {
		t.Errorf("left choice = %s, want Blue", got)
	}
	if got := right.Get().Choices[1].Text; got != "Green" {
		t.Errorf("right choice = %s, want Green", got)
	}
}

func TestField_Mutators(t *testing.T) {
	spec := StringField("body", "Body").
		Required().
		Optional().
		Readonly(true).
		List(3).
		Multiline().
		MinLength(2).
		MaxLength(DefaultMaxLength).
		Link("title").
		Get()

	if spec.Required {
		t.Error("Optional() should clear Required")
	}
	if !spec.Readonly {
		t.Error("Readonly(true) not applied")
	}
	if spec.List != 3 {
		t.Errorf("List = %d, want 3", spec.List)
	}
	if spec.Rows != DefaultMultilineRows {
		t.Errorf("Rows = %d, want %d", spec.Rows, DefaultMultilineRows)
	}
	if spec.Min != 2 || spec.Max != 50 {
		t.Errorf("Min/Max = %d/%d, want 2/50", spec.Min, spec.Max)
	}
	if spec.Link != "title" {
		t.Errorf("Link = %q, want title", spec.Link)
	}

	if got := StringField("a", "A").Multiline().Singleline().Get().Rows; got != 1 {
		t.Errorf("Singleline rows = %d, want 1", got)
	}
	if got := ImageField("a", "A").Multiple(DefaultMultiple).Get().Max; got != 50 {
		t.Errorf("Multiple max = %d, want 50", got)
	}
	if got := ImageField("a", "A").Single().Get().Max; got != 1 {
		t.Errorf("Single max = %d, want 1", got)
	}
}

func TestField_Modes(t *testing.T) {
	f := SelectField("c", "C")
	tests := []struct {
		name  string
		field Field
		want  Mode
	}{
		{"checkbox", f.Checkbox(), ModeCheckbox},
		{"dropdown", f.Dropdown(), ModeSelect},
		{"tags", f.Tags(), ModeTags},
		{"slug", StringField("s", "S").Slug(), ModeSlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.Get().Mode; got != tt.want {
				t.Errorf("Mode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestField_Ratio(t *testing.T) {
	spec := ImageField("hero", "Hero").Ratio(16, 9, false).Get()
	if spec.Ratio != "16:9" {
		t.Errorf("Ratio = %q, want 16:9", spec.Ratio)
	}
	if spec.ImageSize != nil {
		t.Error("ImageSize should stay nil without resize")
	}

	spec = ImageField("hero", "Hero").Ratio(800, 600, true).Get()
	if spec.ImageSize == nil || *spec.ImageSize != "800,600" {
		t.Errorf("ImageSize = %v, want 800,600", spec.ImageSize)
	}
}

func TestField_AddOptions(t *testing.T) {
	spec := SelectField("colour", "Colour").AddOptions([]string{"Red", "Blue"}).Get()

	want := []OptionSpec{
		{Value: "red", Text: "Red"},
		{Value: "blue", Text: "Blue"},
	}
	if len(spec.Choices) != len(want) {
		t.Fatalf("len(Choices) = %d, want %d", len(spec.Choices), len(want))
	}
	for i := range want {
		if spec.Choices[i] != want[i] {
			t.Errorf("Choices[%d] = %+v, want %+v", i, spec.Choices[i], want[i])
		}
	}
}

func TestField_AddOption(t *testing.T) {
	spec := SelectField("size", "Size").
		AddOption(NewOption("s", "Small"), NewOption("", "")).
		Get()

	if spec.Choices[0] != (OptionSpec{Value: "s", Text: "Small"}) {
		t.Errorf("Choices[0] = %+v", spec.Choices[0])
	}
	if spec.Choices[1] != (OptionSpec{Value: "new", Text: "New Option"}) {
		t.Errorf("Choices[1] = %+v, want defaults", spec.Choices[1])
	}
}

func TestField_Model(t *testing.T) {
	spec := RelatedField("author", "Author").Model(NewRelationship("users")).Get()
	if spec.Related.Model != "users" {
		t.Errorf("Related.Model = %q, want users", spec.Related.Model)
	}
}

func TestField_JSON(t *testing.T) {
	data, err := json.Marshal(StringField("title", "Title").Get())
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}

	if decoded["imagesize"] != nil {
		t.Errorf("imagesize = %v, want null", decoded["imagesize"])
	}
	related, ok := decoded["related"].(map[string]any)
	if !ok || len(related) != 0 {
		t.Errorf("related = %v, want {}", decoded["related"])
	}
	if choices, ok := decoded["choices"].([]any); !ok || len(choices) != 0 {
		t.Errorf("choices = %v, want []", decoded["choices"])
	}
	for _, key := range []string{"key", "name", "type", "required", "readonly", "size", "list", "min", "max", "rows", "mode", "link", "ratio"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing attribute %q", key)
		}
	}
}
