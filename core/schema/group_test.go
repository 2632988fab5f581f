package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSizedGroup_Defaults(t *testing.T) {
	spec := SizedGroup("", 40).Get()

	if spec.Name != "New Group" {
		t.Errorf("Name = %q, want New Group", spec.Name)
	}
	if spec.Size != 12 {
		t.Errorf("Size = %d, want 12 (clamped)", spec.Size)
	}
	if spec.Key != "" || spec.Repeater {
		t.Error("new group should not be a repeater")
	}
	if spec.Fields.Len() != 0 || len(spec.Groups) != 0 {
		t.Error("new group should be empty")
	}
}

func TestGroup_NamedSizes(t *testing.T) {
	tests := []struct {
		group Group
		want  int
	}{
		{TinyGroup("a"), 2},
		{SmallGroup("a"), 4},
		{MediumGroup("a"), 6},
		{LargeGroup("a"), 8},
		{FullGroup("a"), 12},
	}
	for _, tt := range tests {
		if got := tt.group.Get().Size; got != tt.want {
			t.Errorf("size = %d, want %d", got, tt.want)
		}
	}
}

func TestGroup_AddFieldKeepsOrder(t *testing.T) {
	spec := FullGroup("Details").AddField(
		StringField("title", "Title"),
		StringField("slug", "Slug"),
		DateField("published", "Published"),
	).Get()

	want := []string{"title", "slug", "published"}
	got := spec.Fields.Keys()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestGroup_AddFieldDuplicateKeyLastWins(t *testing.T) {
	spec := FullGroup("Details").
		AddField(StringField("title", "First"), StringField("body", "Body")).
		AddField(StringField("title", "Second")).
		Get()

	if spec.Fields.Len() != 2 {
		t.Fatalf("Fields.Len() = %d, want 2", spec.Fields.Len())
	}
	f, _ := spec.Fields.Get("title")
	if f.Name != "Second" {
		t.Errorf("title name = %q, want Second", f.Name)
	}
	if spec.Fields.Keys()[0] != "title" {
		t.Error("overwritten key should keep its position")
	}
}

func TestGroup_Repeater(t *testing.T) {
	spec := FullGroup("Slides").Repeater("slides").Get()
	if !spec.Repeater || spec.Key != "slides" {
		t.Errorf("got repeater=%v key=%q, want true slides", spec.Repeater, spec.Key)
	}
}

func TestGroup_RepeaterAlwaysKeyed(t *testing.T) {
	tests := []struct {
		name  string
		group Group
		want  string
	}{
		{"empty key", FullGroup("Call To Action").Repeater(""), "call_to_action"},
		{"key cleared later", FullGroup("Slides").Repeater("slides").WithKey(""), "slides"},
		{"unkeyable name", FullGroup("!!!").Repeater(""), "repeater"},
		{"punctuation collapsed", FullGroup("Hero  Image - 2").Repeater(""), "hero_image_2"},
		{"transliterated", FullGroup("Über Slides").Repeater(""), "uber_slides"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tt.group.Get()
			if spec.Key == "" {
				t.Fatal("repeater snapshot has an empty key")
			}
			if spec.Key != tt.want {
				t.Errorf("Key = %q, want %q", spec.Key, tt.want)
			}
		})
	}
}

func TestGroup_WithKey(t *testing.T) {
	g := FullGroup("Site").WithKey("site")
	if g.Key() != "site" {
		t.Errorf("Key() = %q, want site", g.Key())
	}
	if g.Get().Repeater {
		t.Error("WithKey should not make a repeater")
	}
}

func TestGroup_NestedGroupsAreSnapshots(t *testing.T) {
	slide := FullGroup("Slide").Repeater("slide").AddField(ImageField("image", "Image"))
	parent := FullGroup("Slides").AddGroup(slide)

	// Extending the child afterwards must not reach into the parent.
	_ = slide.AddField(StringField("caption", "Caption"))

	spec := parent.Get()
	if len(spec.Groups) != 1 {
		t.Fatalf("len(Groups) = %d, want 1", len(spec.Groups))
	}
	if spec.Groups[0].Fields.Len() != 1 {
		t.Errorf("nested fields = %d, want 1", spec.Groups[0].Fields.Len())
	}
}

func TestGroup_SnapshotIsolation(t *testing.T) {
	g := FullGroup("Details").AddField(SelectField("c", "C").AddOptions([]string{"Red"}))
	spec := g.Get()

	f, _ := spec.Fields.Get("c")
	f.Choices[0].Text = "changed"
	spec.Fields.Set("extra", StringField("extra", "Extra").Get())

	again := g.Get()
	if again.Fields.Len() != 1 {
		t.Error("mutating a snapshot reached the builder")
	}
	f2, _ := again.Fields.Get("c")
	if f2.Choices[0].Text != "Red" {
		t.Error("mutating snapshot choices reached the builder")
	}
}

func TestGroup_JSON(t *testing.T) {
	data, err := json.Marshal(FullGroup("Details").AddField(
		StringField("zeta", "Zeta"),
		StringField("alpha", "Alpha"),
	).Get())
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	s := string(data)
	if strings.Index(s, `"zeta"`) > strings.Index(s, `"alpha"`) {
		t.Errorf("fields not in declaration order: %s", s)
	}
	if !strings.Contains(s, `"groups":[]`) {
		t.Errorf("groups should serialize as an empty list: %s", s)
	}
}
