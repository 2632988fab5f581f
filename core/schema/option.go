package schema

import "strings"

// OptionSpec is a select choice as served to the renderer.
type OptionSpec struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Option builds a select choice.
type Option struct {
	spec OptionSpec
}

// NewOption creates a choice. An empty value defaults to "new" and an empty
// text to "New Option".
func NewOption(value, text string) Option {
	o := Option{spec: OptionSpec{Value: "new", Text: "New Option"}}
	if value != "" {
		o.spec.Value = value
	}
	if text != "" {
		o.spec.Text = text
	}
	return o
}

// OptionFromText creates a choice whose value is the lower-cased text.
func OptionFromText(text string) Option {
	return NewOption(strings.ToLower(text), text)
}

// Get returns the choice snapshot.
func (o Option) Get() OptionSpec {
	return o.spec
}

// RelationshipSpec identifies a related resource. The zero value serializes as
// an empty object.
type RelationshipSpec struct {
	Model string `json:"model,omitempty"`
}

// Relationship builds a reference to a related resource.
type Relationship struct {
	spec RelationshipSpec
}

// NewRelationship references the resource named model.
func NewRelationship(model string) Relationship {
	return Relationship{spec: RelationshipSpec{Model: model}}
}

// Get returns the relationship snapshot.
func (r Relationship) Get() RelationshipSpec {
	return r.spec
}
