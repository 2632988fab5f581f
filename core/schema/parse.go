package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the top level of a definitions file.
type File struct {
	Routes []Definition `yaml:"routes"`
}

// Definition declares a route in YAML. See the package documentation for the
// format.
type Definition struct {
	Slug       string       `yaml:"slug"`
	Name       string       `yaml:"name,omitempty"`
	Section    string       `yaml:"section,omitempty"`
	Type       RouteType    `yaml:"type,omitempty"`
	Endpoints  EndpointsDef `yaml:"endpoints,omitempty"`
	Permission string       `yaml:"permission,omitempty"`
	Icon       string       `yaml:"icon,omitempty"`
	Hidden     bool         `yaml:"hidden,omitempty"`
	Append     bool         `yaml:"append,omitempty"`
	Groups     []GroupDef   `yaml:"groups,omitempty"`

	// Source is the file the definition was read from.
	Source string `yaml:"-"`
}

// GroupDef declares a group.
type GroupDef struct {
	Name     string     `yaml:"name"`
	Size     *int       `yaml:"size,omitempty"`
	Key      string     `yaml:"key,omitempty"`
	Repeater bool       `yaml:"repeater,omitempty"`
	Fields   []FieldDef `yaml:"fields,omitempty"`
	Groups   []GroupDef `yaml:"groups,omitempty"`
}

// FieldDef declares a field.
type FieldDef struct {
	Key      string    `yaml:"key"`
	Name     string    `yaml:"name,omitempty"`
	Type     FieldType `yaml:"type,omitempty"`
	Required bool      `yaml:"required,omitempty"`
	Readonly bool      `yaml:"readonly,omitempty"`
	Size     *int      `yaml:"size,omitempty"`
	List     int       `yaml:"list,omitempty"`
	Min      int       `yaml:"min,omitempty"`
	Max      int       `yaml:"max,omitempty"`
	Rows     int       `yaml:"rows,omitempty"`
	Mode     Mode      `yaml:"mode,omitempty"`
	Link     string    `yaml:"link,omitempty"`
	Ratio    *RatioDef `yaml:"ratio,omitempty"`
	Options  []string  `yaml:"options,omitempty"`
	Model    string    `yaml:"model,omitempty"`
}

// RatioDef declares an image ratio.
type RatioDef struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Resize bool `yaml:"resize,omitempty"`
}

// EndpointsDef is the endpoints attribute of a definition: a single path or a
// method to path mapping.
type EndpointsDef struct {
	path    string
	methods Endpoints
	mapping bool
}

// UnmarshalYAML accepts a scalar path or a mapping. Any other node kind is
// rejected with ErrInvalidArgument.
func (e *EndpointsDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*e = EndpointsDef{path: node.Value}
		return nil
	case yaml.MappingNode:
		methods := make(Endpoints, len(node.Content)/2)
		seen := make(map[Method]string, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: endpoints on line %d must map methods to paths", ErrInvalidArgument, key.Line)
			}
			m, err := ParseMethod(key.Value)
			if err != nil {
				return fmt.Errorf("endpoints on line %d: %w", key.Line, err)
			}
			if prev, dup := seen[m]; dup {
				return fmt.Errorf("%w: endpoints on line %d: %q and %q both name %s", ErrInvalidArgument, key.Line, prev, key.Value, m)
			}
			seen[m] = key.Value
			methods[m] = value.Value
		}
		*e = EndpointsDef{methods: methods, mapping: true}
		return nil
	default:
		return fmt.Errorf("%w: endpoints on line %d must be a path or a mapping", ErrInvalidArgument, node.Line)
	}
}

// IsZero lets omitempty drop unset endpoints.
func (e EndpointsDef) IsZero() bool {
	return !e.mapping && e.path == ""
}

// Resolve implements EndpointSource. Unset endpoints resolve to none.
func (e EndpointsDef) Resolve() (Endpoints, error) {
	if e.mapping {
		return e.methods.Resolve()
	}
	if e.path == "" {
		return Endpoints{}, nil
	}
	return Path(e.path).Resolve()
}

// Build assembles the route, generating permission-gated endpoints with check
// when the definition names a permission.
func (d Definition) Build(check Checker) (Route, error) {
	groups, err := buildGroups(d.Groups)
	if err != nil {
		return Route{}, fmt.Errorf("route %q: %w", d.Slug, err)
	}

	if d.Append {
		return LoadRoute(d.Slug).AddGroup(groups...), nil
	}

	var source EndpointSource = d.Endpoints
	if d.Permission != "" {
		if d.Endpoints.mapping {
			return Route{}, fmt.Errorf("%w: route %q: permission endpoints need a single path", ErrInvalidArgument, d.Slug)
		}
		path := d.Endpoints.path
		if path == "" {
			path = d.Slug
		}
		source = GenerateCrudEndpoints(check, d.Permission, path)
	}

	route, err := InitRoute(d.Slug, Label{Section: d.Section, Name: d.Name}, source, d.Type)
	if err != nil {
		return Route{}, err
	}
	if d.Hidden {
		route = route.Hidden()
	}
	if d.Icon != "" {
		route = route.Icon(d.Icon)
	}
	return route.AddGroup(groups...), nil
}

func buildGroups(defs []GroupDef) ([]Group, error) {
	groups := make([]Group, 0, len(defs))
	for _, def := range defs {
		g, err := def.Build()
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// Build assembles the group and its nested groups.
func (d GroupDef) Build() (Group, error) {
	size := SizeFull
	if d.Size != nil {
		size = *d.Size
	}
	g := SizedGroup(d.Name, size)
	if d.Repeater {
		g = g.Repeater(d.Key)
	} else if d.Key != "" {
		g = g.WithKey(d.Key)
	}

	for _, fd := range d.Fields {
		f, err := fd.Build()
		if err != nil {
			return Group{}, fmt.Errorf("group %q: %w", d.Name, err)
		}
		g = g.AddField(f)
	}

	nested, err := buildGroups(d.Groups)
	if err != nil {
		return Group{}, fmt.Errorf("group %q: %w", d.Name, err)
	}
	return g.AddGroup(nested...), nil
}

// Build assembles the field.
func (d FieldDef) Build() (Field, error) {
	typ := d.Type
	if typ == "" {
		typ = FieldTypeString
	}
	if !typ.Valid() {
		return Field{}, fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidArgument, d.Key, d.Type)
	}
	if !d.Mode.Valid() {
		return Field{}, fmt.Errorf("%w: field %q has unknown mode %q", ErrInvalidArgument, d.Key, d.Mode)
	}

	f := NewField(typ, d.Key, d.Name).
		Readonly(d.Readonly).
		List(d.List).
		MinLength(d.Min).
		MaxLength(d.Max).
		Mode(d.Mode).
		Link(d.Link)
	if d.Required {
		f = f.Required()
	}
	if d.Size != nil {
		f = f.Size(*d.Size)
	}
	if d.Rows > 0 {
		f = f.Rows(d.Rows)
	}
	if d.Ratio != nil {
		f = f.Ratio(d.Ratio.Width, d.Ratio.Height, d.Ratio.Resize)
	}
	if len(d.Options) > 0 {
		f = f.AddOptions(d.Options)
	}
	if d.Model != "" {
		f = f.Model(NewRelationship(d.Model))
	}
	return f, nil
}

// ParseFile parses definitions from a YAML file.
func ParseFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range defs {
		defs[i].Source = path
	}
	return defs, nil
}

// Parse parses definitions from YAML bytes.
func Parse(data []byte) ([]Definition, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	for _, def := range file.Routes {
		if err := Validate(def); err != nil {
			return nil, fmt.Errorf("validate route %q: %w", def.Slug, err)
		}
	}

	return file.Routes, nil
}

// ParseDir parses all definitions in a directory, including subdirectories.
// Files are read in lexical order, so registration order is stable.
func ParseDir(dir string) ([]Definition, error) {
	var defs []Definition

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := ParseDir(path)
			if err != nil {
				return nil, err
			}
			defs = append(defs, sub...)
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		fileDefs, err := ParseFile(path)
		if err != nil {
			return nil, err
		}

		defs = append(defs, fileDefs...)
	}

	return defs, nil
}

// Validate checks a definition by building it with every permission granted.
func Validate(def Definition) error {
	var errs []string

	if def.Slug == "" {
		errs = append(errs, "slug is required")
	}
	if !def.Append && def.Name == "" {
		errs = append(errs, "name is required")
	}
	if def.Append && (def.Name != "" || def.Type != "" || !def.Endpoints.IsZero() || def.Permission != "") {
		errs = append(errs, "an appended route only carries groups")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.Join(errs, "; "))
	}

	if _, err := def.Build(AllowAll); err != nil {
		return err
	}
	return nil
}

// IsInvalid reports whether err was caused by an invalid definition.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
