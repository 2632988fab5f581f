package schema

import "fmt"

// RouteType controls how the admin UI presents a route.
type RouteType string

const (
	// RouteTypeCollection is a list of records.
	RouteTypeCollection RouteType = "collection"
	// RouteTypeSingle is a single record, e.g. site settings.
	RouteTypeSingle RouteType = "single"
	// RouteTypeHidden is served but left out of the navigation.
	RouteTypeHidden RouteType = "hidden"
)

// Valid reports whether t is a known route type.
func (t RouteType) Valid() bool {
	return t == RouteTypeCollection || t == RouteTypeSingle || t == RouteTypeHidden
}

// DefaultIcon is the icon of a route that sets none.
const DefaultIcon = "filter_list"

// RouteSpec is the serialized form of a route.
type RouteSpec struct {
	Slug      string      `json:"slug"`
	Name      string      `json:"name"`
	Section   string      `json:"section,omitempty"`
	Type      RouteType   `json:"type"`
	Endpoints Endpoints   `json:"endpoints"`
	Icon      string      `json:"icon"`
	Groups    []GroupSpec `json:"groups"`
}

// Clone returns a deep copy of s.
func (s RouteSpec) Clone() RouteSpec {
	c := s
	c.Endpoints = s.Endpoints.Clone()
	c.Groups = cloneGroups(s.Groups)
	return c
}

// Label is the display name of a route and the navigation section it is
// listed under.
type Label struct {
	Section string
	Name    string
}

// Title labels a route whose section is its own name.
func Title(name string) Label {
	return Label{Section: name, Name: name}
}

// InSection labels a route listed under section.
func InSection(section, name string) Label {
	return Label{Section: section, Name: name}
}

// Route builds an addressable resource of the admin UI.
type Route struct {
	spec    RouteSpec
	carrier bool
}

// InitRoute creates a route. endpoints may be a Path, an Endpoints mapping or
// nil for none. An empty type means RouteTypeCollection.
func InitRoute(slug string, label Label, endpoints EndpointSource, typ RouteType) (Route, error) {
	if slug == "" {
		return Route{}, fmt.Errorf("%w: route slug is required", ErrInvalidArgument)
	}
	if typ == "" {
		typ = RouteTypeCollection
	}
	if !typ.Valid() {
		return Route{}, fmt.Errorf("%w: route %q has unknown type %q", ErrInvalidArgument, slug, typ)
	}

	resolved := Endpoints{}
	if endpoints != nil {
		var err error
		if resolved, err = endpoints.Resolve(); err != nil {
			return Route{}, fmt.Errorf("route %q endpoints: %w", slug, err)
		}
	}

	section := label.Section
	if section == "" {
		section = label.Name
	}

	return Route{spec: RouteSpec{
		Slug:      slug,
		Name:      label.Name,
		Section:   section,
		Type:      typ,
		Endpoints: resolved,
		Icon:      DefaultIcon,
		Groups:    []GroupSpec{},
	}}, nil
}

// InitSingleRoute is InitRoute with RouteTypeSingle.
func InitSingleRoute(slug string, label Label, endpoints EndpointSource) (Route, error) {
	return InitRoute(slug, label, endpoints, RouteTypeSingle)
}

// LoadRoute creates a bare route that only carries groups to be appended onto
// the registered route with the same slug. It has no name, type or endpoints
// and cannot be registered on its own.
func LoadRoute(slug string) Route {
	return Route{
		spec:    RouteSpec{Slug: slug, Groups: []GroupSpec{}},
		carrier: true,
	}
}

// Slug returns the route's identifier.
func (r Route) Slug() string {
	return r.spec.Slug
}

// IsCarrier reports whether r was created by LoadRoute.
func (r Route) IsCarrier() bool {
	return r.carrier
}

// AddGroup appends groups.
func (r Route) AddGroup(groups ...Group) Route {
	appended := make([]GroupSpec, len(r.spec.Groups), len(r.spec.Groups)+len(groups))
	copy(appended, r.spec.Groups)
	for _, g := range groups {
		appended = append(appended, g.Get())
	}
	r.spec.Groups = appended
	return r
}

// Hidden keeps the route out of the navigation.
func (r Route) Hidden() Route {
	r.spec.Type = RouteTypeHidden
	return r
}

// Icon sets the navigation icon.
func (r Route) Icon(key string) Route {
	r.spec.Icon = key
	return r
}

// Get returns the route snapshot.
func (r Route) Get() RouteSpec {
	return r.spec.Clone()
}
