// Package registry holds the configuration document served to the admin UI:
// the registered routes, keyed by slug, and the set of contributing plugins.
//
// A Registry is populated during bootstrap and read while serving. Requests
// that need actor-specific routes work on a Clone, so the shared registry has
// no writers once the server is up.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/artpar/agencms/core/schema"
	"github.com/artpar/agencms/pkg/ordered"
)

var (
	// ErrRouteNotFound is matched by the error AppendRoute returns when the
	// target slug is not registered.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMergeCarrier is returned when a route created by schema.LoadRoute is
	// passed to RegisterRoute. Carriers only hold groups for AppendRoute.
	ErrMergeCarrier = errors.New("merge carrier cannot be registered")
)

// RouteNotFoundError reports an append onto a slug that is not registered.
type RouteNotFoundError struct {
	Slug string
}

// Error returns the diagnostic shown to operators.
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("Route %s not found", e.Slug)
}

// Is makes errors.Is(err, ErrRouteNotFound) match.
func (e *RouteNotFoundError) Is(target error) bool {
	return target == ErrRouteNotFound
}

// Snapshot is the external form of the registry.
type Snapshot struct {
	Routes ordered.Map[schema.RouteSpec] `json:"routes"`
}

// Registry stores route snapshots and plugin names.
type Registry struct {
	mu sync.RWMutex

	// routes by slug, in registration order
	routes ordered.Map[schema.RouteSpec]

	plugins map[string]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		routes:  ordered.New[schema.RouteSpec](),
		plugins: make(map[string]struct{}),
	}
}

// RegisterRoute stores the route's snapshot under its slug, replacing any
// route already registered there.
func (r *Registry) RegisterRoute(route schema.Route) error {
	if route.IsCarrier() {
		return fmt.Errorf("register %q: %w", route.Slug(), ErrMergeCarrier)
	}
	if route.Slug() == "" {
		return fmt.Errorf("%w: route slug is required", schema.ErrInvalidArgument)
	}

	spec := route.Get()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes.Set(spec.Slug, spec)
	return nil
}

// AppendRoute merges the route's groups onto the registered route with the
// same slug and returns the merged groups, existing ones first. Every other
// attribute of the registered route is kept. When the slug is not registered
// nothing changes and a *RouteNotFoundError is returned.
func (r *Registry) AppendRoute(route schema.Route) ([]schema.GroupSpec, error) {
	slug := route.Slug()
	added := route.Get().Groups

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.routes.Get(slug)
	if !ok {
		return nil, &RouteNotFoundError{Slug: slug}
	}

	merged := make([]schema.GroupSpec, 0, len(existing.Groups)+len(added))
	merged = append(merged, existing.Groups...)
	merged = append(merged, added...)
	existing.Groups = merged

	r.routes.Set(slug, existing)
	return cloneGroups(merged), nil
}

// RegisterPlugin adds name to the plugin set. It reports whether the name was
// new; registering the same name twice is harmless.
func (r *Registry) RegisterPlugin(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		return false
	}
	r.plugins[name] = struct{}{}
	return true
}

// Plugins returns the plugin names sorted, which is the order their
// middleware is applied in.
func (r *Registry) Plugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasRoute reports whether slug is registered.
func (r *Registry) HasRoute(slug string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.routes.Has(slug)
}

// Route returns a copy of the route registered under slug.
func (r *Registry) Route(slug string) (schema.RouteSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.routes.Get(slug)
	if !ok {
		return schema.RouteSpec{}, false
	}
	return spec.Clone(), true
}

// Routes returns a copy of the routes mapping.
func (r *Registry) Routes() ordered.Map[schema.RouteSpec] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.cloneRoutes()
}

// All returns the document served to the admin UI. It does not modify the
// registry; two calls without registration in between are equal.
func (r *Registry) All() Snapshot {
	return Snapshot{Routes: r.Routes()}
}

// RouteCount returns the number of registered routes.
func (r *Registry) RouteCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.routes.Len()
}

// PluginCount returns the number of registered plugins.
func (r *Registry) PluginCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.plugins)
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &Registry{
		routes:  r.cloneRoutes(),
		plugins: make(map[string]struct{}, len(r.plugins)),
	}
	for name := range r.plugins {
		c.plugins[name] = struct{}{}
	}
	return c
}

// cloneRoutes must be called with the lock held.
func (r *Registry) cloneRoutes() ordered.Map[schema.RouteSpec] {
	c := ordered.New[schema.RouteSpec]()
	r.routes.Each(func(slug string, spec schema.RouteSpec) {
		c.Set(slug, spec.Clone())
	})
	return c
}

func cloneGroups(groups []schema.GroupSpec) []schema.GroupSpec {
	c := make([]schema.GroupSpec, len(groups))
	for i, g := range groups {
		c[i] = g.Clone()
	}
	return c
}
