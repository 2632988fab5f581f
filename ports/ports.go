// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/ and app/.
package ports

import (
	"context"
	"time"

	"github.com/artpar/agencms/core/schema"
)

// -----------------------------------------------------------------------------
// Identity
// -----------------------------------------------------------------------------

// Actor is the authenticated caller of a request.
type Actor struct {
	ID    string
	Email string
}

// IsZero reports whether no actor is set.
func (a Actor) IsZero() bool {
	return a.ID == ""
}

type actorKey struct{}

// WithActor returns a context carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored in ctx.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// -----------------------------------------------------------------------------
// Authorization Ports
// -----------------------------------------------------------------------------

// Authorizer answers whether an actor holds a permission.
type Authorizer interface {
	Allows(ctx context.Context, actor Actor, permission string) (bool, error)
}

// Role is a named set of permissions.
type Role struct {
	Name        string
	Permissions []string
	CreatedAt   time.Time
}

// PermissionStore persists roles, their permissions and role assignments.
type PermissionStore interface {
	// Grant adds permission to role, creating the role if needed.
	Grant(ctx context.Context, role, permission string) error

	// Revoke removes permission from role.
	Revoke(ctx context.Context, role, permission string) error

	// Assign gives a role to a user.
	Assign(ctx context.Context, userID, role string) error

	// Unassign takes a role away from a user.
	Unassign(ctx context.Context, userID, role string) error

	// HasPermission reports whether any role of the user grants permission.
	HasPermission(ctx context.Context, userID, permission string) (bool, error)

	// IsGranted reports whether any role grants permission to anyone.
	IsGranted(ctx context.Context, permission string) (bool, error)

	// ListRoles returns every role with its permissions, sorted by name.
	ListRoles(ctx context.Context) ([]Role, error)

	// RolesOf returns the role names assigned to a user, sorted.
	RolesOf(ctx context.Context, userID string) ([]string, error)
}

// -----------------------------------------------------------------------------
// Plugin Ports
// -----------------------------------------------------------------------------

// RouteRegistrar is the part of the configuration registry plugins write to.
type RouteRegistrar interface {
	RegisterRoute(route schema.Route) error
	AppendRoute(route schema.Route) ([]schema.GroupSpec, error)
	HasRoute(slug string) bool
}

// Plugin contributes routes to the configuration served to an actor. The
// checker answers permission questions for that actor.
type Plugin interface {
	Name() string
	Contribute(ctx context.Context, reg RouteRegistrar, check schema.Checker) error
}

// PluginFunc adapts a function to Plugin.
type PluginFunc struct {
	ID string
	Fn func(ctx context.Context, reg RouteRegistrar, check schema.Checker) error
}

// Name returns the plugin name.
func (p PluginFunc) Name() string { return p.ID }

// Contribute calls Fn.
func (p PluginFunc) Contribute(ctx context.Context, reg RouteRegistrar, check schema.Checker) error {
	return p.Fn(ctx, reg, check)
}

// -----------------------------------------------------------------------------
// Observability Ports
// -----------------------------------------------------------------------------

// Metrics records configuration service events.
type Metrics interface {
	ConfigServed(status string, d time.Duration)
	AppendFailed(slug string)
	PluginFailed(plugin string)
	PermissionChecked(permission string, allowed bool)
	DefinitionsReloaded(ok bool)
	SetRegistered(routes, plugins int)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) ConfigServed(string, time.Duration) {}
func (NopMetrics) AppendFailed(string)                {}
func (NopMetrics) PluginFailed(string)                {}
func (NopMetrics) PermissionChecked(string, bool)     {}
func (NopMetrics) DefinitionsReloaded(bool)           {}
func (NopMetrics) SetRegistered(int, int)             {}

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}
