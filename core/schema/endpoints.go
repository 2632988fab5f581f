package schema

import (
	"fmt"
	"strings"
)

// Method is an HTTP method a route's API accepts.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// Methods lists the supported methods in CRUD order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete}

// crudSuffixes maps each method to the permission suffix that gates it.
var crudSuffixes = map[Method]string{
	MethodGet:    "read",
	MethodPost:   "create",
	MethodPut:    "update",
	MethodDelete: "delete",
}

// ParseMethod normalizes a method name. Anything other than GET, POST, PUT or
// DELETE is rejected with ErrInvalidArgument.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := crudSuffixes[m]; !ok {
		return "", fmt.Errorf("%w: unsupported method %q", ErrInvalidArgument, s)
	}
	return m, nil
}

// CrudPermission returns the permission key gating method on a resource,
// e.g. CrudPermission("pages", MethodPut) is "pages_update".
func CrudPermission(prefix string, method Method) string {
	return prefix + "_" + crudSuffixes[method]
}

// EndpointSource produces the method to path mapping of a route.
type EndpointSource interface {
	Resolve() (Endpoints, error)
}

// Endpoints maps methods to API paths.
type Endpoints map[Method]string

// Resolve validates the mapping and returns a copy of it.
func (e Endpoints) Resolve() (Endpoints, error) {
	c := make(Endpoints, len(e))
	for m, path := range e {
		if _, ok := crudSuffixes[m]; !ok {
			return nil, fmt.Errorf("%w: unsupported method %q", ErrInvalidArgument, m)
		}
		c[m] = path
	}
	return c, nil
}

// Clone returns a copy of e. The copy is never nil.
func (e Endpoints) Clone() Endpoints {
	c := make(Endpoints, len(e))
	for m, path := range e {
		c[m] = path
	}
	return c
}

// Path is a single API path served for every method.
type Path string

// Resolve expands the path to all four methods.
func (p Path) Resolve() (Endpoints, error) {
	e := make(Endpoints, len(Methods))
	for _, m := range Methods {
		e[m] = string(p)
	}
	return e, nil
}

// Checker answers permission questions for the current actor.
type Checker interface {
	Allows(permission string) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(permission string) bool

// Allows calls f.
func (f CheckerFunc) Allows(permission string) bool {
	return f(permission)
}

// AllowAll permits everything.
var AllowAll Checker = CheckerFunc(func(string) bool { return true })

// DenyAll permits nothing.
var DenyAll Checker = CheckerFunc(func(string) bool { return false })

// GenerateCrudEndpoints maps each method to path when the checker allows the
// matching permission ({permission}_read for GET, _create for POST, _update for
// PUT, _delete for DELETE). Denied methods are left out; this is how a route
// hides verbs the actor may not use.
func GenerateCrudEndpoints(check Checker, permission, path string) Endpoints {
	e := make(Endpoints, len(Methods))
	for _, m := range Methods {
		if check.Allows(CrudPermission(permission, m)) {
			e[m] = path
		}
	}
	return e
}
