// Package memory provides in-memory store implementations for tests and
// single-process deployments without a database.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/artpar/agencms/ports"
)

// ErrNotFound is returned when a role, grant or assignment does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalid is returned for empty names.
var ErrInvalid = errors.New("role, user and permission must not be empty")

type role struct {
	permissions map[string]struct{}
	createdAt   time.Time
}

// PermissionStore is an in-memory implementation of ports.PermissionStore.
type PermissionStore struct {
	mu    sync.RWMutex
	roles map[string]*role
	users map[string]map[string]struct{} // user ID -> role names
	now   func() time.Time
}

// NewPermissionStore creates an empty permission store.
func NewPermissionStore() *PermissionStore {
	return &PermissionStore{
		roles: make(map[string]*role),
		users: make(map[string]map[string]struct{}),
		now:   time.Now,
	}
}

// Grant adds permission to roleName, creating the role if needed.
func (s *PermissionStore) Grant(ctx context.Context, roleName, permission string) error {
	if roleName == "" || permission == "" {
		return ErrInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.roles[roleName]
	if !ok {
		r = &role{permissions: make(map[string]struct{}), createdAt: s.now().UTC()}
		s.roles[roleName] = r
	}
	r.permissions[permission] = struct{}{}
	return nil
}

// Revoke removes permission from roleName.
func (s *PermissionStore) Revoke(ctx context.Context, roleName, permission string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.roles[roleName]
	if !ok {
		return ErrNotFound
	}
	if _, ok := r.permissions[permission]; !ok {
		return ErrNotFound
	}
	delete(r.permissions, permission)
	return nil
}

// Assign gives roleName to a user. The role must exist.
func (s *PermissionStore) Assign(ctx context.Context, userID, roleName string) error {
	if userID == "" || roleName == "" {
		return ErrInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[roleName]; !ok {
		return ErrNotFound
	}
	if s.users[userID] == nil {
		s.users[userID] = make(map[string]struct{})
	}
	s.users[userID][roleName] = struct{}{}
	return nil
}

// Unassign takes roleName away from a user.
func (s *PermissionStore) Unassign(ctx context.Context, userID, roleName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID][roleName]; !ok {
		return ErrNotFound
	}
	delete(s.users[userID], roleName)
	if len(s.users[userID]) == 0 {
		delete(s.users, userID)
	}
	return nil
}

// HasPermission reports whether any role of the user grants permission.
func (s *PermissionStore) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for name := range s.users[userID] {
		if r, ok := s.roles[name]; ok {
			if _, ok := r.permissions[permission]; ok {
				return true, nil
			}
		}
	}
	return false, nil
}

// IsGranted reports whether any role grants permission.
func (s *PermissionStore) IsGranted(ctx context.Context, permission string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.roles {
		if _, ok := r.permissions[permission]; ok {
			return true, nil
		}
	}
	return false, nil
}

// ListRoles returns every role sorted by name, permissions sorted.
func (s *PermissionStore) ListRoles(ctx context.Context) ([]ports.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := make([]ports.Role, 0, len(s.roles))
	for name, r := range s.roles {
		perms := make([]string, 0, len(r.permissions))
		for p := range r.permissions {
			perms = append(perms, p)
		}
		sort.Strings(perms)
		roles = append(roles, ports.Role{Name: name, Permissions: perms, CreatedAt: r.createdAt})
	}

	sort.Slice(roles, func(i, j int) bool {
		return roles[i].Name < roles[j].Name
	})
	return roles, nil
}

// RolesOf returns the roles assigned to a user, sorted.
func (s *PermissionStore) RolesOf(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.users[userID]))
	for name := range s.users[userID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Ensure interface compliance.
var _ ports.PermissionStore = (*PermissionStore)(nil)
