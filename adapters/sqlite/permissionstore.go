package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/agencms/ports"
)

// PermissionStore implements ports.PermissionStore using SQLite.
type PermissionStore struct {
	db *DB
}

// NewPermissionStore creates a new SQLite permission store.
func NewPermissionStore(db *DB) *PermissionStore {
	return &PermissionStore{db: db}
}

// Grant adds permission to role, creating the role if needed.
func (s *PermissionStore) Grant(ctx context.Context, role, permission string) error {
	if role == "" || permission == "" {
		return errors.New("role and permission must not be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO roles (name, created_at) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, role, time.Now().UTC()); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO role_permissions (role, permission) VALUES (?, ?)
		ON CONFLICT(role, permission) DO NOTHING
	`, role, permission); err != nil {
		return fmt.Errorf("grant permission: %w", err)
	}
	return tx.Commit()
}

// Revoke removes permission from role.
func (s *PermissionStore) Revoke(ctx context.Context, role, permission string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM role_permissions WHERE role = ? AND permission = ?
	`, role, permission)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Assign gives role to a user. The role must exist.
func (s *PermissionStore) Assign(ctx context.Context, userID, role string) error {
	if userID == "" || role == "" {
		return errors.New("user and role must not be empty")
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM roles WHERE name = ?`, role).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role, assigned_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id, role) DO NOTHING
	`, userID, role, time.Now().UTC())
	return err
}

// Unassign takes role away from a user.
func (s *PermissionStore) Unassign(ctx context.Context, userID, role string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM user_roles WHERE user_id = ? AND role = ?
	`, userID, role)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// HasPermission reports whether any role of the user grants permission.
func (s *PermissionStore) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role = ur.role
		WHERE ur.user_id = ? AND rp.permission = ?
		LIMIT 1
	`, userID, permission).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsGranted reports whether any role grants permission.
func (s *PermissionStore) IsGranted(ctx context.Context, permission string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM role_permissions WHERE permission = ? LIMIT 1
	`, permission).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListRoles returns every role sorted by name, permissions sorted.
func (s *PermissionStore) ListRoles(ctx context.Context) ([]ports.Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.name, r.created_at, rp.permission
		FROM roles r
		LEFT JOIN role_permissions rp ON rp.role = r.name
		ORDER BY r.name, rp.permission
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []ports.Role
	for rows.Next() {
		var (
			name       string
			createdAt  time.Time
			permission sql.NullString
		)
		if err := rows.Scan(&name, &createdAt, &permission); err != nil {
			return nil, err
		}

		if len(roles) == 0 || roles[len(roles)-1].Name != name {
			roles = append(roles, ports.Role{Name: name, Permissions: []string{}, CreatedAt: createdAt})
		}
		if permission.Valid {
			last := &roles[len(roles)-1]
			last.Permissions = append(last.Permissions, permission.String)
		}
	}
	return roles, rows.Err()
}

// RolesOf returns the roles assigned to a user, sorted.
func (s *PermissionStore) RolesOf(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role FROM user_roles WHERE user_id = ? ORDER BY role
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ensure interface compliance.
var _ ports.PermissionStore = (*PermissionStore)(nil)
