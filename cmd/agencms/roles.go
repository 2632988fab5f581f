package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/artpar/agencms/bootstrap"
	"github.com/artpar/agencms/ports"
	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage roles and permissions",
	Long: `Manage the roles that gate the configuration document.

A user holds a permission when one of their roles grants it. CRUD
permissions are named <prefix>_read, <prefix>_create, <prefix>_update and
<prefix>_delete.

Examples:
  agencms roles grant admin admin_access
  agencms roles grant editor pages_read
  agencms roles assign user-1 editor
  agencms roles list
  agencms roles list --user user-1`,
}

var rolesGrantCmd = &cobra.Command{
	Use:   "grant <role> <permission>...",
	Short: "Grant permissions to a role, creating it if needed",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRolesGrant,
}

var rolesRevokeCmd = &cobra.Command{
	Use:   "revoke <role> <permission>...",
	Short: "Revoke permissions from a role",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRolesRevoke,
}

var rolesAssignCmd = &cobra.Command{
	Use:   "assign <user-id> <role>",
	Short: "Assign a role to a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runRolesAssign,
}

var rolesUnassignCmd = &cobra.Command{
	Use:   "unassign <user-id> <role>",
	Short: "Remove a role from a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runRolesUnassign,
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roles, or the roles of one user",
	RunE:  runRolesList,
}

var (
	rolesUser string
)

func init() {
	rootCmd.AddCommand(rolesCmd)

	rolesCmd.AddCommand(rolesGrantCmd)
	rolesCmd.AddCommand(rolesRevokeCmd)
	rolesCmd.AddCommand(rolesAssignCmd)
	rolesCmd.AddCommand(rolesUnassignCmd)
	rolesCmd.AddCommand(rolesListCmd)

	rolesListCmd.Flags().StringVar(&rolesUser, "user", "", "only list the roles of this user")
}

// withStore runs fn against the permission database.
func withStore(fn func(ctx context.Context, store ports.PermissionStore) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, store, err := bootstrap.OpenStore(ctx, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return fn(ctx, store)
}

func runRolesGrant(cmd *cobra.Command, args []string) error {
	role, permissions := args[0], args[1:]
	return withStore(func(ctx context.Context, store ports.PermissionStore) error {
		for _, p := range permissions {
			if err := store.Grant(ctx, role, p); err != nil {
				return fmt.Errorf("failed to grant %s: %w", p, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to role %s\n", strings.Join(permissions, ", "), role)
		return nil
	})
}

func runRolesRevoke(cmd *cobra.Command, args []string) error {
	role, permissions := args[0], args[1:]
	return withStore(func(ctx context.Context, store ports.PermissionStore) error {
		for _, p := range permissions {
			if err := store.Revoke(ctx, role, p); err != nil {
				return fmt.Errorf("failed to revoke %s: %w", p, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s from role %s\n", strings.Join(permissions, ", "), role)
		return nil
	})
}

func runRolesAssign(cmd *cobra.Command, args []string) error {
	user, role := args[0], args[1]
	return withStore(func(ctx context.Context, store ports.PermissionStore) error {
		if err := store.Assign(ctx, user, role); err != nil {
			return fmt.Errorf("failed to assign role: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Assigned role %s to %s\n", role, user)
		return nil
	})
}

func runRolesUnassign(cmd *cobra.Command, args []string) error {
	user, role := args[0], args[1]
	return withStore(func(ctx context.Context, store ports.PermissionStore) error {
		if err := store.Unassign(ctx, user, role); err != nil {
			return fmt.Errorf("failed to unassign role: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed role %s from %s\n", role, user)
		return nil
	})
}

func runRolesList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	return withStore(func(ctx context.Context, store ports.PermissionStore) error {
		if rolesUser != "" {
			names, err := store.RolesOf(ctx, rolesUser)
			if err != nil {
				return fmt.Errorf("failed to list roles: %w", err)
			}
			if len(names) == 0 {
				fmt.Fprintf(out, "%s has no roles.\n", rolesUser)
				return nil
			}
			fmt.Fprintln(out, strings.Join(names, "\n"))
			return nil
		}

		roles, err := store.ListRoles(ctx)
		if err != nil {
			return fmt.Errorf("failed to list roles: %w", err)
		}
		if len(roles) == 0 {
			fmt.Fprintln(out, "No roles found.")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Create one with: agencms roles grant admin admin_access")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ROLE\tPERMISSIONS\tCREATED")
		fmt.Fprintln(w, "----\t-----------\t-------")
		for _, r := range roles {
			perms := strings.Join(r.Permissions, ",")
			if perms == "" {
				perms = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, perms, r.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	})
}
