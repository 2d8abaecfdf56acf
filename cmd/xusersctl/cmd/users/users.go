package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/controller"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/table"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// UsersCmd is the parent command for user operations
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List and edit users",
	Long: `Commands for listing users, editing profiles, changing passwords and
managing group memberships. Edits require the admin role.`,
}

func init() {
	UsersCmd.AddCommand(listCmd)
	UsersCmd.AddCommand(showCmd)
	UsersCmd.AddCommand(createCmd)
	UsersCmd.AddCommand(updateCmd)
	UsersCmd.AddCommand(passwdCmd)
	UsersCmd.AddCommand(groupsCmd)
}

func usersController(cfg *config.GlobalConfig) *controller.Users {
	return controller.NewUsers(cfg.ClientProvider, cfg.Store, cfg.Logger)
}

// openUser loads one user and expands its detail forms.
func openUser(ctx context.Context, users *controller.Users, username string) (table.RowID, *controller.UserDetail, error) {
	id, err := users.Open(ctx, username)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}
	detail, err := users.Expand(ctx, id)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load details of %s: %w", username, err)
	}
	return id, detail, nil
}

// ensureRole lists users once when the session has no role yet, so that
// capability checks see the detected role.
func ensureRole(ctx context.Context, cfg *config.GlobalConfig, users *controller.Users) error {
	if sdk.CurrentRole(cfg.Store) != sdk.RoleUnknown {
		return nil
	}
	return users.Load(ctx, controller.ListOptions{})
}

// parseSetArgs turns field=value flags into assignments. Later values for
// the same field win and produce a warning.
func parseSetArgs(args []string) (map[string]string, []string, error) {
	assignments := map[string]string{}
	var warnings []string

	for _, raw := range args {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		name, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --set %q (expected field=value)", raw)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, nil, fmt.Errorf("field name cannot be empty (%q)", raw)
		}
		if _, exists := assignments[name]; exists {
			warnings = append(warnings, fmt.Sprintf("duplicate field %q detected, last value wins", name))
		}
		assignments[name] = value
	}
	return assignments, warnings, nil
}
