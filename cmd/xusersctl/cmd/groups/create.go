package groups

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/render"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		ctx, cancel := cfg.WithTimeout(cmd.Context())
		defer cancel()

		groups := groupsController(cfg)
		if sdk.CurrentRole(cfg.Store) == sdk.RoleUnknown {
			if err := groups.Load(ctx, nil); err != nil {
				return fmt.Errorf("failed to determine role: %w", err)
			}
		}
		f := groups.NewCreateForm()
		if f == nil {
			return errors.New("creating groups requires the admin role")
		}
		if err := f.Set(sdk.GroupKey, args[0]); err != nil {
			return err
		}

		if _, err := groups.Create(ctx, f); err != nil {
			render.FieldErrors(cmd.ErrOrStderr(), f)
			return fmt.Errorf("failed to create group %s: %w", args[0], err)
		}

		pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("Created group: %s\n", args[0])
		return nil
	},
}
