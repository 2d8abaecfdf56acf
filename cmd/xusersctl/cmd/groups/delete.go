package groups

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/form"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a group",
	Long:  `Deletes a group. Its members lose the membership; the users remain.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		ctx, cancel := cfg.WithTimeout(cmd.Context())
		defer cancel()

		groups := groupsController(cfg)
		id, err := groups.Open(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get group %s: %w", args[0], err)
		}
		if err := groups.Delete(ctx, id); err != nil {
			if errors.Is(err, form.ErrReadOnly) {
				return errors.New("deleting groups requires the admin role")
			}
			return fmt.Errorf("failed to delete group %s: %w", args[0], err)
		}

		pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("Deleted group: %s\n", args[0])
		return nil
	},
}
