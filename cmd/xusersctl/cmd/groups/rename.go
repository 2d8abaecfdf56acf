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

var renameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		name, newName := args[0], args[1]

		ctx, cancel := cfg.WithTimeout(cmd.Context())
		defer cancel()

		groups := groupsController(cfg)
		id, detail, err := openGroup(ctx, groups, name)
		if err != nil {
			return err
		}
		if !detail.Form.CanSubmit() {
			return errors.New("renaming groups requires the admin role")
		}
		if err := detail.Form.Set(sdk.GroupKey, newName); err != nil {
			return err
		}

		if err := groups.SubmitName(ctx, id); err != nil {
			render.FieldErrors(cmd.ErrOrStderr(), detail.Form)
			return fmt.Errorf("failed to rename group %s: %w", name, err)
		}

		pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("Renamed group %s to %s\n", name, newName)
		return nil
	},
}
