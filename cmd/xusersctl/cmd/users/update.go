package users

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/form"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/render"
)

var updateSetArgs []string

var updateCmd = &cobra.Command{
	Use:   "update <username> --set field=value...",
	Short: "Update a user's profile",
	Long: `Applies field=value assignments to the user's profile form and submits
it. Fields that are not assigned keep their current values. date_joined and
last_update are managed by the server and cannot be set.`,
	Example: `  xusersctl users update jdoe --set street=Tverskaya --set is_active=false`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		assignments, warnings, err := parseSetArgs(updateSetArgs)
		if err != nil {
			return err
		}
		if len(assignments) == 0 {
			return errors.New("nothing to update (use --set field=value)")
		}
		for _, warning := range warnings {
			pterm.Warning.WithWriter(cmd.ErrOrStderr()).Println(warning)
		}

		ctx, cancel := cfg.WithTimeout(cmd.Context())
		defer cancel()

		users := usersController(cfg)
		id, detail, err := openUser(ctx, users, args[0])
		if err != nil {
			return err
		}
		if !detail.Profile.CanSubmit() {
			return errors.New("updating users requires the admin role")
		}
		if err := detail.Profile.SetAll(assignments); err != nil {
			if errors.Is(err, form.ErrUnknownField) && assignments["password"] != "" {
				return fmt.Errorf("%w (use `xusersctl users passwd`)", err)
			}
			return err
		}

		if err := users.SubmitProfile(ctx, id); err != nil {
			render.FieldErrors(cmd.ErrOrStderr(), detail.Profile)
			return fmt.Errorf("failed to update user %s: %w", args[0], err)
		}

		pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("Updated user: %s\n", args[0])
		return render.Form(cmd.OutOrStdout(), detail.Profile)
	},
}

func init() {
	updateCmd.Flags().StringArrayVar(&updateSetArgs, "set", nil, "Field value (field=value). Repeatable")
}
