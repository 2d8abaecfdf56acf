package users

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/prompt"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/render"
)

var passwdPassword string

var passwdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Set a user's password",
	Long: `Sets a new password for the user. The password is prompted for without
echo when --password is not given. Requires the admin role.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		ctx, cancel := cfg.WithTimeout(cmd.Context())
		defer cancel()

		users := usersController(cfg)
		id, detail, err := openUser(ctx, users, args[0])
		if err != nil {
			return err
		}
		if detail.Password == nil {
			return errors.New("changing passwords requires the admin role")
		}

		password := passwdPassword
		if password == "" {
			if password, err = prompt.Secret(cmd.InOrStdin(), cmd.ErrOrStderr(), "New password"); err != nil {
				return err
			}
		}
		if err := detail.Password.Set("password", password); err != nil {
			return err
		}

		if err := users.SubmitPassword(ctx, id); err != nil {
			render.FieldErrors(cmd.ErrOrStderr(), detail.Password)
			return fmt.Errorf("failed to change password of %s: %w", args[0], err)
		}

		pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("Password changed for %s (last updated %s)\n",
			args[0], detail.Profile.Value("last_update"))
		return nil
	},
}

func init() {
	passwdCmd.Flags().StringVarP(&passwdPassword, "password", "p", "", "New password (prompted when omitted)")
}
