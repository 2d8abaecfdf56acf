package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token and role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		if err := authController(cfg).Logout(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}

		pterm.Success.WithWriter(cmd.OutOrStdout()).Println("Logged out successfully")
		return nil
	},
}
