package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/form"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/prompt"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/render"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the xusers API",
	Long: `Exchanges a username and password for an API token and stores it in
~/.xusers/session.json (or in memory with --ephemeral).

Missing credentials are prompted for. The password prompt does not echo;
piped stdin is read as the password without a prompt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		username := loginUsername
		if username == "" {
			var err error
			if username, err = prompt.Line(cmd.InOrStdin(), cmd.ErrOrStderr(), "Username"); err != nil {
				return err
			}
		}
		password := loginPassword
		if password == "" {
			var err error
			if password, err = prompt.Secret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password"); err != nil {
				return err
			}
		}

		f := form.BuildLoginForm()
		if err := f.SetAll(map[string]string{"username": username, "password": password}); err != nil {
			return err
		}

		ctx, cancel := cfg.WithTimeout(cmd.Context())
		defer cancel()

		if err := authController(cfg).Login(ctx, f); err != nil {
			render.FieldErrors(cmd.ErrOrStderr(), f)
			return fmt.Errorf("login failed: %w", err)
		}

		out := cmd.OutOrStdout()
		pterm.Success.WithWriter(out).Printf("Logged in as %s\n", username)
		pterm.Info.WithWriter(out).Printf("Server: %s\n", cfg.ServerURL)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")
}
