package auth

import (
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/controller"
)

// AuthCmd is the parent command for auth operations
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Commands for managing the stored login session.`,
}

func init() {
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
	AuthCmd.AddCommand(exportCmd)
}

// authController wires the login flow to the command's session. The CLI
// has a single route, so navigation is only logged.
func authController(cfg *config.GlobalConfig) *controller.Auth {
	log := cfg.Logger.Sugar()
	nav := controller.NavigatorFunc(func(route controller.Route) {
		log.Debugw("navigate", "route", route)
	})
	return controller.NewAuth(cfg.ClientProvider, cfg.Store, nav, cfg.Logger)
}
