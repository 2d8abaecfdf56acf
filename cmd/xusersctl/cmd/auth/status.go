package auth

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/capability"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	Long: `Shows the stored session and what its role is allowed to do.

The role is learned from the login response when the server sends one, and
otherwise from the first user listing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		out := cmd.OutOrStdout()

		session, err := cfg.Store.Load()
		if err != nil || !session.HasToken() {
			return fmt.Errorf("not logged in")
		}

		description, err := cfg.ClientProvider.Describe()
		if err != nil {
			return err
		}
		pterm.DefaultSection.WithWriter(out).Println("Authentication Status")
		pterm.Info.WithWriter(out).Printf("Logged in to %s\n", description)
		if !session.CreatedAt.IsZero() {
			pterm.Info.WithWriter(out).Printf("Since: %s\n", session.CreatedAt.Local().Format(time.RFC1123))
		}

		role := session.EffectiveRole()
		if role == sdk.RoleUnknown {
			pterm.Warning.WithWriter(out).Println("Role not yet determined; run `xusersctl users list` to detect it")
			return nil
		}
		caps, err := capability.New(role)
		if err != nil {
			return err
		}

		pterm.DefaultSection.WithWriter(out).Println("Capabilities")
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ACTION\tALLOWED")
		for _, entry := range []struct {
			action  string
			allowed bool
		}{
			{"edit users", caps.EditUsers()},
			{"create users", caps.CreateUsers()},
			{"change passwords", caps.ChangePasswords()},
			{"edit memberships", caps.EditMemberships()},
			{"edit groups", caps.EditGroups()},
			{"create groups", caps.CreateGroups()},
			{"delete groups", caps.DeleteGroups()},
		} {
			fmt.Fprintf(w, "%s\t%t\n", entry.action, entry.allowed)
		}
		return w.Flush()
	},
}
