package users

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/controller"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/filter"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/render"
)

var (
	listActive bool
	listSearch string
	listFilter string
	listOutput string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Long: `Lists users. --active and --search go through the server's search
endpoint; --filter narrows the result locally with a boolean expression over
the flattened record, for example:

  xusersctl users list --filter 'city == "Moscow" and "staff" in groups'

The first listing after login also records whether the session is an admin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		format, err := render.ParseFormat(listOutput)
		if err != nil {
			return err
		}
		f, err := filter.Parse(listFilter)
		if err != nil {
			return err
		}

		ctx, cancel := cfg.WithTimeout(cmd.Context())
		defer cancel()

		users := usersController(cfg)
		if err := users.Load(ctx, controller.ListOptions{ActiveOnly: listActive, Query: listSearch, Filter: f}); err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		return render.Table(cmd.OutOrStdout(), format, users.Table())
	},
}

func init() {
	listCmd.Flags().BoolVar(&listActive, "active", false, "Only active users")
	listCmd.Flags().StringVarP(&listSearch, "search", "q", "", "Server-side search term")
	listCmd.Flags().StringVar(&listFilter, "filter", "", "Boolean filter expression over user fields")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format: table, json, yaml")
}
