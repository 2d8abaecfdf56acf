package groups

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/filter"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/render"
)

var (
	listFilter string
	listOutput string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups with their member counts",
	Args:  cobra.NoArgs,
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

		groups := groupsController(cfg)
		if err := groups.Load(ctx, f); err != nil {
			return fmt.Errorf("failed to list groups: %w", err)
		}
		return render.Table(cmd.OutOrStdout(), format, groups.Table())
	},
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "", "Boolean filter expression, e.g. 'users_count > 0'")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format: table, json, yaml")
}
