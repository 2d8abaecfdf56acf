package groups

import (
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/render"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a group and its members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		format, err := render.ParseFormat(showOutput)
		if err != nil {
			return err
		}

		ctx, cancel := cfg.WithTimeout(cmd.Context())
		defer cancel()

		groups := groupsController(cfg)
		id, detail, err := openGroup(ctx, groups, args[0])
		if err != nil {
			return err
		}
		if format != render.FormatTable {
			row, _ := groups.Table().Row(id)
			rec := row.Record.Clone()
			rec["users"] = detail.Members.Assigned()
			return render.Encode(cmd.OutOrStdout(), format, rec)
		}
		return render.GroupDetail(cmd.OutOrStdout(), detail)
	},
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "table", "Output format: table, json, yaml")
}
