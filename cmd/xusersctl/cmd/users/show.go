package users

import (
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/render"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show <username>",
	Short: "Show a user's profile, password and group forms",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		format, err := render.ParseFormat(showOutput)
		if err != nil {
			return err
		}

		ctx, cancel := cfg.WithTimeout(cmd.Context())
		defer cancel()

		users := usersController(cfg)
		id, detail, err := openUser(ctx, users, args[0])
		if err != nil {
			return err
		}
		if format != render.FormatTable {
			row, _ := users.Table().Row(id)
			return render.Encode(cmd.OutOrStdout(), format, row.Record)
		}
		return render.UserDetail(cmd.OutOrStdout(), detail)
	},
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "table", "Output format: table, json, yaml")
}
