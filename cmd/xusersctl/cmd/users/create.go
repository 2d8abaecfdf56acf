package users

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/prompt"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/render"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

var (
	createSetArgs []string
	createOutput  string
)

var createCmd = &cobra.Command{
	Use:   "create --set field=value...",
	Short: "Create a user",
	Long: `Creates an active user. Every profile field is required by the server:
username, first_name, last_name, email, birthday (YYYY-MM-DD), password and
the address fields city, country, district, street and zip_code.

The password is prompted for when not given with --set password=...`,
	Example: `  xusersctl users create \
    --set username=jdoe --set first_name=John --set last_name=Doe \
    --set email=jdoe@example.com --set birthday=1990-05-17 \
    --set city=Kazan --set country=Russia --set district=Vahitovsky \
    --set street=Baumana --set zip_code=420111`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		format, err := render.ParseFormat(createOutput)
		if err != nil {
			return err
		}
		assignments, warnings, err := parseSetArgs(createSetArgs)
		if err != nil {
			return err
		}
		for _, warning := range warnings {
			pterm.Warning.WithWriter(cmd.ErrOrStderr()).Println(warning)
		}

		ctx, cancel := cfg.WithTimeout(cmd.Context())
		defer cancel()

		users := usersController(cfg)
		if err := ensureRole(ctx, cfg, users); err != nil {
			return fmt.Errorf("failed to determine role: %w", err)
		}
		f := users.NewCreateForm()
		if f == nil {
			return errors.New("creating users requires the admin role")
		}
		if _, ok := assignments["password"]; !ok {
			password, err := prompt.Secret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password")
			if err != nil {
				return err
			}
			assignments["password"] = password
		}
		if err := f.SetAll(assignments); err != nil {
			return err
		}

		id, err := users.Create(ctx, f)
		if err != nil {
			render.FieldErrors(cmd.ErrOrStderr(), f)
			return fmt.Errorf("failed to create user: %w", err)
		}

		row, _ := users.Table().Row(id)
		if format != render.FormatTable {
			return render.Encode(cmd.OutOrStdout(), format, row.Record)
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("Created user: %s\n", row.Key(sdk.UserKey))
		return nil
	},
}

func init() {
	createCmd.Flags().StringArrayVar(&createSetArgs, "set", nil, "Field value (field=value). Repeatable")
	createCmd.Flags().StringVarP(&createOutput, "output", "o", "table", "Output format: table, json, yaml")
}
