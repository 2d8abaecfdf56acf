package groups

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/render"
)

var (
	membersAdd    []string
	membersRemove []string
	membersSet    string
	membersClear  bool
)

var membersCmd = &cobra.Command{
	Use:   "members <name>",
	Short: "Show or change a group's members",
	Long: `Without flags, shows the group's members and, for admins, the users that
can be added.

--add and --remove change individual members; --set replaces the member
list with a comma separated list and --clear empties it. The resulting list
is sent in one request.`,
	Example: `  xusersctl groups members staff --add jdoe --remove asmith
  xusersctl groups members staff --set jdoe,root`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		name := args[0]

		ctx, cancel := cfg.WithTimeout(cmd.Context())
		defer cancel()

		groups := groupsController(cfg)
		id, detail, err := openGroup(ctx, groups, name)
		if err != nil {
			return err
		}

		var replace []string
		switch {
		case membersClear:
			replace = []string{}
		case membersSet != "":
			replace = splitNames(membersSet)
		}
		if replace == nil && len(membersAdd) == 0 && len(membersRemove) == 0 {
			return render.DualList(cmd.OutOrStdout(), detail.MembersForm.Title, detail.Members)
		}
		if !detail.Members.Editable() {
			return errors.New("changing members requires the admin role")
		}
		if err := editMembers(detail.Members, replace, membersAdd, membersRemove); err != nil {
			return err
		}

		if err := groups.SubmitMembers(ctx, id); err != nil {
			render.FieldErrors(cmd.ErrOrStderr(), detail.MembersForm)
			return fmt.Errorf("failed to update members of %s: %w", name, err)
		}

		members := detail.Members.Payload()
		if len(members) == 0 {
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("%s has no members\n", name)
			return nil
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("%s members: %s\n", name, strings.Join(members, ", "))
		return nil
	},
}

func init() {
	membersCmd.Flags().StringArrayVar(&membersAdd, "add", nil, "User to add. Repeatable")
	membersCmd.Flags().StringArrayVar(&membersRemove, "remove", nil, "User to remove. Repeatable")
	membersCmd.Flags().StringVar(&membersSet, "set", "", "Comma separated users replacing the member list")
	membersCmd.Flags().BoolVar(&membersClear, "clear", false, "Remove every member")
	membersCmd.MarkFlagsMutuallyExclusive("set", "clear")
}
