package users

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/duallist"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/render"
)

var (
	groupsAdd    []string
	groupsRemove []string
	groupsSet    string
	groupsClear  bool
)

var groupsCmd = &cobra.Command{
	Use:   "groups <username>",
	Short: "Show or change a user's groups",
	Long: `Without flags, shows the user's assigned and available groups.

--add and --remove move groups between the two lists; --set replaces the
assignment with a comma separated list and --clear removes every group. The
whole resulting assignment is sent in one request.`,
	Example: `  xusersctl users groups jdoe --add ops --remove staff
  xusersctl users groups jdoe --set staff,ops`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		ctx, cancel := cfg.WithTimeout(cmd.Context())
		defer cancel()

		users := usersController(cfg)
		id, detail, err := openUser(ctx, users, args[0])
		if err != nil {
			return err
		}

		changed, err := applyGroupEdits(detail.Groups)
		if err != nil {
			return err
		}
		if !changed {
			render.Messages(cmd.OutOrStdout(), detail.GroupsForm)
			return render.DualList(cmd.OutOrStdout(), detail.GroupsForm.Title, detail.Groups)
		}

		if err := users.SubmitGroups(ctx, id); err != nil {
			render.FieldErrors(cmd.ErrOrStderr(), detail.GroupsForm)
			return fmt.Errorf("failed to update groups of %s: %w", args[0], err)
		}

		assigned := detail.Groups.Payload()
		if len(assigned) == 0 {
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("%s is in no groups\n", args[0])
			return nil
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("%s groups: %s\n", args[0], strings.Join(assigned, ", "))
		return nil
	},
}

func init() {
	groupsCmd.Flags().StringArrayVar(&groupsAdd, "add", nil, "Group to add. Repeatable")
	groupsCmd.Flags().StringArrayVar(&groupsRemove, "remove", nil, "Group to remove. Repeatable")
	groupsCmd.Flags().StringVar(&groupsSet, "set", "", "Comma separated groups replacing the assignment")
	groupsCmd.Flags().BoolVar(&groupsClear, "clear", false, "Remove every group")
	groupsCmd.MarkFlagsMutuallyExclusive("set", "clear")
	groupsCmd.MarkFlagsMutuallyExclusive("set", "add")
	groupsCmd.MarkFlagsMutuallyExclusive("set", "remove")
}

// applyGroupEdits moves names between the editor's lists according to the
// flags. It reports whether anything was requested.
func applyGroupEdits(e *duallist.Editor) (bool, error) {
	requested := groupsSet != "" || groupsClear || len(groupsAdd) > 0 || len(groupsRemove) > 0
	if !requested {
		return false, nil
	}
	if !e.Editable() {
		return false, errors.New("changing memberships requires the admin role")
	}

	add, remove := groupsAdd, groupsRemove
	if groupsSet != "" || groupsClear {
		if err := e.MoveAllRight(); err != nil {
			return false, err
		}
		add, remove = splitNames(groupsSet), nil
	}

	universe := e.Universe()
	for _, name := range append(slices.Clone(add), remove...) {
		if !slices.Contains(universe, name) {
			return false, fmt.Errorf("unknown group %q", name)
		}
	}

	if err := e.Select(duallist.Assigned, remove...); err != nil {
		return false, err
	}
	if err := e.MoveSelectedRight(); err != nil {
		return false, err
	}
	if err := e.Select(duallist.Available, add...); err != nil {
		return false, err
	}
	return true, e.MoveSelectedLeft()
}

func splitNames(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
