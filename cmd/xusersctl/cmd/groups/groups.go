package groups

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/config"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/controller"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/duallist"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/table"
)

// GroupsCmd is the parent command for group operations
var GroupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List and manage groups",
	Long: `Commands for listing groups, renaming them, editing their members,
creating and deleting them. Changes require the admin role.`,
}

func init() {
	GroupsCmd.AddCommand(listCmd)
	GroupsCmd.AddCommand(showCmd)
	GroupsCmd.AddCommand(createCmd)
	GroupsCmd.AddCommand(renameCmd)
	GroupsCmd.AddCommand(membersCmd)
	GroupsCmd.AddCommand(deleteCmd)
}

func groupsController(cfg *config.GlobalConfig) *controller.Groups {
	return controller.NewGroups(cfg.ClientProvider, cfg.Store, cfg.Logger)
}

// openGroup loads one group and expands its rename form and member list.
func openGroup(ctx context.Context, groups *controller.Groups, name string) (table.RowID, *controller.GroupDetail, error) {
	id, err := groups.Open(ctx, name)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to get group %s: %w", name, err)
	}
	detail, err := groups.Expand(ctx, id)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load members of %s: %w", name, err)
	}
	return id, detail, nil
}

// editMembers applies add/remove/replace requests to e. replace, when not
// nil, becomes the whole assignment before add and remove are applied.
func editMembers(e *duallist.Editor, replace, add, remove []string) error {
	universe := e.Universe()
	for _, name := range slices.Concat(replace, add, remove) {
		if !slices.Contains(universe, name) {
			return fmt.Errorf("unknown user %q", name)
		}
	}

	if replace != nil {
		if err := e.MoveAllRight(); err != nil {
			return err
		}
		add = slices.Concat(replace, add)
	}
	if err := e.Select(duallist.Assigned, remove...); err != nil {
		return err
	}
	if err := e.MoveSelectedRight(); err != nil {
		return err
	}
	if err := e.Select(duallist.Available, add...); err != nil {
		return err
	}
	return e.MoveSelectedLeft()
}

func splitNames(list string) []string {
	names := []string{}
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
