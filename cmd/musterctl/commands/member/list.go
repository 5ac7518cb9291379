package member

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
)

var listCmd = &cobra.Command{
	Use:   "list <group>",
	Short: "List a group's members",
	Long: `List the current members of a group.

Members are listed in the directory's enumeration order, the same order
removals are applied in. A member whose account was deleted behind the
group's back shows its SID with no name.

Examples:
  # List members as table
  musterctl member list operators

  # List as JSON
  musterctl member list operators -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	group := args[0]

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	members, err := client.ListMembers(group)
	if err != nil {
		return fmt.Errorf("failed to list members of '%s': %w", group, err)
	}

	return cmdutil.PrintOutput(os.Stdout, members, len(members) == 0, "Group has no members.", MemberList(members))
}
