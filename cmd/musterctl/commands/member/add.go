package member

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
)

var addCmd = &cobra.Command{
	Use:   "add <group> <member>",
	Short: "Add a single member",
	Long: `Add one member to a group without touching the rest of the
membership.

Examples:
  # Add a local account
  musterctl member add operators alice

  # Add a domain principal
  musterctl member add operators 'CORP\ops-team'`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	group, ref := args[0], args[1]

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	member, err := client.AddMember(group, ref)
	if err != nil {
		return fmt.Errorf("failed to add '%s' to '%s': %w", ref, group, err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, member, fmt.Sprintf("Added '%s' to group '%s'", member.Display, group))
}
