package member

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:   "remove <group> <member>",
	Short: "Remove a single member",
	Long: `Remove one member from a group.

Examples:
  # Remove a member (with confirmation)
  musterctl member remove operators alice

  # Skip the confirmation prompt
  musterctl member remove operators alice --force`,
	Args: cobra.ExactArgs(2),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	group, ref := args[0], args[1]

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("member", fmt.Sprintf("%s' from group '%s", ref, group), removeForce, func() error {
		return client.RemoveMember(group, ref)
	})
}
