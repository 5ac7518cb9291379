package group

import (
	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a group",
	Long: `Delete a local group.

The group's membership records go with it; member accounts themselves
are not touched.

Examples:
  # Delete a group (with confirmation)
  musterctl group delete operators

  # Skip the confirmation prompt
  musterctl group delete operators --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("group", name, deleteForce, func() error {
		return client.DeleteGroup(name)
	})
}
