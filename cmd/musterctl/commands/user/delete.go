package user

import (
	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a user",
	Long: `Delete a local user account.

The account is also removed from every group it is a member of.

Examples:
  # Delete a user (with confirmation)
  musterctl user delete alice

  # Skip the confirmation prompt
  musterctl user delete alice --force`,
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

	return cmdutil.RunDeleteWithConfirmation("user", name, deleteForce, func() error {
		return client.DeleteUser(name)
	})
}
