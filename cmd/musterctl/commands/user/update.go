package user

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/pkg/apiclient"
)

var (
	updateFullName    string
	updateDescription string
	updateDisable     bool
	updateEnable      bool
)

var updateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Update a user",
	Long: `Update a local user account. Only the given flags change;
everything else is left as it is.

Examples:
  # Change the display name
  musterctl user update alice --full-name "Alice B. Cooper"

  # Disable an account
  musterctl user update svc-backup --disable

  # Re-enable it
  musterctl user update svc-backup --enable`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateFullName, "full-name", "", "Full display name")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "User description")
	updateCmd.Flags().BoolVar(&updateDisable, "disable", false, "Disable the account")
	updateCmd.Flags().BoolVar(&updateEnable, "enable", false, "Enable the account")
	updateCmd.MarkFlagsMutuallyExclusive("disable", "enable")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	name := args[0]

	req := &apiclient.UpdateUserRequest{}
	if cmd.Flags().Changed("full-name") {
		req.FullName = &updateFullName
	}
	if cmd.Flags().Changed("description") {
		req.Description = &updateDescription
	}
	if updateDisable {
		disabled := true
		req.Disabled = &disabled
	}
	if updateEnable {
		disabled := false
		req.Disabled = &disabled
	}

	if req.FullName == nil && req.Description == nil && req.Disabled == nil {
		return fmt.Errorf("nothing to update: pass at least one of --full-name, --description, --disable, --enable")
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	user, err := client.UpdateUser(name, req)
	if err != nil {
		return fmt.Errorf("failed to update user '%s': %w", name, err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, user, fmt.Sprintf("User '%s' updated successfully", user.Name))
}
