package user

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/pkg/apiclient"
)

var (
	createFullName    string
	createDescription string
	createDisabled    bool
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new user",
	Long: `Create a new local user account on the muster daemon.

The account is created in the machine's local domain and assigned the
next free security identifier.

Examples:
  # Create a user
  musterctl user create alice

  # Create a user with details
  musterctl user create alice --full-name "Alice Cooper" --description "Build operator"

  # Create a disabled user
  musterctl user create svc-backup --disabled`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createFullName, "full-name", "", "Full display name")
	createCmd.Flags().StringVar(&createDescription, "description", "", "User description")
	createCmd.Flags().BoolVar(&createDisabled, "disabled", false, "Create the account disabled")
}

func runCreate(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	req := &apiclient.CreateUserRequest{
		Name:        args[0],
		FullName:    createFullName,
		Description: createDescription,
		Disabled:    createDisabled,
	}

	user, err := client.CreateUser(req)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, user, fmt.Sprintf("User '%s' created successfully (SID: %s)", user.Name, user.SID))
}
