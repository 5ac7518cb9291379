package group

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/pkg/apiclient"
)

var createDescription string

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new group",
	Long: `Create a new local group on the muster daemon.

Examples:
  # Create a group
  musterctl group create operators

  # Create a group with description
  musterctl group create operators --description "Backup operators"`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createDescription, "description", "", "Group description")
}

func runCreate(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	req := &apiclient.CreateGroupRequest{
		Name:        args[0],
		Description: createDescription,
	}

	group, err := client.CreateGroup(req)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, group, fmt.Sprintf("Group '%s' created successfully (SID: %s)", group.Name, group.SID))
}
