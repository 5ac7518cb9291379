package group

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/pkg/apiclient"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all groups",
	Long: `List all local groups on the muster daemon.

Examples:
  # List groups as table
  musterctl group list

  # List as JSON
  musterctl group list -o json`,
	RunE: runList,
}

// GroupList is a list of groups for table rendering.
type GroupList []apiclient.Group

// Headers implements TableRenderer.
func (gl GroupList) Headers() []string {
	return []string{"NAME", "DOMAIN", "SID", "DESCRIPTION"}
}

// Rows implements TableRenderer.
func (gl GroupList) Rows() [][]string {
	rows := make([][]string, 0, len(gl))
	for _, g := range gl {
		description := cmdutil.EmptyOr(g.Description, "-")
		rows = append(rows, []string{g.Name, g.Domain, g.SID, description})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	groups, err := client.ListGroups()
	if err != nil {
		return fmt.Errorf("failed to list groups: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, groups, len(groups) == 0, "No groups found.", GroupList(groups))
}
