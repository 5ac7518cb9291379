package group

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/internal/cli/timeutil"
	"github.com/musterio/muster/pkg/apiclient"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Get group details",
	Long: `Get detailed information about a group, including its current
membership.

Examples:
  # Get group details as table
  musterctl group get operators

  # Get as JSON
  musterctl group get operators -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// groupDetails bundles a group with its membership for output.
type groupDetails struct {
	apiclient.Group
	Members []apiclient.Member `json:"members"`
}

// SingleGroupList wraps group details for table rendering.
type SingleGroupList []groupDetails

// Headers implements TableRenderer.
func (gl SingleGroupList) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (gl SingleGroupList) Rows() [][]string {
	if len(gl) == 0 {
		return nil
	}
	g := gl[0]

	members := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, m.Display)
	}

	return [][]string{
		{"Name", g.Name},
		{"Domain", g.Domain},
		{"SID", g.SID},
		{"Description", cmdutil.EmptyOr(g.Description, "-")},
		{"Members", cmdutil.EmptyOr(strings.Join(members, ", "), "-")},
		{"Created", g.CreatedAt.Local().Format(timeutil.LocalTimeFormat)},
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	name := args[0]

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	group, err := client.GetGroup(name)
	if err != nil {
		return fmt.Errorf("failed to get group '%s': %w", name, err)
	}

	members, err := client.ListMembers(name)
	if err != nil {
		return fmt.Errorf("failed to list members of '%s': %w", name, err)
	}

	details := groupDetails{Group: *group, Members: members}
	return cmdutil.PrintResource(os.Stdout, details, SingleGroupList{details})
}
