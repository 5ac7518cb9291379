package user

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/internal/cli/timeutil"
	"github.com/musterio/muster/pkg/apiclient"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Get user details",
	Long: `Get detailed information about a user.

Examples:
  # Get user details as table
  musterctl user get alice

  # Get as JSON
  musterctl user get alice -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// SingleUserList wraps a single user for table rendering.
type SingleUserList []apiclient.User

// Headers implements TableRenderer.
func (ul SingleUserList) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (ul SingleUserList) Rows() [][]string {
	if len(ul) == 0 {
		return nil
	}
	u := ul[0]

	return [][]string{
		{"Name", u.Name},
		{"Domain", u.Domain},
		{"SID", u.SID},
		{"Full Name", cmdutil.EmptyOr(u.FullName, "-")},
		{"Description", cmdutil.EmptyOr(u.Description, "-")},
		{"Disabled", cmdutil.BoolToYesNo(u.Disabled)},
		{"Created", u.CreatedAt.Local().Format(timeutil.LocalTimeFormat)},
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	name := args[0]

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	user, err := client.GetUser(name)
	if err != nil {
		return fmt.Errorf("failed to get user '%s': %w", name, err)
	}

	return cmdutil.PrintResource(os.Stdout, user, SingleUserList{*user})
}
