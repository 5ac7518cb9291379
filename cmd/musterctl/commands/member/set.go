package member

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/pkg/apiclient"
)

var setPolicy string

var setCmd = &cobra.Command{
	Use:   "set <group> <member>[,<member>...]",
	Short: "Reconcile a group's membership to the given list",
	Long: `Reconcile a group's membership to exactly the given members.

Every desired member is resolved before anything changes; one unknown
name fails the whole call with nothing applied. With the default exact
policy, members not on the list are removed. With --policy merge the
listed members are added and nobody is removed.

Examples:
  # Make the membership exactly alice and bob
  musterctl member set operators alice,bob

  # Ensure a domain group is present without touching the rest
  musterctl member set operators 'CORP\ops-team' --policy merge

  # Clear the membership entirely
  musterctl member set operators ""`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringVar(&setPolicy, "policy", "exact", "Reconciliation policy (exact|merge)")
}

// EntryResult wraps a journal entry for table rendering.
type EntryResult []apiclient.JournalEntry

// Headers implements TableRenderer.
func (er EntryResult) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (er EntryResult) Rows() [][]string {
	if len(er) == 0 {
		return nil
	}
	e := er[0]

	return [][]string{
		{"Group", e.Group},
		{"Policy", e.Policy},
		{"Added", cmdutil.EmptyOr(strings.Join(e.Added, ", "), "-")},
		{"Removed", cmdutil.EmptyOr(strings.Join(e.Removed, ", "), "-")},
		{"Errors", cmdutil.EmptyOr(strings.Join(e.Errors, "; "), "-")},
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	group := args[0]
	members := cmdutil.ParseCommaSeparatedList(args[1])

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	req := &apiclient.SetMembersRequest{
		Members: members,
		Policy:  setPolicy,
	}

	entry, err := client.SetMembers(group, req)
	if err != nil {
		return fmt.Errorf("failed to reconcile members of '%s': %w", group, err)
	}

	if len(entry.Added) == 0 && len(entry.Removed) == 0 {
		cmdutil.PrintSuccess(fmt.Sprintf("Group '%s' already converged, nothing to do", group))
	}
	return cmdutil.PrintResource(os.Stdout, entry, EntryResult{*entry})
}
