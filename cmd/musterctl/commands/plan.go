package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/pkg/apiclient"
)

var planPolicy string

var planCmd = &cobra.Command{
	Use:   "plan <group> <member>[,<member>...]",
	Short: "Compute a reconciliation plan without applying it",
	Long: `Compute the changes reconciling a group to the given members
would make, without changing anything.

The plan lists additions and removals in the order they would be
applied (removals first). Resolution is all-or-nothing: one unknown
member name fails the whole plan.

Examples:
  # What would making operators exactly alice,bob change?
  musterctl plan operators alice,bob

  # Plan a merge (additions only)
  musterctl plan operators 'CORP\ops-team' --policy merge`,
	Args: cobra.ExactArgs(2),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planPolicy, "policy", "exact", "Reconciliation policy (exact|merge)")
}

// PlanResult wraps a plan for table rendering.
type PlanResult struct {
	plan *apiclient.Plan
}

// Headers implements TableRenderer.
func (pr PlanResult) Headers() []string {
	return []string{"ACTION", "MEMBER"}
}

// Rows implements TableRenderer.
func (pr PlanResult) Rows() [][]string {
	rows := make([][]string, 0, len(pr.plan.Remove)+len(pr.plan.Add))
	for _, m := range pr.plan.Remove {
		rows = append(rows, []string{"remove", m})
	}
	for _, m := range pr.plan.Add {
		rows = append(rows, []string{"add", m})
	}
	return rows
}

func runPlan(cmd *cobra.Command, args []string) error {
	group := args[0]
	members := cmdutil.ParseCommaSeparatedList(args[1])

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	req := &apiclient.PlanRequest{
		Group:   group,
		Members: members,
		Policy:  planPolicy,
	}

	plan, err := client.ComputePlan(req)
	if err != nil {
		return fmt.Errorf("failed to compute plan for '%s': %w", group, err)
	}

	empty := len(plan.Add) == 0 && len(plan.Remove) == 0
	return cmdutil.PrintOutput(os.Stdout, plan, empty, fmt.Sprintf("Group '%s' already converged, nothing to do.", group), PlanResult{plan})
}
