package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reconcile every roster target now",
	Long: `Trigger an immediate sweep of the daemon's configured roster.

Every target is reconciled in roster order and one journal entry per
target is returned. A failing target does not stop the sweep; its entry
carries the errors.

Examples:
  # Run a sweep and show the per-target outcome
  musterctl sweep

  # Sweep and inspect the raw entries
  musterctl sweep -o json`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	entries, err := client.Sweep()
	if err != nil {
		return fmt.Errorf("failed to sweep: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, entries, len(entries) == 0, "Roster is empty, nothing swept.", JournalList(entries))
}
