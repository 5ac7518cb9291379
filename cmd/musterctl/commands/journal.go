package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/internal/cli/timeutil"
	"github.com/musterio/muster/pkg/apiclient"
)

var journalLimit int

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show recent reconciliation outcomes",
	Long: `Show the daemon's reconciliation journal, newest first.

Each entry records one reconciliation attempt: which group, which
policy, what triggered it, and what was added, removed, or failed.

Examples:
  # Show the most recent entries
  musterctl journal

  # Show more history
  musterctl journal --limit 500`,
	Args: cobra.NoArgs,
	RunE: runJournal,
}

func init() {
	journalCmd.Flags().IntVar(&journalLimit, "limit", 100, "Maximum number of entries to show")
}

// JournalList is a list of journal entries for table rendering.
type JournalList []apiclient.JournalEntry

// Headers implements TableRenderer.
func (jl JournalList) Headers() []string {
	return []string{"TIME", "GROUP", "POLICY", "TRIGGER", "ADDED", "REMOVED", "ERRORS"}
}

// Rows implements TableRenderer.
func (jl JournalList) Rows() [][]string {
	rows := make([][]string, 0, len(jl))
	for _, e := range jl {
		trigger := e.Trigger
		if e.DryRun {
			trigger += " (dry-run)"
		}
		rows = append(rows, []string{
			e.Time.Local().Format(timeutil.LocalTimeFormat),
			e.Group,
			e.Policy,
			trigger,
			strconv.Itoa(len(e.Added)),
			strconv.Itoa(len(e.Removed)),
			cmdutil.EmptyOr(strings.Join(e.Errors, "; "), "-"),
		})
	}
	return rows
}

func runJournal(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	entries, err := client.Journal(journalLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch journal: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, entries, len(entries) == 0, "Journal is empty.", JournalList(entries))
}
