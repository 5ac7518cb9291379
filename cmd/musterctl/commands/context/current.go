package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/internal/cli/contexts"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show current context",
	Long: `Show the name and daemon URL of the current context.

Examples:
  musterctl context current`,
	RunE: runContextCurrent,
}

func runContextCurrent(cmd *cobra.Command, args []string) error {
	store, err := contexts.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize context store: %w", err)
	}

	name := store.GetCurrentContextName()
	if name == "" {
		fmt.Println("No current context set.")
		return nil
	}

	ctx, err := store.GetCurrentContext()
	if err != nil {
		return fmt.Errorf("failed to load current context: %w", err)
	}

	fmt.Printf("%s (%s)\n", name, ctx.ServerURL)
	return nil
}
