package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/internal/cli/contexts"
	"github.com/musterio/muster/internal/cli/prompt"
)

var useCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Switch to a different context",
	Long: `Switch to a different server context.

This changes the active context used for subsequent commands. With no
argument, contexts are offered interactively.

Examples:
  # Switch to context named "production"
  musterctl context use production

  # Pick a context interactively
  musterctl context use`,
	Args: cobra.MaximumNArgs(1),
	RunE: runContextUse,
}

func runContextUse(cmd *cobra.Command, args []string) error {
	store, err := contexts.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize context store: %w", err)
	}

	var contextName string
	if len(args) == 1 {
		contextName = args[0]
	} else {
		names := store.ListContexts()
		if len(names) == 0 {
			return fmt.Errorf("no contexts configured\n\n" +
				"Add one first:\n" +
				"  musterctl context add <name> --server <url>")
		}
		contextName, err = prompt.SelectString("Switch to context", names)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	if err := store.UseContext(contextName); err != nil {
		if err == contexts.ErrContextNotFound {
			return fmt.Errorf("context '%s' not found\n\n"+
				"List available contexts:\n"+
				"  musterctl context list", contextName)
		}
		return fmt.Errorf("failed to switch context: %w", err)
	}

	fmt.Printf("Switched to context: %s\n", contextName)
	return nil
}
