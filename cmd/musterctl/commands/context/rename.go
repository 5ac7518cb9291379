package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/internal/cli/contexts"
)

var renameCmd = &cobra.Command{
	Use:   "rename <old-name> <new-name>",
	Short: "Rename a context",
	Long: `Rename a server context.

If the renamed context is the current one, the selection follows it.

Examples:
  musterctl context rename prod production`,
	Args: cobra.ExactArgs(2),
	RunE: runContextRename,
}

func runContextRename(cmd *cobra.Command, args []string) error {
	oldName, newName := args[0], args[1]

	store, err := contexts.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize context store: %w", err)
	}

	if err := store.RenameContext(oldName, newName); err != nil {
		if err == contexts.ErrContextNotFound {
			return fmt.Errorf("context '%s' not found", oldName)
		}
		return fmt.Errorf("failed to rename context: %w", err)
	}

	fmt.Printf("Context '%s' renamed to '%s'\n", oldName, newName)
	return nil
}
