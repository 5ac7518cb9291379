package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/internal/cli/contexts"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a context",
	Long: `Delete a server context.

Deleting the current context clears the selection; use
'musterctl context use' to pick another.

Examples:
  musterctl context delete staging

  # Skip the confirmation prompt
  musterctl context delete staging --force`,
	Args: cobra.ExactArgs(1),
	RunE: runContextDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runContextDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	store, err := contexts.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize context store: %w", err)
	}

	if _, err := store.GetContext(name); err != nil {
		return fmt.Errorf("context '%s' not found", name)
	}

	return cmdutil.RunDeleteWithConfirmation("context", name, deleteForce, func() error {
		return store.DeleteContext(name)
	})
}
