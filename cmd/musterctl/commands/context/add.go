package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/internal/cli/contexts"
	"github.com/musterio/muster/internal/cli/prompt"
)

var addServer string

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a context",
	Long: `Add a new server context or update an existing one.

The first context added becomes the current one.

Examples:
  # Add a context for a local daemon
  musterctl context add local --server http://localhost:8080

  # Add and prompt for the URL interactively
  musterctl context add staging`,
	Args: cobra.ExactArgs(1),
	RunE: runContextAdd,
}

func init() {
	addCmd.Flags().StringVar(&addServer, "server", "", "Daemon URL (prompted for when omitted)")
}

func runContextAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	serverURL := addServer
	if serverURL == "" {
		var err error
		serverURL, err = prompt.InputRequired("Daemon URL")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	store, err := contexts.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize context store: %w", err)
	}

	if err := store.SetContext(name, &contexts.Context{ServerURL: serverURL}); err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}

	fmt.Printf("Context '%s' saved (%s)\n", name, serverURL)
	if store.GetCurrentContextName() == name {
		fmt.Printf("Current context: %s\n", name)
	}
	return nil
}
