package context

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/internal/cli/contexts"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured contexts",
	Long: `List all configured server contexts.

Shows the context name and daemon URL for each saved context.
The current context is marked with an asterisk (*).

Examples:
  # List contexts as table
  musterctl context list

  # List as JSON
  musterctl context list -o json`,
	RunE: runContextList,
}

// ContextInfo represents context information for output.
type ContextInfo struct {
	Name      string `json:"name" yaml:"name"`
	Current   bool   `json:"current" yaml:"current"`
	ServerURL string `json:"server_url" yaml:"server_url"`
}

// ContextList is a list of contexts for table rendering.
type ContextList []ContextInfo

// Headers implements TableRenderer.
func (cl ContextList) Headers() []string {
	return []string{"", "NAME", "SERVER"}
}

// Rows implements TableRenderer.
func (cl ContextList) Rows() [][]string {
	rows := make([][]string, 0, len(cl))
	for _, c := range cl {
		current := ""
		if c.Current {
			current = "*"
		}
		rows = append(rows, []string{current, c.Name, c.ServerURL})
	}
	return rows
}

func runContextList(cmd *cobra.Command, args []string) error {
	store, err := contexts.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize context store: %w", err)
	}

	contextNames := store.ListContexts()
	currentContext := store.GetCurrentContextName()

	infos := make(ContextList, 0, len(contextNames))
	for _, name := range contextNames {
		ctx, err := store.GetContext(name)
		if err != nil {
			continue
		}

		infos = append(infos, ContextInfo{
			Name:      name,
			Current:   name == currentContext,
			ServerURL: ctx.ServerURL,
		})
	}

	return cmdutil.PrintOutput(os.Stdout, infos, len(infos) == 0, "No contexts configured. Use 'musterctl context add <name> --server <url>' to create one.", infos)
}
