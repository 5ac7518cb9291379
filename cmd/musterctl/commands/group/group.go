// Package group implements group management subcommands for musterctl.
package group

import (
	"github.com/spf13/cobra"
)

// Cmd is the group subcommand.
var Cmd = &cobra.Command{
	Use:   "group",
	Short: "Manage local groups",
	Long: `Manage local groups on the muster daemon.

Membership is managed with the 'member' command family; 'group' covers
the groups themselves.

Subcommands:
  list    List all groups
  create  Create a new group
  get     Get group details
  delete  Delete a group`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(deleteCmd)
}
