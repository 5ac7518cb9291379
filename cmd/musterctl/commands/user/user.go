// Package user implements user management subcommands for musterctl.
package user

import (
	"github.com/spf13/cobra"
)

// Cmd is the user subcommand.
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "Manage local users",
	Long: `Manage local user accounts on the muster daemon.

Subcommands:
  list    List all users
  create  Create a new user
  get     Get user details
  update  Update a user
  delete  Delete a user`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
}
