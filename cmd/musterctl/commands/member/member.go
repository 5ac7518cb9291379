// Package member implements membership management subcommands for
// musterctl.
package member

import (
	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/pkg/apiclient"
)

// Cmd is the member subcommand.
var Cmd = &cobra.Command{
	Use:   "member",
	Short: "Manage group membership",
	Long: `Manage group membership on the muster daemon.

Members are referenced by name: bare ("alice") for accounts of the local
machine, or domain-qualified ("CORP\ops-team") for foreign principals.

Subcommands:
  list    List a group's members
  set     Reconcile a group's membership to the given list
  add     Add a single member
  remove  Remove a single member`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(removeCmd)
}

// MemberList is a list of members for table rendering.
type MemberList []apiclient.Member

// Headers implements TableRenderer.
func (ml MemberList) Headers() []string {
	return []string{"MEMBER", "DOMAIN", "SID"}
}

// Rows implements TableRenderer.
func (ml MemberList) Rows() [][]string {
	rows := make([][]string, 0, len(ml))
	for _, m := range ml {
		rows = append(rows, []string{m.Display, cmdutil.EmptyOr(m.Domain, "-"), cmdutil.EmptyOr(m.SID, "-")})
	}
	return rows
}
