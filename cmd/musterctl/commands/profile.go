package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/cmd/musterctl/cmdutil"
	"github.com/musterio/muster/internal/cli/timeutil"
	"github.com/musterio/muster/pkg/apiclient"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "List user profiles on the daemon's machine",
	Long: `List the user profiles present on the daemon's machine.

Profile enumeration is only available on directory backends that expose
it; elsewhere the daemon answers not found.

Examples:
  # List profiles
  musterctl profile

  # List as JSON
  musterctl profile -o json`,
	Args: cobra.NoArgs,
	RunE: runProfile,
}

// ProfileList is a list of profiles for table rendering.
type ProfileList []apiclient.Profile

// Headers implements TableRenderer.
func (pl ProfileList) Headers() []string {
	return []string{"SID", "PATH", "LOADED", "SPECIAL", "LAST USE"}
}

// Rows implements TableRenderer.
func (pl ProfileList) Rows() [][]string {
	rows := make([][]string, 0, len(pl))
	for _, p := range pl {
		lastUse := "-"
		if !p.LastUse.IsZero() {
			lastUse = p.LastUse.Local().Format(timeutil.LocalTimeFormat)
		}
		rows = append(rows, []string{
			p.SID,
			cmdutil.EmptyOr(p.LocalPath, "-"),
			cmdutil.BoolToYesNo(p.Loaded),
			cmdutil.BoolToYesNo(p.Special),
			lastUse,
		})
	}
	return rows
}

func runProfile(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	profiles, err := client.ListProfiles()
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			return fmt.Errorf("the daemon's directory backend does not expose profiles")
		}
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, profiles, len(profiles) == 0, "No profiles found.", ProfileList(profiles))
}
