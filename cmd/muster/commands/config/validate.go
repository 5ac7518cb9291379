package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the muster configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  muster config validate

  # Validate specific config file
  muster config validate --config /etc/muster/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	// Load and validate configuration
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	// Determine path for display
	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	// Additional validation checks
	var warnings []string

	if cfg.Roster.Path == "" {
		warnings = append(warnings, "No roster configured - the agent will idle and reconciliation only happens through the API")
	}
	if cfg.Journal.Path == "" {
		warnings = append(warnings, "Journal path not configured - reconciliation history is lost on restart")
	}
	if cfg.Directory.Backend == config.BackendMemory {
		warnings = append(warnings, "Memory directory backend - all accounts and memberships are lost on restart")
	}

	// Print results
	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Directory backend: %s\n", cfg.Directory.Backend)
	fmt.Printf("  API port:          %d\n", cfg.API.Port)
	fmt.Printf("  Log level:         %s\n", cfg.Logging.Level)

	return nil
}
