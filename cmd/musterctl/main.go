package main

import (
	"os"

	"github.com/musterio/muster/cmd/musterctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("Error: %v", err)
		os.Exit(1)
	}
}
