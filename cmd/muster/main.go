package main

import (
	"os"

	"github.com/musterio/muster/cmd/muster/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("Error: %v", err)
		os.Exit(1)
	}
}
