package main

import (
	"os"

	"github.com/adolfosalasgomez3011/luxpro-apps/cmd/famsctl/commands"
)

// Version information - set during build
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	root := commands.NewRootCmd(version, buildTime)
	// Errors are printed by the command printer with color formatting
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
