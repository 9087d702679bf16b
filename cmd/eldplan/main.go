// Package main is the entry point for the eldplan binary.
// Its sole responsibility is handing control to the command tree.
package main

import (
	"fmt"
	"os"

	"github.com/pkordes/eldplan/internal/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
