// Package main is the entry point for the threadsnap CLI.
package main

import (
	"os"

	"github.com/threadsnap/threadsnap/cmd/threadsnap/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
