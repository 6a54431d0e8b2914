// cmd/tasks/main.go
//
// Entry point for the tasks CLI. It loads tasks.yaml, registers the built-in
// demo tasks plus anything found in the tasks directory, then runs what the
// subcommand asks for on the terminal.

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
