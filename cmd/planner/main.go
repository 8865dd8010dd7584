// ABOUTME: Entry point for the migration planner CLI
// ABOUTME: Delegates to the cmd package for command dispatch

package main

import (
	"fmt"
	"os"

	"github.com/atlasplan/migration-planner/cmd/planner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
