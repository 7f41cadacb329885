// Package main is the entry point for the quantcache CLI.
package main

import (
	"os"

	"github.com/quantbench/quantcache/internal/cli"
	"github.com/quantbench/quantcache/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the outcome to an exit code.
// Cobra prints the error itself, so run only translates it.
func run() int {
	if err := cli.NewRootCmd(version.GetVersion()).Execute(); err != nil {
		return 1
	}
	return 0
}
