// Package main provides the aactmcp command.
package main

import (
	"os"

	"github.com/leapstack-labs/aactmcp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
