// Package main provides the CLI for the WindQL query engine.
package main

import (
	"os"

	"github.com/windql-lang/windql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
