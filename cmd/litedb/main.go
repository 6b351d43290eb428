// Package main provides the litedb command.
package main

import (
	"os"

	"github.com/leapstack-labs/litedb/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
