// Package main provides the dbtui CLI.
package main

import (
	"os"

	"github.com/dbtui-dev/dbtui/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
