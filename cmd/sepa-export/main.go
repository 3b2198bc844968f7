// Package main is the entry point for sepa-export CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/sepa-export/cmd/sepa-export/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
