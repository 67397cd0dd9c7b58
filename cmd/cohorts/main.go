// Package main provides the entry point for the cohorts CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/cohorts/cmd/cohorts/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
