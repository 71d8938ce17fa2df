// Package main provides the entry point for the iconify CLI.
package main

import (
	"os"

	"github.com/chandu-machineni/iconify/cmd/iconify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
