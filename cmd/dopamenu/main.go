// Package main is the entry point for the dopamenu CLI.
package main

import (
	"os"

	"github.com/runger/dopamenu/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
