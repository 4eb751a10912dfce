// Package main is the entry point for the vodstudy application.
package main

import (
	"os"

	"github.com/vodstudy/vodstudy/cmd/vodstudy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
