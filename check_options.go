//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"

	"gitlab.com/dumpyara/dumpyarabot/internal/options"
)

func main() {
	tests := [][]string{
		{"url"},
		{"url", "a"},
		{"url", "a", "f", "b"},
		{"url", "afb"},
		{"url", "a", "fb", "p"},
		{"url", "a   ", "  fb", "p"},
	}

	for _, args := range tests {
		if err := options.Report(os.Stdout, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}
