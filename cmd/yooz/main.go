// Package main provides the yooz binary entry point. Yooz compiles rule
// notation files and runs conversations against them, either one-shot or as
// an interactive chat with optional persistence.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
