// Package main provides the entry point for the resume typesetting CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_typeset",
	Short: "Resume LaTeX typesetter",
	Long:  "Resume Typeset converts structured resume JSON into a populated LaTeX document and optionally compiles it to PDF with latexmk.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
