// Package main provides the entry point for the chat resume builder.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_chat",
	Short: "Conversational resume builder",
	Long:  "Builds a structured resume through conversation: model replies carry embedded edit blocks that are extracted, normalized and merged into the session's document.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
