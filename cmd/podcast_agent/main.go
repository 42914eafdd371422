// Package main provides the entry point for the Podcast Studio HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "podcast_agent",
	Short: "Podcast Studio HTTP API Server",
	Long:  "Podcast Studio turns a rough idea into a short spoken episode: it refines the prompt, streams a dialogue transcript, titles it, and synthesizes multi-voice audio via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
