// Package main provides the entry point for the job assistant front end and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job_assistant",
	Short: "AI Job Assistant front end",
	Long: `AI Job Assistant analyzes a resume, searches matching jobs, writes cover letters,
finds skill gaps with learning resources and researches companies, on top of the
job assistant backend API.

Run "serve" for the web front end, or use the other commands from a terminal.`,
	SilenceUsage: true,
}

var (
	configPath string
	backendURL string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "Backend API base URL (defaults to BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
