package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/cli"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "ragengine",
		Short: "ragengine CLI - Ask questions about videos, webpages and documents",
		Long: `ragengine CLI ingests sources and asks grounded questions about them.

Environment variables:
  RAGENGINE_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AddCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.HistoryCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
