package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/cli"
	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ragengined",
		Short: "ragengine daemon",
		Long:  "ragengine daemon for running the retrieval API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
