package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ListCmd creates the list command for cached sources.
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingested sources",
		Long:  "Lists every source currently held in the server cache, oldest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(outputJSON)
		},
	}

	return cmd
}

func runList(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/sources")
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var sources []SourceAPIResponse
	if err := json.Unmarshal(resp.Data, &sources); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(sources, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(sources) == 0 {
		fmt.Println("No sources ingested.")
		return nil
	}

	fmt.Printf("Found %d sources:\n\n", len(sources))
	for i, source := range sources {
		fmt.Printf("%d. %s [%s]\n", i+1, source.Name, source.Kind)
		fmt.Printf("   Chunks: %d\n", source.ChunkCount)
		fmt.Printf("   Ingested: %s\n", source.CreatedAt)
		fmt.Printf("   Fingerprint: %s\n", source.Fingerprint)
		if i < len(sources)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
