package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// IngestAPIRequest represents the source ingestion API request.
type IngestAPIRequest struct {
	Kind    string `json:"kind"`
	URL     string `json:"url,omitempty"`
	Name    string `json:"name,omitempty"`
	Content []byte `json:"content,omitempty"`
}

// SourceAPIResponse represents one ingested source in API responses.
type SourceAPIResponse struct {
	Fingerprint string   `json:"fingerprint"`
	Kind        string   `json:"kind"`
	Name        string   `json:"name"`
	ChunkCount  int      `json:"chunk_count"`
	Suggestions []string `json:"suggestions,omitempty"`
	CreatedAt   string   `json:"created_at"`
	Cached      bool     `json:"cached"`
}

// AddCmd creates the add command for ingesting sources.
func AddCmd() *cobra.Command {
	var (
		kind string
		name string
	)

	cmd := &cobra.Command{
		Use:   "add <url-or-file>",
		Short: "Ingest a source",
		Long: "Ingest a webpage URL, a video URL or a local document file. " +
			"The source is chunked and embedded once and then served from the cache.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAdd(args[0], kind, name, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Source kind (video|webpage|document); inferred when omitted")
	cmd.Flags().StringVar(&name, "name", "", "Display name for uploaded documents (defaults to the filename)")

	return cmd
}

func runAdd(locator, kind, name string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	req, err := buildIngestRequest(locator, kind, name)
	if err != nil {
		return err
	}

	resp, err := api.Post("/sources", req)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	var source SourceAPIResponse
	if err := json.Unmarshal(resp.Data, &source); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(source, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if source.Cached {
		fmt.Printf("Already ingested: %s [%s]\n", source.Name, source.Kind)
	} else {
		fmt.Printf("Ingested: %s [%s]\n", source.Name, source.Kind)
	}
	fmt.Printf("   Chunks: %d\n", source.ChunkCount)
	fmt.Printf("   Fingerprint: %s\n", source.Fingerprint)
	if len(source.Suggestions) > 0 {
		fmt.Println("   Try asking:")
		for _, q := range source.Suggestions {
			fmt.Printf("   - %s\n", q)
		}
	}
	return nil
}

// buildIngestRequest decides between a URL source and a document upload. A
// locator that exists on disk is uploaded; otherwise it is treated as a URL.
func buildIngestRequest(locator, kind, name string) (*IngestAPIRequest, error) {
	if info, err := os.Stat(locator); err == nil && !info.IsDir() {
		content, err := os.ReadFile(locator)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		if name == "" {
			name = filepath.Base(locator)
		}
		if kind == "" {
			kind = "document"
		}
		return &IngestAPIRequest{Kind: kind, Name: name, Content: content}, nil
	}

	if kind == "" {
		kind = inferURLKind(locator)
	}
	return &IngestAPIRequest{Kind: kind, URL: locator, Name: name}, nil
}

func inferURLKind(url string) string {
	if strings.Contains(url, "youtube.com/") || strings.Contains(url, "youtu.be/") {
		return "video"
	}
	return "webpage"
}
