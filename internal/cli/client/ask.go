package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

type selectSourceRequest struct {
	Fingerprint string `json:"fingerprint"`
}

type askRequest struct {
	Question string `json:"question"`
}

type sseCitation struct {
	Reference  int     `json:"reference"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
}

type sseChunk struct {
	Text string `json:"text"`
}

type sseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		sessionID   string
		fingerprint string
		showSources bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about an ingested source",
		Long: "Asks a question against a session's active source and streams the answer. " +
			"Without --session a fresh session is created; --fingerprint selects the source to ask about.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(strings.Join(args, " "), sessionID, fingerprint, showSources)
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Existing session ID to continue")
	cmd.Flags().StringVarP(&fingerprint, "fingerprint", "f", "", "Source fingerprint to make active")
	cmd.Flags().BoolVar(&showSources, "show-sources", false, "Print the retrieved chunks before the answer")

	return cmd
}

func runAsk(question, sessionID, fingerprint string, showSources bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	if sessionID == "" {
		resp, err := api.Post("/sessions", nil)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		var created createSessionResponse
		if err := json.Unmarshal(resp.Data, &created); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		sessionID = created.SessionID
		fmt.Printf("Session: %s\n", sessionID)
	}

	if fingerprint != "" {
		if _, err := api.Put("/sessions/"+sessionID+"/source", selectSourceRequest{Fingerprint: fingerprint}); err != nil {
			return fmt.Errorf("failed to select source: %w", err)
		}
	}

	resp, err := api.PostStream("/sessions/"+sessionID+"/ask", askRequest{Question: question})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	defer resp.Body.Close()

	return consumeAnswerStream(resp.Body, showSources)
}

// consumeAnswerStream prints the server-sent event stream: citations first
// when requested, then answer chunks as they arrive.
func consumeAnswerStream(body io.Reader, showSources bool) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			switch event {
			case "sources":
				if !showSources {
					continue
				}
				var citations []sseCitation
				if err := json.Unmarshal([]byte(data), &citations); err != nil {
					return fmt.Errorf("failed to parse sources event: %w", err)
				}
				for _, c := range citations {
					fmt.Printf("[%d] (chunk %d, score %.3f) %s\n", c.Reference, c.ChunkIndex, c.Score, excerpt(c.Text, 120))
				}
				fmt.Println()
			case "chunk":
				var chunk sseChunk
				if err := json.Unmarshal([]byte(data), &chunk); err != nil {
					return fmt.Errorf("failed to parse chunk event: %w", err)
				}
				fmt.Print(chunk.Text)
			case "done":
				fmt.Println()
				return nil
			case "error":
				var sseErr sseError
				if err := json.Unmarshal([]byte(data), &sseErr); err != nil {
					return fmt.Errorf("stream failed: %s", data)
				}
				fmt.Println()
				return fmt.Errorf("stream failed [%s]: %s", sseErr.Code, sseErr.Message)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %w", err)
	}
	return fmt.Errorf("stream ended without a done event")
}

func excerpt(text string, max int) string {
	runes := []rune(strings.ReplaceAll(text, "\n", " "))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "..."
}
