package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type turnAPIResponse struct {
	Role string `json:"role"`
	Text string `json:"text"`
	At   string `json:"at"`
}

type historyAPIResponse struct {
	SessionID   string            `json:"session_id"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Turns       []turnAPIResponse `json:"turns"`
	LastFailure string            `json:"last_failure,omitempty"`
}

// HistoryCmd creates the history command.
func HistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <session-id>",
		Short: "Show a session transcript",
		Long:  "Prints the completed question and answer exchanges of a session in order.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runHistory(args[0], outputJSON)
		},
	}

	return cmd
}

func runHistory(sessionID string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/sessions/" + sessionID + "/history")
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}

	var history historyAPIResponse
	if err := json.Unmarshal(resp.Data, &history); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(history, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if history.Fingerprint != "" {
		fmt.Printf("Active source: %s\n\n", history.Fingerprint)
	}
	if len(history.Turns) == 0 {
		fmt.Println("No exchanges yet.")
	}
	for _, turn := range history.Turns {
		fmt.Printf("[%s] %s\n", turn.Role, turn.Text)
	}
	if history.LastFailure != "" {
		fmt.Printf("\nLast ask failed: %s\n", history.LastFailure)
	}
	return nil
}
