package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect agent runs",
	}

	cmd.AddCommand(newRunsGetCmd())
	cmd.AddCommand(newRunsTraceCmd())
	cmd.AddCommand(newRunsDeleteCmd())
	return cmd
}

func newRunsGetCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get an agent run by ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			body, err := client.Get(fmt.Sprintf("/api/v1/runs/%s", id), nil)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var r RunResponse
			if err := json.Unmarshal(body, &r); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			pending := "-"
			if r.Pending != nil {
				pending = fmt.Sprintf("%s (call %s)", r.Pending.Payload.Action, r.Pending.CallID)
			}

			source := "-"
			if r.DataSourceID != "" {
				source = r.DataSourceID
			}

			headers := []string{"FIELD", "VALUE"}
			rows := [][]string{
				{"ID", r.ID},
				{"Data Source", source},
				{"Status", r.Status},
				{"Turns", fmt.Sprintf("%d", r.Turns)},
				{"Pending", pending},
				{"Final Text", truncate(r.FinalText, 80)},
				{"Error", truncate(r.Error, 80)},
				{"Created At", r.CreatedAt},
				{"Updated At", r.UpdatedAt},
				{"Expires At", r.ExpiresAt},
			}
			printTable(headers, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Run ID (required)")
	cmd.MarkFlagRequired("id")
	return cmd
}

func newRunsTraceCmd() *cobra.Command {
	var id string
	var showScreenshots bool

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the full conversation of a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			body, err := client.Get(fmt.Sprintf("/api/v1/runs/%s/trace", id), nil)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var resp TraceResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printMessage(fmt.Sprintf("Run %s (%d messages)", resp.RunID, len(resp.Messages)))
			printMessage("")

			for i, msg := range resp.Messages {
				printMessage(fmt.Sprintf("--- [%d] %s ---", i, msg.Type))
				if msg.Text != "" {
					printMessage(msg.Text)
				}
				if msg.Screenshot != "" {
					if showScreenshots {
						printMessage(fmt.Sprintf("screenshot: %s", msg.Screenshot))
					} else {
						printMessage(fmt.Sprintf("screenshot: (%d bytes, use --screenshots to print)", len(msg.Screenshot)))
					}
				}
				for _, req := range msg.ToolRequests {
					args, _ := json.Marshal(req.Args)
					printMessage(fmt.Sprintf("tool call %s: %s(%s)", req.CallID, req.Name, string(args)))
				}
				if msg.CallID != "" {
					printMessage(fmt.Sprintf("answers call: %s", msg.CallID))
				}
				printMessage("")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Run ID (required)")
	cmd.MarkFlagRequired("id")
	cmd.Flags().BoolVar(&showScreenshots, "screenshots", false, "Print raw base64 screenshots")
	return cmd
}

func newRunsDeleteCmd() *cobra.Command {
	var id string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a run from the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmAction(fmt.Sprintf("Delete run %s?", id), yes) {
				printMessage("Aborted.")
				return nil
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			_, err = client.Delete(fmt.Sprintf("/api/v1/runs/%s", id))
			if err != nil {
				return err
			}

			printMessage("Run deleted successfully.")
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Run ID (required)")
	cmd.MarkFlagRequired("id")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip confirmation")
	return cmd
}
