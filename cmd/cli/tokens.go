package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Manage API tokens",
	}

	cmd.AddCommand(newTokensListCmd())
	cmd.AddCommand(newTokensCreateCmd())
	cmd.AddCommand(newTokensRevokeCmd())
	return cmd
}

func newTokensListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List API tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			body, err := client.Get("/api/v1/tokens", nil)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var resp TokenListResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			headers := []string{"ID", "NAME", "SCOPE", "STATUS", "EXPIRES AT", "CREATED AT"}
			var rows [][]string
			for _, t := range resp.Tokens {
				status := "revoked"
				if t.IsActive {
					status = "active"
				}
				expiresAt := t.ExpiresAt
				if expiresAt == "" {
					expiresAt = "-"
				}
				rows = append(rows, []string{
					t.ID,
					truncate(t.Name, 40),
					t.Scope,
					status,
					expiresAt,
					t.CreatedAt,
				})
			}
			printTable(headers, rows)
			printMessage(fmt.Sprintf("\nShowing %d tokens", resp.Total))
			return nil
		},
	}
}

func newTokensCreateCmd() *cobra.Command {
	var name, scope string
	var expiresInHours int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			req := CreateTokenRequest{
				Name:           name,
				Scope:          scope,
				ExpiresInHours: expiresInHours,
			}

			body, err := client.Post("/api/v1/tokens", req)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var resp CreateTokenResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			headers := []string{"FIELD", "VALUE"}
			rows := [][]string{
				{"ID", resp.ID},
				{"Name", resp.Name},
				{"Scope", resp.Scope},
				{"Expires At", resp.ExpiresAt},
				{"Created At", resp.CreatedAt},
			}
			printTable(headers, rows)
			printMessage("")
			printMessage(fmt.Sprintf("Token: %s", resp.Token))
			printMessage("")
			printMessage("Store this token now; the server only keeps a hash of it.")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Token name (required)")
	cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&scope, "scope", "read_only", "Token scope: read_only or read_write")
	cmd.Flags().IntVar(&expiresInHours, "expires-in-hours", 0, "Token expiry in hours (0 for default)")
	return cmd
}

func newTokensRevokeCmd() *cobra.Command {
	var id string
	var yes bool

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke an API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmAction(fmt.Sprintf("Revoke token %s? Clients holding it will lose access.", id), yes) {
				printMessage("Aborted.")
				return nil
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			if _, err := client.Delete(fmt.Sprintf("/api/v1/tokens/%s", id)); err != nil {
				return err
			}

			printMessage(fmt.Sprintf("Token %s revoked.", id))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Token ID (required)")
	cmd.MarkFlagRequired("id")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip confirmation")
	return cmd
}
