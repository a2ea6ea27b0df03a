package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newDataSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasources",
		Short: "Manage data sources",
	}

	cmd.AddCommand(newDataSourcesListCmd())
	cmd.AddCommand(newDataSourcesGetCmd())
	cmd.AddCommand(newDataSourcesItemsCmd())
	return cmd
}

func newDataSourcesListCmd() *cobra.Command {
	var sourceType, status string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List data sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			query := url.Values{}
			if sourceType != "" {
				query.Set("source_type", sourceType)
			}
			if status != "" {
				query.Set("status", status)
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				query.Set("offset", strconv.Itoa(offset))
			}

			body, err := client.Get("/api/v1/datasources", query)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var resp PaginatedResponse[DataSourceResponse]
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			headers := []string{"ID", "NAME", "TYPE", "STATUS", "RUNS", "ERRORS", "NEXT RUN"}
			var rows [][]string
			for _, s := range resp.Items {
				nextRun := "-"
				if s.NextRunAt != nil {
					nextRun = s.NextRunAt.Format("2006-01-02 15:04:05")
				}
				rows = append(rows, []string{
					s.ID.String(),
					truncate(s.Name, 40),
					s.SourceType,
					s.Status,
					fmt.Sprintf("%d", s.RunCount),
					fmt.Sprintf("%d", s.ErrorCount),
					nextRun,
				})
			}
			printTable(headers, rows)
			printMessage(fmt.Sprintf("\nShowing %d of %d data sources", len(resp.Items), resp.Total))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceType, "type", "", "Filter by source type")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset for pagination")
	return cmd
}

func newDataSourcesGetCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get a data source by ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			body, err := client.Get(fmt.Sprintf("/api/v1/datasources/%s", id), nil)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var s DataSourceResponse
			if err := json.Unmarshal(body, &s); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			lastRun := "-"
			if s.LastRunAt != nil {
				lastRun = s.LastRunAt.Format("2006-01-02 15:04:05")
			}

			headers := []string{"FIELD", "VALUE"}
			rows := [][]string{
				{"ID", s.ID.String()},
				{"Name", s.Name},
				{"Type", s.SourceType},
				{"Status", s.Status},
				{"Target URL", s.TargetURL},
				{"Instruction", truncate(s.Instruction, 80)},
				{"Interval", fmt.Sprintf("%d minutes", s.ScheduleIntervalMinutes)},
				{"Runs", fmt.Sprintf("%d (%d ok, %d failed)", s.RunCount, s.SuccessCount, s.ErrorCount)},
				{"Last Run", lastRun},
				{"Last Error", truncate(s.LastError, 80)},
			}
			printTable(headers, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Data source ID (required)")
	cmd.MarkFlagRequired("id")
	return cmd
}

func newDataSourcesItemsCmd() *cobra.Command {
	var id string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List collected items for a data source",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			query := url.Values{}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				query.Set("offset", strconv.Itoa(offset))
			}

			body, err := client.Get(fmt.Sprintf("/api/v1/datasources/%s/items", id), query)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var resp PaginatedResponse[CollectedItemResponse]
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			headers := []string{"ID", "CONTENT", "COLLECTED AT"}
			var rows [][]string
			for _, item := range resp.Items {
				rows = append(rows, []string{
					item.ID.String(),
					truncate(item.Content, 70),
					item.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			printTable(headers, rows)
			printMessage(fmt.Sprintf("\nShowing %d of %d items", len(resp.Items), resp.Total))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Data source ID (required)")
	cmd.MarkFlagRequired("id")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset for pagination")
	return cmd
}
