package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks",
	}

	cmd.AddCommand(newTasksListCmd())
	cmd.AddCommand(newTasksCreateCmd())
	cmd.AddCommand(newTasksGetCmd())
	cmd.AddCommand(newTasksUpdateCmd())
	cmd.AddCommand(newTasksDeleteCmd())
	return cmd
}

func newTasksListCmd() *cobra.Command {
	var status, priority string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			query := url.Values{}
			if status != "" {
				query.Set("status", status)
			}
			if priority != "" {
				query.Set("priority", priority)
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				query.Set("offset", strconv.Itoa(offset))
			}

			body, err := client.Get("/api/v1/tasks", query)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var resp PaginatedResponse[TaskResponse]
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			headers := []string{"ID", "TITLE", "STATUS", "PRIORITY", "CREATED AT"}
			var rows [][]string
			for _, t := range resp.Items {
				rows = append(rows, []string{
					t.ID.String(),
					truncate(t.Title, 50),
					t.Status,
					t.Priority,
					t.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			printTable(headers, rows)
			printMessage(fmt.Sprintf("\nShowing %d of %d tasks", len(resp.Items), resp.Total))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset for pagination")
	return cmd
}

func newTasksCreateCmd() *cobra.Command {
	var title, description, status, priority string
	var tags []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			req := CreateTaskRequest{
				Title:       title,
				Description: description,
				Status:      status,
				Priority:    priority,
				Tags:        tags,
			}

			body, err := client.Post("/api/v1/tasks", req)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var t TaskResponse
			if err := json.Unmarshal(body, &t); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printMessage(fmt.Sprintf("Task created: %s (status: %s)", t.ID, t.Status))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title (required)")
	cmd.MarkFlagRequired("title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&status, "status", "", "Initial status (default: todo)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (default: medium)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Task tags")
	return cmd
}

func newTasksGetCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get a task by ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			body, err := client.Get(fmt.Sprintf("/api/v1/tasks/%s", id), nil)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var t TaskResponse
			if err := json.Unmarshal(body, &t); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			completedAt := "-"
			if t.CompletedAt != nil {
				completedAt = t.CompletedAt.Format("2006-01-02 15:04:05")
			}

			headers := []string{"FIELD", "VALUE"}
			rows := [][]string{
				{"ID", t.ID.String()},
				{"Title", t.Title},
				{"Description", truncate(t.Description, 80)},
				{"Status", t.Status},
				{"Priority", t.Priority},
				{"Completed At", completedAt},
				{"Created At", t.CreatedAt.Format("2006-01-02 15:04:05")},
			}
			printTable(headers, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Task ID (required)")
	cmd.MarkFlagRequired("id")
	return cmd
}

func newTasksUpdateCmd() *cobra.Command {
	var id, title, description, status, priority string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			req := UpdateTaskRequest{}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("status") {
				req.Status = &status
			}
			if cmd.Flags().Changed("priority") {
				req.Priority = &priority
			}

			body, err := client.Put(fmt.Sprintf("/api/v1/tasks/%s", id), req)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var t TaskResponse
			if err := json.Unmarshal(body, &t); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printMessage(fmt.Sprintf("Task updated: %s (status: %s)", t.ID, t.Status))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Task ID (required)")
	cmd.MarkFlagRequired("id")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&status, "status", "", "Task status")
	cmd.Flags().StringVar(&priority, "priority", "", "Task priority")
	return cmd
}

func newTasksDeleteCmd() *cobra.Command {
	var id string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmAction(fmt.Sprintf("Delete task %s?", id), yes) {
				printMessage("Aborted.")
				return nil
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			_, err = client.Delete(fmt.Sprintf("/api/v1/tasks/%s", id))
			if err != nil {
				return err
			}

			printMessage("Task deleted successfully.")
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Task ID (required)")
	cmd.MarkFlagRequired("id")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip confirmation")
	return cmd
}
