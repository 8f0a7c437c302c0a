package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gastobot/gastobot/internal/service"
)

func logsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect and purge search logs",
	}

	cmd.AddCommand(logsListCmd())
	cmd.AddCommand(logsPurgeCmd())

	return cmd
}

func logsListCmd() *cobra.Command {
	var userID string
	var onlyFailed bool
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List search logs for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}

			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			logs, total, err := store.ListSearchLogs(cmd.Context(), service.SearchLogFilter{
				UserID:     userID,
				OnlyFailed: onlyFailed,
				Limit:      limit,
				Offset:     offset,
			})
			if err != nil {
				return err
			}

			cmd.Printf("%d of %d search logs\n", len(logs), total)
			for _, l := range logs {
				status := "ok"
				if !l.Success {
					status = "FAILED"
				}
				cmd.Printf("%s  %-7s %-6s %-30q best=%q score=%.3f %dms id=%s\n",
					l.CreatedAt.Format("2006-01-02 15:04:05"), status, l.Mode,
					l.Query, l.BestCategory, l.BestScore, l.ResponseTimeMs, l.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	cmd.Flags().BoolVar(&onlyFailed, "failed", false, "only failed searches")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	return cmd
}

func logsPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge <id>...",
		Short: "Delete search logs by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			deleted, err := store.DeleteSearchLogs(cmd.Context(), args)
			if err != nil {
				return err
			}

			cmd.Printf("Deleted %d search logs\n", deleted)
			return nil
		},
	}
}
