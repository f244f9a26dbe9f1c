package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-remote/internal/journal"
	"github.com/nerrad567/gray-logic-remote/migrations"
)

// newHistoryCmd creates the "history" subcommand.
func newHistoryCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history <kind> <id>",
		Short: "Show journalled feedback for one key",
		Long:  "Reads the feedback journal, newest first.\n<kind> is digital, ushort or string.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := feedback.ParseKind(args[0])
			if err != nil {
				return err
			}
			id, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[1], err)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()
			if err := db.Migrate(cmd.Context(), migrations.FS); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			records, err := journal.NewRepository(db.DB).History(cmd.Context(), kind, id, limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatHistory(records))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", journal.DefaultHistoryLimit, "maximum records (capped at 200)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

// formatHistory renders records one per line.
func formatHistory(records []journal.Record) string {
	if len(records) == 0 {
		return "No feedback recorded.\n"
	}
	var b strings.Builder
	for _, r := range records {
		value, err := json.Marshal(r.Value)
		if err != nil {
			value = []byte(fmt.Sprint(r.Value))
		}
		fmt.Fprintf(&b, "%s  %-7s %5d  %-12s %s\n",
			r.RecordedAt.Local().Format(time.RFC3339), r.Kind, r.ID, r.Source, value)
	}
	return b.String()
}
