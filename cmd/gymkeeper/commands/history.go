package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"gymkeeper-backend/lib/attemptlog"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Shows past booking and cancellation attempts, most recent first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if cfg.AttemptDb == "" {
			return fmt.Errorf("attempt_db is not set in the config, no history is being kept")
		}

		db, err := attemptlog.Open(cfg.AttemptDb)
		if err != nil {
			return err
		}
		defer db.Close()
		store := attemptlog.NewStore(db)

		attempts, err := store.History(cmd.Context(), cfg.Email)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"When", "Operation", "Activity", "Class", "Outcome", "Detail"})
		for _, attempt := range attempts {
			t.AppendRow(table.Row{
				attempt.Time.Format(time.DateTime),
				attempt.Operation,
				attempt.Activity,
				fmt.Sprintf("%s %s", attempt.ClassDate, attempt.ClassTime),
				string(attempt.Outcome),
				attempt.Detail,
			})
		}
		t.Render()
		return nil
	},
}
